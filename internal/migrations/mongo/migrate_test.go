package mongo

import (
	"slotter/internal/bookings/repository"
	slotsrepo "slotter/internal/slots/repository"
	usersrepo "slotter/internal/users/repository"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCollections_MatchRepositories(t *testing.T) {
	want := map[string]bool{
		usersrepo.CollectionName:      true,
		usersrepo.TokenCollectionName: true,
		slotsrepo.CollectionName:      true,
		repository.CollectionName:     true,
	}

	for _, def := range Collections() {
		if !want[def.Name] {
			t.Errorf("unexpected collection %s", def.Name)
		}
		delete(want, def.Name)
		if def.Validator == nil || len(def.Indexes) == 0 {
			t.Errorf("collection %s needs a validator and indexes", def.Name)
		}
	}
	for name := range want {
		t.Errorf("collection %s is not migrated", name)
	}
}

func TestUniqueIndexes(t *testing.T) {
	tests := []struct {
		name    string
		indexes []bsonIndex
		field   string
	}{
		{"users by username", toIndexes(UsersIndexes), "username"},
		{"tokens by user", toIndexes(TokensIndexes), "user_id"},
		{"bookings by slot", toIndexes(BookingsIndexes), "slot_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, idx := range tt.indexes {
				if len(idx.keys) == 1 && idx.keys[0].Key == tt.field {
					if !idx.unique {
						t.Errorf("index on %s must be unique", tt.field)
					}
					return
				}
			}
			t.Errorf("missing index on %s", tt.field)
		})
	}
}

type bsonIndex struct {
	keys   bson.D
	unique bool
}

func toIndexes(models []mongo.IndexModel) []bsonIndex {
	var out []bsonIndex
	for _, m := range models {
		idx := bsonIndex{keys: m.Keys.(bson.D)}
		if m.Options != nil && m.Options.Unique != nil {
			idx.unique = *m.Options.Unique
		}
		out = append(out, idx)
	}
	return out
}
