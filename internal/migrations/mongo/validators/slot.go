package validators

import "go.mongodb.org/mongo-driver/bson"

var SlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"start_time",
			"end_time",
			"revision",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"revision": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
