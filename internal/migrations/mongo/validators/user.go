package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"username",
			"email",
			"password_hash",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"username": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"schedule_revision": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var TokenValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"user_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// the token key itself
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 40,
				"maxLength": 40,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
