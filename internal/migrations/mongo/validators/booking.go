package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"slot_id",
			"booked_at",
			"description",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"slot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			// absent for anonymous bookings
			"booked_by": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"booked_at": bson.M{
				"bsonType": "date",
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 2000,
			},
		},
	},
}
