package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"number",
			"room_type",
			"rate",
			"capacity",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"number": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 10,
			},

			"room_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"standard",
					"deluxe",
					"suite",
					"family",
				},
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"monthly_rates": bson.M{
				"bsonType": "array",
				"maxItems": 12,
				"items": bson.M{
					"bsonType": []string{"double", "int", "long", "decimal"},
					"minimum":  0,
				},
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  10,
			},

			"amenities": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"available",
					"maintenance",
					"retired",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
