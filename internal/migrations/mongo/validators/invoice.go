package validators

import "go.mongodb.org/mongo-driver/bson"

var InvoiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"number",
			"booking_id",
			"lines",
			"subtotal",
			"tax_rate",
			"tax",
			"total",
			"issued_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"number": bson.M{
				"bsonType":  "string",
				"minLength": 4,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"lines": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"description", "amount"},
					"properties": bson.M{
						"description": bson.M{
							"bsonType": "string",
						},
						"amount": bson.M{
							"bsonType": []string{"double", "int", "long", "decimal"},
						},
					},
				},
			},

			"subtotal": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"tax_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
				"maximum":  1,
			},

			"tax": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"total": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"summary": bson.M{
				"bsonType": "string",
			},

			"issued_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
