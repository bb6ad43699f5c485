package validators

import "go.mongodb.org/mongo-driver/bson"

var RentalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"station",
			"lock_id",
			"lock_name",
			"user_id",
			"hourly_rate",
			"start_time",
			"end_time",
			"duration_ns",
			"cost",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string", "minLength": 36, "maxLength": 36},
			"station":     stationSchema,
			"lock_id":     bson.M{"bsonType": "string", "minLength": 36, "maxLength": 36},
			"lock_name":   bson.M{"bsonType": "string"},
			"user_id":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": 128},
			"hourly_rate": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"start_time":  bson.M{"bsonType": "date"},
			"end_time":    bson.M{"bsonType": "date"},
			"duration_ns": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"cost":        bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
		},
	},
}
