package validators

import "go.mongodb.org/mongo-driver/bson"

var stationSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "name", "latitude", "longitude"},
	"properties": bson.M{
		"id":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 64},
		"name":      bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		"latitude":  bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
		"longitude": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
	},
}

// LockValidator enforces that an active rental always has its user, start
// time and rate together, and that the secret is 512 bytes.
var LockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"name",
			"station",
			"url",
			"secret",
			"mac",
			"deleted",
			"version",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
				"pattern":  "^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"station": stationSchema,

			"rental": bson.M{
				"bsonType":             "object",
				"required":             []string{"user_id", "start_time", "hourly_rate"},
				"additionalProperties": false,
				"properties": bson.M{
					"user_id":     bson.M{"bsonType": "string", "minLength": 1, "maxLength": 128},
					"start_time":  bson.M{"bsonType": "date"},
					"hourly_rate": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				},
			},

			"url": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"secret": bson.M{
				"bsonType": "binData",
			},

			"mac": bson.M{
				"bsonType": "string",
				"pattern":  "^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$",
			},

			"deleted": bson.M{
				"bsonType": "bool",
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
		},
	},
}
