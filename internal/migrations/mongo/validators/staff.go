package validators

import "go.mongodb.org/mongo-driver/bson"

var StaffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"tenant_id", "name", "is_active", "created_at", "updated_at"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"is_active": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var CapabilityValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"tenant_id", "staff_id", "service_id", "can_perform", "home_visit"},
		"properties": bson.M{
			"can_perform": bson.M{"bsonType": "bool"},
			"home_visit":  bson.M{"bsonType": "bool"},
		},
	},
}

var StaffScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"tenant_id", "staff_id", "days"},
		"properties": bson.M{
			"days": bson.M{
				"bsonType": "object",
			},
		},
	},
}

// StaffLockValidator keeps lock documents expirable by the TTL index.
var StaffLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"owner", "expires_at"},
		"properties": bson.M{
			"owner":      bson.M{"bsonType": "string", "minLength": 1},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}
