package validators

import "go.mongodb.org/mongo-driver/bson"

var TenantValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"subdomain", "name", "status", "created_at"},
		"properties": bson.M{
			"subdomain": bson.M{
				"bsonType": "string",
				"pattern":  `^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"status": bson.M{
				"enum": []string{"active", "suspended"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"tenant_id", "name", "duration_minutes", "location_type", "created_at"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"duration_minutes": bson.M{
				"bsonType": integer,
				"minimum":  5,
				"maximum":  720,
			},
			"location_type": bson.M{
				"enum": []string{"on_premise", "home_visit", "both"},
			},
			"daily_quota_per_staff": bson.M{
				"bsonType": integer,
				"minimum":  0,
				"maximum":  100,
			},
			"home_visit_buffer_minutes": bson.M{
				"bsonType": integer,
				"minimum":  0,
				"maximum":  240,
			},
			"requires_staff_assignment": bson.M{
				"bsonType": "bool",
			},
		},
	},
}

var CustomerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"tenant_id", "name", "phone", "created_at"},
		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{6,14}$`,
			},
		},
	},
}
