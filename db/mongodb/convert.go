package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fromBSON turns decoded BSON values into the plain Go values the rest of
// the service works with.
func fromBSON(v interface{}) interface{} {
	switch val := v.(type) {
	case bson.M:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = fromBSON(item)
		}
		return m
	case map[string]interface{}:
		for k, item := range val {
			val[k] = fromBSON(item)
		}
		return val
	case bson.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = fromBSON(e.Value)
		}
		return m
	case bson.A:
		s := make([]interface{}, len(val))
		for i, item := range val {
			s[i] = fromBSON(item)
		}
		return s
	case []interface{}:
		for i, item := range val {
			val[i] = fromBSON(item)
		}
		return val
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case primitive.Decimal128:
		return val.String()
	case int32:
		return int64(val)
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}
