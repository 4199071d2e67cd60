package store

import "time"

// Field accessors tolerate the type drift that comes back from different
// backends (int32/int64 from BSON, []any for arrays).

func StringField(doc Document, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func BoolField(doc Document, key string) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return false
}

func IntField(doc Document, key string) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func TimeField(doc Document, key string) *time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	default:
		return nil
	}
}

func StringSliceField(doc Document, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func SubDocument(doc Document, key string) Document {
	if v, ok := doc[key].(map[string]any); ok {
		return v
	}
	return nil
}
