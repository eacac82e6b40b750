package ingest

import (
	"strconv"
	"strings"
)

// Record is the common semi-structured input shape every adapter produces:
// one scraped/exported row keyed by whatever names the source happened to use.
type Record map[string]interface{}

// stringAt reads a string value, following one level of dotted path for
// nested objects ("location.full_name").
func (r Record) stringAt(key string) string {
	if dot := strings.Index(key, "."); dot > 0 {
		nested, ok := r[key[:dot]].(map[string]interface{})
		if !ok {
			return ""
		}
		return Record(nested).stringAt(key[dot+1:])
	}
	return toString(r[key])
}

func (r Record) valueAt(key string) interface{} {
	if dot := strings.Index(key, "."); dot > 0 {
		nested, ok := r[key[:dot]].(map[string]interface{})
		if !ok {
			return nil
		}
		return Record(nested).valueAt(key[dot+1:])
	}
	return r[key]
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		// JSON numbers decode as float64; ids are typically integral.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func toInt(v interface{}) *int {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		i := int(val)
		return &i
	case int:
		return &val
	case int64:
		i := int(val)
		return &i
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}

func toFloat(v interface{}) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return &val
	case int:
		f := float64(val)
		return &f
	case int64:
		f := float64(val)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func toBool(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(val))
		return b
	default:
		return false
	}
}
