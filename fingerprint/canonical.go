package fingerprint

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// canonicalBytes serializes v into a stable byte representation suitable
// for hashing. Structs and maps are normalized (recursively) into
// map[string]any, so field names rather than declaration or insertion
// order determine the output, and a struct hashes identically to the
// equivalent map. The normalized value is then marshaled as JSON, which
// sorts object keys and formats numbers and strings stably.
func canonicalBytes(v any) ([]byte, error) {
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(n)
}

func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	// Types that define their own serialized form (time.Time and the
	// like) keep it; normalizing them field-by-field would change the
	// fingerprint of semantically identical values.
	switch v.(type) {
	case json.Marshaler, encoding.TextMarshaler:
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return normalize(rv.Elem().Interface())

	case reflect.Struct, reflect.Map:
		m := make(map[string]any)
		if err := mapstructure.Decode(v, &m); err != nil {
			return nil, fmt.Errorf("normalize %T: %w", v, err)
		}
		for k, val := range m {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			m[k] = n
		}
		return m, nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil

	default:
		return v, nil
	}
}
