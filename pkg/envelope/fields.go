package envelope

import "fmt"

// bytesField coerces a decoded CBOR element into a byte slice; nil decodes
// to an empty slice so optional fixed-length checks still fail cleanly
// rather than panicking on a nil dereference.
func bytesField(v interface{}, name string) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("field %q: expected byte string, got %T", name, v)
	}
	return b, nil
}

func stringSliceField(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array of strings, got %T", v)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("array element %d: expected string, got %T", i, item)
		}
		out[i] = s
	}
	return out, nil
}

func intSliceField(v interface{}) ([]int, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected array of integers, got %T", v)
	}
	out := make([]int, len(items))
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("array element %d: negative index %d", i, n)
		}
		out[i] = n
	}
	return out, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case uint64:
		return int(n), nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func intIntMapField(v interface{}) (map[int]int, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return nil, fmt.Errorf("expected integer-keyed map, got %T", v)
	}
	out := make(map[int]int, len(m))
	for k, val := range m {
		ki, err := toInt(k)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		vi, err := toInt(val)
		if err != nil {
			return nil, fmt.Errorf("map value: %w", err)
		}
		out[ki] = vi
	}
	return out, nil
}
