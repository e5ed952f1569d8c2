package problemgen

import "fmt"

// Params is the flat string-keyed parameter mapping resolved once per sweep
// point. Values are scalars, policy objects (radius generators), filters, or
// callbacks; all filters in one container-tree traversal share one mapping.
type Params map[string]any

// Clone returns a shallow copy. Values are shared; only the map is private.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into p, overwriting existing keys.
func (p Params) Merge(other Params) {
	for k, v := range other {
		p[k] = v
	}
}

// Value returns the raw value for key.
func (p Params) Value(key string) (any, error) {
	v, ok := p[key]
	if !ok {
		return nil, &MissingParameterError{Key: key}
	}
	return v, nil
}

// Float resolves key to a float64, coercing integer values.
func (p Params) Float(key string) (float64, error) {
	v, ok := p[key]
	if !ok {
		return 0, &MissingParameterError{Key: key}
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("parameter %q: expected number, got %T", key, v)
	}
}

// Int resolves key to an int, coercing numeric values.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, &MissingParameterError{Key: key}
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("parameter %q: expected integer, got %T", key, v)
	}
}

// String resolves key to a string.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", &MissingParameterError{Key: key}
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Filter resolves key to a Filter value. Combinator and wrapper filters use
// this to pick up their child filters from the shared mapping.
func (p Params) Filter(key string) (Filter, error) {
	v, ok := p[key]
	if !ok {
		return nil, &MissingParameterError{Key: key}
	}
	f, ok := v.(Filter)
	if !ok {
		return nil, fmt.Errorf("parameter %q: expected Filter, got %T", key, v)
	}
	return f, nil
}
