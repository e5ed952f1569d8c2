package problemgen

import "fmt"

// MissingParameterError reports a filter parameter key absent from the
// runtime parameter mapping. It aborts the enclosing Process call.
type MissingParameterError struct {
	Key string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Key)
}

// MissingContextError reports a named-dimension key a filter requires but the
// enclosing container did not supply (e.g. "time" outside a Series).
type MissingContextError struct {
	Dim string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("missing named dimension %q", e.Dim)
}

// ShapeMismatchError reports data whose shape disagrees with the declaring
// node's shape.
type ShapeMismatchError struct {
	Want []int
	Got  []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: node declares %v, data has %v", e.Want, e.Got)
}
