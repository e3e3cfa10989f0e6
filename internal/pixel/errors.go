package pixel

import "fmt"

// OutOfRangeError reports an index tuple outside a buffer's extents.
type OutOfRangeError struct {
	Axis  Axis
	Index int64
	Bound int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("pixel: index %d out of range on axis %s (extent %d)", e.Index, e.Axis, e.Bound)
}

// WrongTypeError reports a visitor or projection invoked with an element
// type that does not match the buffer's resident pixel.Type.
type WrongTypeError struct {
	Want, Have Type
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("pixel: wrong pixel type: buffer holds %s, accessor wants %s", e.Have, e.Want)
}
