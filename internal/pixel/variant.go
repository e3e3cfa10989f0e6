package pixel

import "fmt"

// VariantPixelBuffer holds exactly one of the eleven PixelBuffer[T]
// instantiations, tagged by the resident pixel.Type. Copying a
// VariantPixelBuffer shares storage with the original (shallow copy);
// Assign re-packs between two variants of compatible extents and pixel
// type according to the destination's storage order.
type VariantPixelBuffer struct {
	typ     Type
	resident any // one of *PixelBuffer[T] for T in the eleven Elem types, or *bitBuffer for Bit
}

// bitBuffer backs the Bit pixel type: in-memory elements are bytes
// (0 or 1), matching the spec's note that Bit unpacks to a byte-sized
// element even though it is packed on disk.
type bitBuffer = PixelBuffer[uint8]

// NewVariant wraps an already-constructed PixelBuffer[T] as a variant,
// tagging it with T's pixel.Type.
func NewVariant[T Elem](buf *PixelBuffer[T]) *VariantPixelBuffer {
	return &VariantPixelBuffer{typ: TypeOf[T](), resident: buf}
}

// NewBitVariant wraps a byte-backed buffer as the Bit pixel type
// explicitly, since TypeOf[uint8] alone cannot distinguish UInt8 from Bit.
func NewBitVariant(buf *bitBuffer) *VariantPixelBuffer {
	return &VariantPixelBuffer{typ: Bit, resident: buf}
}

// Type returns the resident pixel type tag.
func (v *VariantPixelBuffer) Type() Type { return v.typ }

// Array projects the variant to its typed backing slice, failing with
// WrongTypeError if T does not match the resident type.
func Array[T Elem](v *VariantPixelBuffer) ([]T, error) {
	buf, ok := v.resident.(*PixelBuffer[T])
	if !ok {
		return nil, &WrongTypeError{Want: TypeOf[T](), Have: v.typ}
	}
	return buf.Array(), nil
}

// Data returns the variant's backing storage as a byte span, regardless
// of resident type.
func (v *VariantPixelBuffer) Data() []byte {
	return v.dispatchData()
}

// Visitor has one method per pixel type, the sum-type-matching
// replacement for a virtual-dispatch visitor: implementing an algorithm
// means filling in the eleven methods, never a type switch scattered at
// call sites.
type Visitor interface {
	VisitInt8(*PixelBuffer[int8]) (any, error)
	VisitInt16(*PixelBuffer[int16]) (any, error)
	VisitInt32(*PixelBuffer[int32]) (any, error)
	VisitUInt8(*PixelBuffer[uint8]) (any, error)
	VisitUInt16(*PixelBuffer[uint16]) (any, error)
	VisitUInt32(*PixelBuffer[uint32]) (any, error)
	VisitBit(*PixelBuffer[uint8]) (any, error)
	VisitFloat(*PixelBuffer[float32]) (any, error)
	VisitDouble(*PixelBuffer[float64]) (any, error)
	VisitComplexFloat(*PixelBuffer[complex64]) (any, error)
	VisitComplexDouble(*PixelBuffer[complex128]) (any, error)
}

// dispatchTable maps each pixel.Type to the Visitor method that handles
// it, built once at package init rather than as a type switch inline in
// Visit. Bit and UInt8 share Go representation but route to distinct
// Visitor methods since v.typ disambiguates them.
var dispatchTable = map[Type]func(Visitor, *VariantPixelBuffer) (any, error){
	Int8:           func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitInt8(v.resident.(*PixelBuffer[int8])) },
	Int16:          func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitInt16(v.resident.(*PixelBuffer[int16])) },
	Int32:          func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitInt32(v.resident.(*PixelBuffer[int32])) },
	UInt8:          func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitUInt8(v.resident.(*PixelBuffer[uint8])) },
	UInt16:         func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitUInt16(v.resident.(*PixelBuffer[uint16])) },
	UInt32:         func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitUInt32(v.resident.(*PixelBuffer[uint32])) },
	Bit:            func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitBit(v.resident.(*PixelBuffer[uint8])) },
	Float:          func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitFloat(v.resident.(*PixelBuffer[float32])) },
	Double:         func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitDouble(v.resident.(*PixelBuffer[float64])) },
	ComplexFloat:   func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitComplexFloat(v.resident.(*PixelBuffer[complex64])) },
	ComplexDouble:  func(vis Visitor, v *VariantPixelBuffer) (any, error) { return vis.VisitComplexDouble(v.resident.(*PixelBuffer[complex128])) },
}

// Visit invokes the Visitor method matching v's resident pixel type and
// returns its result.
func (v *VariantPixelBuffer) Visit(vis Visitor) (any, error) {
	fn, ok := dispatchTable[v.typ]
	if !ok {
		return nil, fmt.Errorf("pixel: no dispatch entry for type %s", v.typ)
	}
	return fn(vis, v)
}

func (v *VariantPixelBuffer) dispatchData() []byte {
	switch v.typ {
	case Int8:
		return v.resident.(*PixelBuffer[int8]).Data()
	case Int16:
		return v.resident.(*PixelBuffer[int16]).Data()
	case Int32:
		return v.resident.(*PixelBuffer[int32]).Data()
	case UInt8, Bit:
		return v.resident.(*PixelBuffer[uint8]).Data()
	case UInt16:
		return v.resident.(*PixelBuffer[uint16]).Data()
	case UInt32:
		return v.resident.(*PixelBuffer[uint32]).Data()
	case Float:
		return v.resident.(*PixelBuffer[float32]).Data()
	case Double:
		return v.resident.(*PixelBuffer[float64]).Data()
	case ComplexFloat:
		return v.resident.(*PixelBuffer[complex64]).Data()
	case ComplexDouble:
		return v.resident.(*PixelBuffer[complex128]).Data()
	default:
		return nil
	}
}

// Assign re-packs src into dst according to dst's storage order, failing
// if extents or pixel type differ. Both buffers must share pixel type T;
// callers that only have VariantPixelBuffers should Array[T] both sides
// first since a generic function cannot branch on a runtime type tag.
func Assign[T Elem](dst, src *PixelBuffer[T]) error {
	if dst.typeMismatch(src) {
		return &WrongTypeError{Want: dst.Type(), Have: src.Type()}
	}
	srcExtents := src.Extents()
	dstExtents := dst.Extents()
	for i := range srcExtents {
		if srcExtents[i] != dstExtents[i] {
			return fmt.Errorf("pixel: Assign extent mismatch on axis %s: dst=%d src=%d", Axis(i), dstExtents[i], srcExtents[i])
		}
	}
	var coords [NumAxes]int64
	return walkAxes(dstExtents, coords, 0, func(c [NumAxes]int64) error {
		v, err := src.At(c)
		if err != nil {
			return err
		}
		return dst.Set(c, v)
	})
}

func (dst *PixelBuffer[T]) typeMismatch(src *PixelBuffer[T]) bool {
	return dst.Type() != src.Type()
}

func walkAxes(extents, coords [NumAxes]int64, axis int, fn func([NumAxes]int64) error) error {
	if axis == NumAxes {
		return fn(coords)
	}
	for i := int64(0); i < extents[axis]; i++ {
		coords[axis] = i
		if err := walkAxes(extents, coords, axis+1, fn); err != nil {
			return err
		}
	}
	return nil
}
