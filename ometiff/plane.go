package ometiff

import (
	"github.com/nd2lab/ometiff/internal/pixel"
)

// planeExtents builds the 9-axis extent tuple for one 2-D plane: X, Y and
// Sample vary, every other axis (Z, T, Channel, and the three Modulo
// axes) is held at 1 since a plane is by definition a single coordinate
// along those axes.
func planeExtents(width, height, samples int) [pixel.NumAxes]int64 {
	var e [pixel.NumAxes]int64
	for i := range e {
		e[i] = 1
	}
	e[pixel.AxisX] = int64(width)
	e[pixel.AxisY] = int64(height)
	e[pixel.AxisSample] = int64(samples)
	return e
}

// bytesToVariant wraps raw, interleaved plane bytes decoded by
// internal/tiffio as a pixel.VariantPixelBuffer of the given resident
// type, borrowing the byte slice rather than copying it (ReadRegion
// already allocated a fresh buffer per call).
func bytesToVariant(t pixel.Type, width, height, samples int, raw []byte) (*pixel.VariantPixelBuffer, error) {
	extents := planeExtents(width, height, samples)
	switch t {
	case pixel.Int8:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[int8](raw))), nil
	case pixel.Int16:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[int16](raw))), nil
	case pixel.Int32:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[int32](raw))), nil
	case pixel.UInt8:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[uint8](raw))), nil
	case pixel.UInt16:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[uint16](raw))), nil
	case pixel.UInt32:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[uint32](raw))), nil
	case pixel.Bit:
		return pixel.NewBitVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[uint8](raw))), nil
	case pixel.Float:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[float32](raw))), nil
	case pixel.Double:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[float64](raw))), nil
	case pixel.ComplexFloat:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[complex64](raw))), nil
	case pixel.ComplexDouble:
		return pixel.NewVariant(pixel.WrapPixelBuffer(extents, pixel.BytesToElems[complex128](raw))), nil
	default:
		return nil, newErr(UnsupportedPixelType, "unsupported pixel type %s", t)
	}
}

// sampleFormatFor maps a pixel.Type to the TIFF SampleFormat enum value
// (1 = unsigned int, 2 = signed int, 3 = IEEE float), the tag the writer
// must set so a reader can tell Int8 apart from UInt8 at the same bit
// depth.
func sampleFormatFor(t pixel.Type) int {
	switch t {
	case pixel.Int8, pixel.Int16, pixel.Int32:
		return 2
	case pixel.Float, pixel.Double, pixel.ComplexFloat, pixel.ComplexDouble:
		return 3
	default:
		return 1
	}
}
