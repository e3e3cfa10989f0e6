package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sumVisitor struct{}

func (sumVisitor) VisitInt8(b *PixelBuffer[int8]) (any, error)       { return len(b.Array()), nil }
func (sumVisitor) VisitInt16(b *PixelBuffer[int16]) (any, error)     { return len(b.Array()), nil }
func (sumVisitor) VisitInt32(b *PixelBuffer[int32]) (any, error)     { return len(b.Array()), nil }
func (sumVisitor) VisitUInt8(b *PixelBuffer[uint8]) (any, error)     { return "uint8", nil }
func (sumVisitor) VisitUInt16(b *PixelBuffer[uint16]) (any, error)   { return len(b.Array()), nil }
func (sumVisitor) VisitUInt32(b *PixelBuffer[uint32]) (any, error)   { return len(b.Array()), nil }
func (sumVisitor) VisitBit(b *PixelBuffer[uint8]) (any, error)       { return "bit", nil }
func (sumVisitor) VisitFloat(b *PixelBuffer[float32]) (any, error)   { return len(b.Array()), nil }
func (sumVisitor) VisitDouble(b *PixelBuffer[float64]) (any, error)  { return len(b.Array()), nil }
func (sumVisitor) VisitComplexFloat(b *PixelBuffer[complex64]) (any, error) {
	return len(b.Array()), nil
}
func (sumVisitor) VisitComplexDouble(b *PixelBuffer[complex128]) (any, error) {
	return len(b.Array()), nil
}

func TestVariantDispatchDistinguishesBitFromUInt8(t *testing.T) {
	byteBuf := NewPixelBuffer[uint8](planeExtents(2, 2))
	uintVariant := NewVariant(byteBuf)
	bitVariant := NewBitVariant(byteBuf)

	assert.Equal(t, UInt8, uintVariant.Type())
	assert.Equal(t, Bit, bitVariant.Type())

	uintResult, err := uintVariant.Visit(sumVisitor{})
	require.NoError(t, err)
	assert.Equal(t, "uint8", uintResult)

	bitResult, err := bitVariant.Visit(sumVisitor{})
	require.NoError(t, err)
	assert.Equal(t, "bit", bitResult)
}

func TestVariantArrayProjectionTypeMismatch(t *testing.T) {
	v := NewVariant(NewPixelBuffer[float32](planeExtents(2, 2)))
	_, err := Array[uint16](v)
	require.Error(t, err)
	var wrongType *WrongTypeError
	assert.ErrorAs(t, err, &wrongType)
}

func TestAssignCopiesBetweenBuffers(t *testing.T) {
	src := NewPixelBuffer[int16](planeExtents(2, 2))
	var c [NumAxes]int64
	c[AxisX], c[AxisY] = 1, 1
	require.NoError(t, src.Set(c, 77))

	dst := NewPixelBuffer[int16](planeExtents(2, 2))
	require.NoError(t, Assign(dst, src))

	v, err := dst.At(c)
	require.NoError(t, err)
	assert.Equal(t, int16(77), v)
}
