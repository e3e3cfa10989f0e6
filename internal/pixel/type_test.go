package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, Int8, TypeOf[int8]())
	assert.Equal(t, Int16, TypeOf[int16]())
	assert.Equal(t, Int32, TypeOf[int32]())
	assert.Equal(t, UInt8, TypeOf[uint8]())
	assert.Equal(t, UInt16, TypeOf[uint16]())
	assert.Equal(t, UInt32, TypeOf[uint32]())
	assert.Equal(t, Float, TypeOf[float32]())
	assert.Equal(t, Double, TypeOf[float64]())
	assert.Equal(t, ComplexFloat, TypeOf[complex64]())
	assert.Equal(t, ComplexDouble, TypeOf[complex128]())
}

func TestBitSizeAndMemoryByteSize(t *testing.T) {
	assert.Equal(t, 1, Bit.BitSize())
	assert.Equal(t, 1, Bit.MemoryByteSize())
	assert.Equal(t, 8, UInt8.BitSize())
	assert.Equal(t, 1, UInt8.MemoryByteSize())
	assert.Equal(t, 128, ComplexDouble.BitSize())
	assert.Equal(t, 16, ComplexDouble.MemoryByteSize())
}

func TestSigned(t *testing.T) {
	assert.True(t, Int8.Signed())
	assert.True(t, Int16.Signed())
	assert.True(t, Int32.Signed())
	assert.False(t, UInt8.Signed())
	assert.False(t, Float.Signed())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "uint16", UInt16.String())
	assert.Equal(t, "bit", Bit.String())
	assert.Contains(t, Type(99).String(), "pixel.Type")
}
