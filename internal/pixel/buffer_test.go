package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planeExtents(x, y int64) [NumAxes]int64 {
	var e [NumAxes]int64
	for i := range e {
		e[i] = 1
	}
	e[AxisX] = x
	e[AxisY] = y
	return e
}

func TestNewPixelBufferIsOwned(t *testing.T) {
	b := NewPixelBuffer[uint16](planeExtents(3, 2))
	assert.True(t, b.Owned())
	assert.Equal(t, UInt16, b.Type())
	assert.Len(t, b.Array(), 6)
}

func TestWrapPixelBufferIsBorrowed(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	b := WrapPixelBuffer[float32](planeExtents(2, 2), data)
	assert.False(t, b.Owned())

	require.NoError(t, b.Set([NumAxes]int64{}, 9))
	assert.Equal(t, float32(9), data[0])
}

func TestSetAndAtRoundTrip(t *testing.T) {
	b := NewPixelBuffer[int32](planeExtents(4, 3))
	var coords [NumAxes]int64
	coords[AxisX] = 2
	coords[AxisY] = 1

	require.NoError(t, b.Set(coords, 42))
	v, err := b.At(coords)
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestAtOutOfRange(t *testing.T) {
	b := NewPixelBuffer[uint8](planeExtents(2, 2))
	var coords [NumAxes]int64
	coords[AxisX] = 5
	_, err := b.At(coords)
	require.Error(t, err)
	var oobErr *OutOfRangeError
	assert.ErrorAs(t, err, &oobErr)
}

func TestDataIsZeroCopyView(t *testing.T) {
	b := NewPixelBuffer[uint8](planeExtents(3, 1))
	require.NoError(t, b.Set([NumAxes]int64{}, 0xAB))
	assert.Equal(t, byte(0xAB), b.Data()[0])
}
