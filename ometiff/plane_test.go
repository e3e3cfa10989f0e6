package ometiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd2lab/ometiff/internal/pixel"
)

func TestPlaneExtentsHoldsNonSpatialAxesAtOne(t *testing.T) {
	e := planeExtents(64, 32, 3)
	assert.Equal(t, int64(64), e[pixel.AxisX])
	assert.Equal(t, int64(32), e[pixel.AxisY])
	assert.Equal(t, int64(3), e[pixel.AxisSample])
	assert.Equal(t, int64(1), e[pixel.AxisZ])
	assert.Equal(t, int64(1), e[pixel.AxisChannel])
	assert.Equal(t, int64(1), e[pixel.AxisT])
}

func TestBytesToVariantEveryPixelType(t *testing.T) {
	cases := []struct {
		t        pixel.Type
		elemSize int
	}{
		{pixel.Int8, 1}, {pixel.Int16, 2}, {pixel.Int32, 4},
		{pixel.UInt8, 1}, {pixel.UInt16, 2}, {pixel.UInt32, 4},
		{pixel.Bit, 1}, {pixel.Float, 4}, {pixel.Double, 8},
		{pixel.ComplexFloat, 8}, {pixel.ComplexDouble, 16},
	}
	const width, height, samples = 2, 2, 1
	for _, c := range cases {
		raw := make([]byte, width*height*samples*c.elemSize)
		v, err := bytesToVariant(c.t, width, height, samples, raw)
		require.NoError(t, err, "type %s", c.t)
		assert.Equal(t, c.t, v.Type())
	}
}

func TestBytesToVariantUnsupportedType(t *testing.T) {
	_, err := bytesToVariant(pixel.Type(99), 2, 2, 1, make([]byte, 4))
	require.Error(t, err)
	assert.True(t, IsKind(err, UnsupportedPixelType))
}

func TestSampleFormatFor(t *testing.T) {
	assert.Equal(t, 2, sampleFormatFor(pixel.Int16))
	assert.Equal(t, 3, sampleFormatFor(pixel.Double))
	assert.Equal(t, 1, sampleFormatFor(pixel.UInt8))
	assert.Equal(t, 1, sampleFormatFor(pixel.Bit))
}
