package ometiff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nd2lab/ometiff/internal/pixel"
)

func TestCoreMetadataDerivedCounts(t *testing.T) {
	c := &CoreMetadata{SizeZ: 3, SizeT: 2, SizeC: []int{1, 3, 1}}
	assert.Equal(t, 3, c.EffectiveSizeC())
	assert.Equal(t, 5, c.TotalSamplesC())
	assert.Equal(t, 3*2*3, c.ImageCount())
}

func TestCoreMetadataValidateBitsPerPixel(t *testing.T) {
	c := &CoreMetadata{PixelType: pixel.UInt8, BitsPerPixel: 8}
	assert.NoError(t, c.Validate())

	c.BitsPerPixel = 9
	assert.Error(t, c.Validate())
}

func TestDimensionOrderStringAndAxisLetters(t *testing.T) {
	cases := []struct {
		order   DimensionOrder
		name    string
		letters [3]byte
	}{
		{XYZCT, "XYZCT", [3]byte{'Z', 'C', 'T'}},
		{XYZTC, "XYZTC", [3]byte{'Z', 'T', 'C'}},
		{XYCTZ, "XYCTZ", [3]byte{'C', 'T', 'Z'}},
		{XYCZT, "XYCZT", [3]byte{'C', 'Z', 'T'}},
		{XYTCZ, "XYTCZ", [3]byte{'T', 'C', 'Z'}},
		{XYTZC, "XYTZC", [3]byte{'T', 'Z', 'C'}},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, c.order.String())
		assert.Equal(t, c.letters, c.order.axisLetters())
	}
}

func TestDimensionOrderStringUnknown(t *testing.T) {
	assert.Equal(t, "?", DimensionOrder(99).String())
}
