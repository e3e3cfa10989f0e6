package omexml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd2lab/ometiff/internal/pixel"
)

func TestStoreAddImageAndSizes(t *testing.T) {
	s := NewStore()
	i := s.AddImage()
	require.NoError(t, s.SetPixelsSizeX(i, 512))
	require.NoError(t, s.SetPixelsSizeY(i, 256))
	require.NoError(t, s.SetPixelsSizeZ(i, 3))
	require.NoError(t, s.SetPixelsSizeT(i, 1))

	x, err := s.GetPixelsSizeX(i)
	require.NoError(t, err)
	assert.Equal(t, 512, x)

	z, err := s.GetPixelsSizeZ(i)
	require.NoError(t, err)
	assert.Equal(t, 3, z)
}

func TestStoreSeriesOutOfRange(t *testing.T) {
	s := NewStore()
	_, err := s.GetPixelsSizeX(0)
	assert.Error(t, err)
}

func TestStoreChannelsAndSamplesPerPixel(t *testing.T) {
	s := NewStore()
	i := s.AddImage()
	require.NoError(t, s.AddChannel(i, "DAPI", 1))
	require.NoError(t, s.AddChannel(i, "GFP", 1))

	count, err := s.GetChannelCount(i)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	name, err := s.GetChannelName(i, 0)
	require.NoError(t, err)
	assert.Equal(t, "DAPI", name)

	spp, err := s.GetChannelSamplesPerPixel(i, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, spp)
}

func TestStorePixelsTypeAndDimensionOrder(t *testing.T) {
	s := NewStore()
	i := s.AddImage()
	require.NoError(t, s.SetPixelsType(i, pixel.UInt16))
	require.NoError(t, s.SetPixelsDimensionOrder(i, XYZTC))

	pt, err := s.GetPixelsType(i)
	require.NoError(t, err)
	assert.Equal(t, pixel.UInt16, pt)

	order, err := s.GetPixelsDimensionOrder(i)
	require.NoError(t, err)
	assert.Equal(t, XYZTC, order)
}

func TestStoreTiffDataRoundTrip(t *testing.T) {
	s := NewStore()
	i := s.AddImage()
	entries := []TiffData{
		{FirstZ: 0, FirstC: 0, FirstT: 0, IFD: 0, PlaneCount: 1},
		{FirstZ: 1, FirstC: 0, FirstT: 0, IFD: 1, PlaneCount: 1},
	}
	require.NoError(t, s.SetTiffData(i, entries))

	n, err := s.GetTiffDataCount(i)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	z, err := s.GetTiffDataFirstZ(i, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, z)

	ifd, err := s.GetTiffDataIFD(i, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, ifd)
}

func TestStoreResolutionsAndModulo(t *testing.T) {
	s := NewStore()
	i := s.AddImage()
	tiers := [][2]int64{{1024, 768}, {512, 384}, {256, 192}}
	require.NoError(t, s.SetResolutions(i, tiers))

	got, err := s.GetResolutions(i)
	require.NoError(t, err)
	assert.Equal(t, tiers, got)

	m := ModuloAnnotation{Axis: "Z", Start: 0, End: 4, Step: 1, Type: "other"}
	require.NoError(t, s.SetModulo(i, m))
	got2, ok, err := s.GetModulo(i, "Z")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, m, got2)

	_, ok, err = s.GetModulo(i, "T")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseDimensionOrder(t *testing.T) {
	o, err := ParseDimensionOrder("XYCZT")
	require.NoError(t, err)
	assert.Equal(t, XYCZT, o)
	assert.Equal(t, "XYCZT", o.String())

	_, err = ParseDimensionOrder("bogus")
	assert.Error(t, err)
}
