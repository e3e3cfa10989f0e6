package ometiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nd2lab/ometiff/internal/omexml"
	"github.com/nd2lab/ometiff/internal/pixel"
)

func newSingleFileStore(t *testing.T, order omexml.DimensionOrder, sizeZ, sizeT int, channelSamples []int) (*omexml.Store, int) {
	t.Helper()
	s := omexml.NewStore()
	i := s.AddImage()
	require.NoError(t, s.SetPixelsSizeX(i, 16))
	require.NoError(t, s.SetPixelsSizeY(i, 8))
	require.NoError(t, s.SetPixelsSizeZ(i, sizeZ))
	require.NoError(t, s.SetPixelsSizeT(i, sizeT))
	require.NoError(t, s.SetPixelsType(i, pixel.UInt8))
	require.NoError(t, s.SetPixelsDimensionOrder(i, order))
	for _, spp := range channelSamples {
		require.NoError(t, s.AddChannel(i, "", spp))
	}
	return s, i
}

func coreFromOME(order omexml.DimensionOrder, sizeZ, sizeT int, channelSamples []int) *CoreMetadata {
	return &CoreMetadata{
		SizeX:          16,
		SizeY:          8,
		SizeZ:          sizeZ,
		SizeT:          sizeT,
		SizeC:          channelSamples,
		DimensionOrder: fromOMEDimensionOrder(order),
	}
}

func TestFromOMEDimensionOrderIsStraightCast(t *testing.T) {
	assert.Equal(t, XYZCT, fromOMEDimensionOrder(omexml.XYZCT))
	assert.Equal(t, XYTZC, fromOMEDimensionOrder(omexml.XYTZC))
}

func TestFindUsedFilesSingleFileNoUUID(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 1, 1, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{{PlaneCount: 1, IFD: 0}}))

	files, err := findUsedFiles(s, "/data/owner.ome.tif", i)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/owner.ome.tif"}, files)
}

func TestFindUsedFilesNoTiffDataFallsBackToOwner(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 1, 1, []int{1})
	files, err := findUsedFiles(s, "/data/owner.ome.tif", i)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/owner.ome.tif"}, files)
}

func TestFindUsedFilesDeduplicatesExternalReferences(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 2, 1, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{
		{FirstZ: 0, PlaneCount: 1, IFD: 0, UUID: &omexml.UUID{FileName: "part1.tif", Value: "u1"}},
		{FirstZ: 1, PlaneCount: 1, IFD: 0, UUID: &omexml.UUID{FileName: "part1.tif", Value: "u1"}},
	}))

	files, err := findUsedFiles(s, "/data/owner.ome.tif", i)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/part1.tif"}, files)
}

func TestComputeSeriesIndexStartTracksIndependentMinimums(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 4, 2, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{
		{FirstZ: 2, FirstC: 0, FirstT: 1, PlaneCount: 1, IFD: 0},
		{FirstZ: 3, FirstC: 0, FirstT: 0, PlaneCount: 1, IFD: 1},
	}))

	start, err := computeSeriesIndexStart(s, i)
	require.NoError(t, err)
	assert.Equal(t, seriesIndexStart{z: 2, c: 0, t: 0}, start)
}

func TestComputeSeriesIndexStartEmptyIsZero(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 1, 1, []int{1})
	start, err := computeSeriesIndexStart(s, i)
	require.NoError(t, err)
	assert.Equal(t, seriesIndexStart{}, start)
}

func TestFindTiffDataLocatesCoveringEntry(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 3, 1, []int{2})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{
		{FirstZ: 0, FirstC: 0, FirstT: 0, PlaneCount: 3, IFD: 0}, // covers z=0,1,2 at c=0,t=0
		{FirstZ: 0, FirstC: 1, FirstT: 0, PlaneCount: 3, IFD: 3}, // covers z=0,1,2 at c=1,t=0
	}))

	td, err := findTiffData(s, i, XYZCT, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, td)

	td, err = findTiffData(s, i, XYZCT, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, td)
}

func TestFindTiffDataReturnsMinusOneWhenUncovered(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 3, 1, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{{FirstZ: 0, PlaneCount: 1, IFD: 0}}))

	td, err := findTiffData(s, i, XYZCT, 2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, td)
}

func TestFixImageCountsCompleteCoverageOK(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 2, 1, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{{FirstZ: 0, PlaneCount: 2, IFD: 0}}))

	core := []*CoreMetadata{coreFromOME(omexml.XYZCT, 2, 1, []int{1})}
	assert.NoError(t, fixImageCounts(s, core))
}

func TestFixImageCountsIncompleteCoverageErrors(t *testing.T) {
	s, i := newSingleFileStore(t, omexml.XYZCT, 2, 1, []int{1})
	require.NoError(t, s.SetTiffData(i, []omexml.TiffData{{FirstZ: 0, PlaneCount: 1, IFD: 0}}))

	core := []*CoreMetadata{coreFromOME(omexml.XYZCT, 2, 1, []int{1})}
	err := fixImageCounts(s, core)
	require.Error(t, err)
	assert.True(t, IsKind(err, IncompletePlanes))
}

func TestFixDimensionsPrefersIFDValues(t *testing.T) {
	core := &CoreMetadata{SizeX: 100, SizeY: 50}
	fixDimensions(core, 64, 32)
	assert.Equal(t, 64, core.SizeX)
	assert.Equal(t, 32, core.SizeY)
}

func TestFixDimensionsIgnoresZero(t *testing.T) {
	core := &CoreMetadata{SizeX: 100, SizeY: 50}
	fixDimensions(core, 0, 0)
	assert.Equal(t, 100, core.SizeX)
	assert.Equal(t, 50, core.SizeY)
}

func TestFixOMEROMetadataForcesXYZCTWhenMarked(t *testing.T) {
	core := &CoreMetadata{DimensionOrder: XYTZC}
	fixOMEROMetadata(true, core, "DAPI")
	assert.Equal(t, XYZCT, core.DimensionOrder)
}

func TestFixOMEROMetadataLeavesOrderWhenNoMarkerOrNoChannelName(t *testing.T) {
	core := &CoreMetadata{DimensionOrder: XYTZC}
	fixOMEROMetadata(false, core, "DAPI")
	assert.Equal(t, XYTZC, core.DimensionOrder)

	core2 := &CoreMetadata{DimensionOrder: XYTZC}
	fixOMEROMetadata(true, core2, "")
	assert.Equal(t, XYTZC, core2.DimensionOrder)
}

func TestAddSubResolutionsAcceptsDescendingTiers(t *testing.T) {
	full := &CoreMetadata{SizeX: 1024, SizeY: 768}
	tiers := []subResolutionTier{
		{SizeX: 512, SizeY: 384, IFDIndex: 1},
		{SizeX: 256, SizeY: 192, IFDIndex: 2},
	}
	assert.NoError(t, addSubResolutions(full, tiers))
}

func TestAddSubResolutionsRejectsAscendingWidth(t *testing.T) {
	full := &CoreMetadata{SizeX: 1024, SizeY: 768}
	tiers := []subResolutionTier{
		{SizeX: 512, SizeY: 384, IFDIndex: 1},
		{SizeX: 600, SizeY: 450, IFDIndex: 2},
	}
	err := addSubResolutions(full, tiers)
	require.Error(t, err)
	assert.True(t, IsKind(err, FormatInvalid))
}

func TestAddSubResolutionsRejectsTierExceedingFull(t *testing.T) {
	full := &CoreMetadata{SizeX: 512, SizeY: 384}
	tiers := []subResolutionTier{{SizeX: 1024, SizeY: 768, IFDIndex: 1}}
	err := addSubResolutions(full, tiers)
	require.Error(t, err)
	assert.True(t, IsKind(err, FormatInvalid))
}
