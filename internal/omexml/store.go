package omexml

import (
	"fmt"

	"github.com/nd2lab/ometiff/internal/pixel"
)

// DimensionOrder is one of the six orderings OME-XML allows for how a
// series' Z, C, T axes are laid out across its plane index.
type DimensionOrder int

const (
	XYZCT DimensionOrder = iota
	XYZTC
	XYCTZ
	XYCZT
	XYTCZ
	XYTZC
)

var dimensionOrderNames = [...]string{"XYZCT", "XYZTC", "XYCTZ", "XYCZT", "XYTCZ", "XYTZC"}

func (o DimensionOrder) String() string {
	if int(o) < 0 || int(o) >= len(dimensionOrderNames) {
		return "?"
	}
	return dimensionOrderNames[o]
}

// ParseDimensionOrder resolves one of the six OME-XML DimensionOrder
// strings, failing for anything else.
func ParseDimensionOrder(s string) (DimensionOrder, error) {
	for i, n := range dimensionOrderNames {
		if n == s {
			return DimensionOrder(i), nil
		}
	}
	return 0, fmt.Errorf("omexml: unrecognized dimension order %q", s)
}

// seriesState is the mutable, in-memory representation of one <Image>
// that Store's getters/setters operate on; Document is only the
// serialization shape.
type seriesState struct {
	name            string
	sizeX, sizeY    int
	sizeZ, sizeT    int
	pixelType       pixel.Type
	significantBits int
	dimOrder        DimensionOrder
	channels        []channelState
	tiffData        []TiffData
	resolutions     [][2]int64
	modulo          map[string]ModuloAnnotation
	binaryOnlyFile  string
}

type channelState struct {
	name            string
	samplesPerPixel int
}

// Store is the concrete backing implementation of the MetadataRetrieve/
// MetadataStore shape: a mutable, in-process model the reader fills from
// parsed XML and the writer fills from caller-set dimensions, with one
// getter/setter pair per field rather than a single generic property bag.
type Store struct {
	series []seriesState
	// OmeroExportMarker records whether this dataset's UUID/file table
	// carried the __omero_export marker (spec.md §4.5 step 9), which
	// forces dimensionOrder to XYZCT when the first channel is named.
	// Unmarshal does not detect the marker; the field stays false unless
	// a caller sets it.
	OmeroExportMarker bool
}

// NewStore returns an empty metadata store with no series.
func NewStore() *Store { return &Store{} }

// GetImageCount returns the number of series in the store.
func (s *Store) GetImageCount() int { return len(s.series) }

// AddImage appends a new, zero-valued series and returns its index.
func (s *Store) AddImage() int {
	s.series = append(s.series, seriesState{modulo: make(map[string]ModuloAnnotation)})
	return len(s.series) - 1
}

func (s *Store) series_(i int) (*seriesState, error) {
	if i < 0 || i >= len(s.series) {
		return nil, fmt.Errorf("omexml: series index %d out of range (have %d)", i, len(s.series))
	}
	return &s.series[i], nil
}

// GetPixelsSizeX/Y/Z/T and SetPixelsSizeX/Y/Z/T access the per-axis
// extents of series i.
func (s *Store) GetPixelsSizeX(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.sizeX, nil
}

func (s *Store) GetPixelsSizeY(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.sizeY, nil
}

func (s *Store) GetPixelsSizeZ(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.sizeZ, nil
}

func (s *Store) GetPixelsSizeT(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.sizeT, nil
}

func (s *Store) SetPixelsSizeX(i, v int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.sizeX = v
	return nil
}

func (s *Store) SetPixelsSizeY(i, v int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.sizeY = v
	return nil
}

func (s *Store) SetPixelsSizeZ(i, v int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.sizeZ = v
	return nil
}

func (s *Store) SetPixelsSizeT(i, v int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.sizeT = v
	return nil
}

// GetChannelCount returns the number of channels declared on series i;
// GetPixelsSizeC derives effectiveSizeC as len(channels).
func (s *Store) GetChannelCount(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return len(sr.channels), nil
}

func (s *Store) GetPixelsSizeC(i int) (int, error) { return s.GetChannelCount(i) }

// GetChannelSamplesPerPixel returns channel c's sample count on series i.
func (s *Store) GetChannelSamplesPerPixel(i, c int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	if c < 0 || c >= len(sr.channels) {
		return 0, fmt.Errorf("omexml: channel index %d out of range on series %d", c, i)
	}
	return sr.channels[c].samplesPerPixel, nil
}

// AddChannel appends a channel with the given sample count to series i.
func (s *Store) AddChannel(i int, name string, samplesPerPixel int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.channels = append(sr.channels, channelState{name: name, samplesPerPixel: samplesPerPixel})
	return nil
}

// GetChannelName returns channel c's display name, if any, on series i.
func (s *Store) GetChannelName(i, c int) (string, error) {
	sr, err := s.series_(i)
	if err != nil {
		return "", err
	}
	if c < 0 || c >= len(sr.channels) {
		return "", fmt.Errorf("omexml: channel index %d out of range on series %d", c, i)
	}
	return sr.channels[c].name, nil
}

// GetPixelsType / SetPixelsType access the resident pixel.Type of series i.
func (s *Store) GetPixelsType(i int) (pixel.Type, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.pixelType, nil
}

func (s *Store) SetPixelsType(i int, t pixel.Type) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.pixelType = t
	return nil
}

// GetPixelsSignificantBits / SetPixelsSignificantBits access bitsPerPixel,
// which must not exceed 8*sizeof(pixelType).
func (s *Store) GetPixelsSignificantBits(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.significantBits, nil
}

func (s *Store) SetPixelsSignificantBits(i, v int) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.significantBits = v
	return nil
}

// GetPixelsDimensionOrder / SetPixelsDimensionOrder access series i's
// DimensionOrder.
func (s *Store) GetPixelsDimensionOrder(i int) (DimensionOrder, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return sr.dimOrder, nil
}

func (s *Store) SetPixelsDimensionOrder(i int, o DimensionOrder) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.dimOrder = o
	return nil
}

// GetTiffDataCount returns the number of TiffData entries on series i.
func (s *Store) GetTiffDataCount(i int) (int, error) {
	sr, err := s.series_(i)
	if err != nil {
		return 0, err
	}
	return len(sr.tiffData), nil
}

// GetTiffDataIFD/PlaneCount/FirstZ/FirstC/FirstT return td's fields on
// series i.
func (s *Store) GetTiffDataIFD(i, td int) (int, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return 0, err
	}
	return t.IFD, nil
}

func (s *Store) GetTiffDataPlaneCount(i, td int) (int, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return 0, err
	}
	return t.PlaneCount, nil
}

func (s *Store) GetTiffDataFirstZ(i, td int) (int, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return 0, err
	}
	return t.FirstZ, nil
}

func (s *Store) GetTiffDataFirstC(i, td int) (int, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return 0, err
	}
	return t.FirstC, nil
}

func (s *Store) GetTiffDataFirstT(i, td int) (int, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return 0, err
	}
	return t.FirstT, nil
}

// GetUUIDFileName / GetUUIDValue return td's cross-file reference, or
// fail if td carries no UUID child (single-file dataset).
func (s *Store) GetUUIDFileName(i, td int) (string, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return "", err
	}
	if t.UUID == nil {
		return "", fmt.Errorf("omexml: TiffData %d on series %d has no UUID", td, i)
	}
	return t.UUID.FileName, nil
}

func (s *Store) GetUUIDValue(i, td int) (string, error) {
	t, err := s.tiffData(i, td)
	if err != nil {
		return "", err
	}
	if t.UUID == nil {
		return "", fmt.Errorf("omexml: TiffData %d on series %d has no UUID", td, i)
	}
	return t.UUID.Value, nil
}

func (s *Store) tiffData(i, td int) (*TiffData, error) {
	sr, err := s.series_(i)
	if err != nil {
		return nil, err
	}
	if td < 0 || td >= len(sr.tiffData) {
		return nil, fmt.Errorf("omexml: TiffData index %d out of range on series %d", td, i)
	}
	return &sr.tiffData[td], nil
}

// SetTiffData replaces series i's entire TiffData list, used when the
// writer regenerates it at close time (spec.md §4.6 step 3).
func (s *Store) SetTiffData(i int, entries []TiffData) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.tiffData = entries
	return nil
}

// GetBinaryOnlyMetadataFile returns the companion-file name if series i's
// file carries a BinaryOnly marker instead of its own metadata.
func (s *Store) GetBinaryOnlyMetadataFile(i int) (string, error) {
	sr, err := s.series_(i)
	if err != nil {
		return "", err
	}
	if sr.binaryOnlyFile == "" {
		return "", fmt.Errorf("omexml: series %d has no BinaryOnlyMetadataFile", i)
	}
	return sr.binaryOnlyFile, nil
}

func (s *Store) SetBinaryOnlyMetadataFile(i int, name string) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.binaryOnlyFile = name
	return nil
}

// SetResolutions installs series i's sub-resolution pyramid tier list,
// full resolution first.
func (s *Store) SetResolutions(i int, tiers [][2]int64) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.resolutions = tiers
	return nil
}

// GetResolutions returns series i's sub-resolution pyramid tiers, or nil
// if the series has none beyond full resolution.
func (s *Store) GetResolutions(i int) ([][2]int64, error) {
	sr, err := s.series_(i)
	if err != nil {
		return nil, err
	}
	return sr.resolutions, nil
}

// SetModulo installs a Modulo{Z,T,C} sub-dimension split on series i.
func (s *Store) SetModulo(i int, m ModuloAnnotation) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.modulo[m.Axis] = m
	return nil
}

// GetModulo returns the Modulo split for the given axis on series i, if any.
func (s *Store) GetModulo(i int, axis string) (ModuloAnnotation, bool, error) {
	sr, err := s.series_(i)
	if err != nil {
		return ModuloAnnotation{}, false, err
	}
	m, ok := sr.modulo[axis]
	return m, ok, nil
}

// SetImageName sets series i's display name.
func (s *Store) SetImageName(i int, name string) error {
	sr, err := s.series_(i)
	if err != nil {
		return err
	}
	sr.name = name
	return nil
}
