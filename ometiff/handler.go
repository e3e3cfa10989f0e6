package ometiff

import (
	"github.com/nd2lab/ometiff/internal/omexml"
	"github.com/nd2lab/ometiff/internal/pixel"
)

// handlerState is the Fresh -> Open -> Closed lifecycle every Reader and
// Writer moves through, mirroring the teacher's closed/writable File
// flags generalized into an explicit three-state machine since OME-TIFF
// additionally tracks a cursor that is only meaningful in the Open state.
type handlerState int

const (
	stateFresh handlerState = iota
	stateOpen
	stateClosed
)

// cursor is the current (series, resolution, plane) position a reader or
// writer is positioned at. The scalar settings spec.md §3's
// "FormatHandler state" groups with it live in handlerBase.settings.
type cursor struct {
	series     int
	resolution int
	plane      int
}

// handlerBase is embedded by Reader and Writer to share lifecycle and
// cursor bookkeeping, the way the teacher's File struct centralizes
// closed/writable state for every operation that touches it.
type handlerBase struct {
	state     handlerState
	currentID string
	cur       cursor
	metadata  MetadataRetrieve
	settings  *settings
}

func newHandlerBase(opts []Option) handlerBase {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	return handlerBase{state: stateFresh, settings: s}
}

// requireState fails with InvalidState unless h is currently in want.
func (h *handlerBase) requireState(want handlerState, op string) error {
	if h.state != want {
		return newErr(InvalidState, "%s requires state %v, have %v", op, want, h.state)
	}
	return nil
}

// requireOpen fails with InvalidState unless h has been opened and not
// yet closed.
func (h *handlerBase) requireOpen(op string) error {
	if h.state != stateOpen {
		return newErr(InvalidState, "%s requires an open handle, have state %v", op, h.state)
	}
	return nil
}

// advanceSeries applies the setSeries transition spec.md §4.4 requires of
// Reader and Writer alike: s must be within [0, seriesCount) and either
// the current series or its immediate successor, and moving to it resets
// resolution and plane back to zero.
func (h *handlerBase) advanceSeries(s, seriesCount int) error {
	if s < 0 || s >= seriesCount {
		return newErr(OutOfRange, "series %d out of range (have %d)", s, seriesCount)
	}
	if s != h.cur.series && s != h.cur.series+1 {
		return newErr(InvalidState, "series must advance to %d or %d, got %d", h.cur.series, h.cur.series+1, s)
	}
	h.cur.series = s
	h.cur.resolution = 0
	h.cur.plane = 0
	return nil
}

// advanceResolution applies the setResolution transition: r must be
// within [0, resolutionCount), and moving to it resets plane to zero.
func (h *handlerBase) advanceResolution(r, resolutionCount int) error {
	if r < 0 || r >= resolutionCount {
		return newErr(OutOfRange, "resolution %d out of range (have %d)", r, resolutionCount)
	}
	h.cur.resolution = r
	h.cur.plane = 0
	return nil
}

func (s handlerState) String() string {
	switch s {
	case stateFresh:
		return "Fresh"
	case stateOpen:
		return "Open"
	case stateClosed:
		return "Closed"
	default:
		return "?"
	}
}

// MetadataRetrieve is the read-only narrow interface spec.md §6 assumes
// is delivered by the out-of-scope OME-XML layer; internal/omexml.Store
// satisfies it directly.
type MetadataRetrieve interface {
	GetImageCount() int
	GetPixelsSizeX(i int) (int, error)
	GetPixelsSizeY(i int) (int, error)
	GetPixelsSizeZ(i int) (int, error)
	GetPixelsSizeT(i int) (int, error)
	GetPixelsSizeC(i int) (int, error)
	GetPixelsType(i int) (pixel.Type, error)
	GetPixelsSignificantBits(i int) (int, error)
	GetPixelsDimensionOrder(i int) (omexml.DimensionOrder, error)
	GetChannelCount(i int) (int, error)
	GetChannelSamplesPerPixel(i, c int) (int, error)
	GetTiffDataCount(i int) (int, error)
	GetTiffDataIFD(i, td int) (int, error)
	GetTiffDataPlaneCount(i, td int) (int, error)
	GetTiffDataFirstZ(i, td int) (int, error)
	GetTiffDataFirstC(i, td int) (int, error)
	GetTiffDataFirstT(i, td int) (int, error)
	GetUUIDFileName(i, td int) (string, error)
	GetUUIDValue(i, td int) (string, error)
	GetBinaryOnlyMetadataFile(i int) (string, error)
	GetResolutions(i int) ([][2]int64, error)
}
