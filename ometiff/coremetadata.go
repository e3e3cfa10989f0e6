package ometiff

import "github.com/nd2lab/ometiff/internal/pixel"

// Modulo records one Z/T/C axis's split into a primary count and a
// modulo remainder, per the OME Modulo extension.
type Modulo struct {
	Start, End, Step float64
	Type             string
}

// CoreMetadata is the derived, per-(series, resolution) description the
// reader fills from OME-XML plus cross-checked IFD values, and the
// writer fills from caller-set dimensions before the first plane write.
type CoreMetadata struct {
	SizeX, SizeY, SizeZ, SizeT int
	SizeC                      []int // per-channel sample counts; effectiveSizeC = len(SizeC)
	PixelType                  pixel.Type
	BitsPerPixel               int
	DimensionOrder             DimensionOrder

	LittleEndian     bool
	Interleaved      bool
	Indexed          bool
	FalseColor       bool
	OrderCertain     bool
	MetadataComplete bool
	Thumbnail        bool

	ModuloZ, ModuloT, ModuloC Modulo

	Resolutions []Resolution
}

// Resolution is one pyramid tier's spatial extent, for every tier after
// the full-resolution one held directly on CoreMetadata; Z, T, C, and
// pixel type are shared with the full tier (spec.md §3's invariant that
// only X/Y vary across a series' resolutions).
type Resolution struct {
	SizeX, SizeY int
}

// ResolutionCount is 1 (full resolution only) plus the number of
// discovered or configured pyramid tiers.
func (c *CoreMetadata) ResolutionCount() int { return 1 + len(c.Resolutions) }

// EffectiveSizeC is the number of distinct channels (as opposed to the
// total sample count across all channels).
func (c *CoreMetadata) EffectiveSizeC() int { return len(c.SizeC) }

// TotalSamplesC is the sum of per-channel sample counts.
func (c *CoreMetadata) TotalSamplesC() int {
	total := 0
	for _, n := range c.SizeC {
		total += n
	}
	return total
}

// ImageCount is the number of 2-D planes in this (series, resolution)
// tier: Z * T * effectiveSizeC.
func (c *CoreMetadata) ImageCount() int {
	return c.SizeZ * c.SizeT * c.EffectiveSizeC()
}

// BitsPerPixel's cap invariant (spec.md §3): bitsPerPixel must never
// exceed 8 * sizeof(pixelType). Callers that set BitsPerPixel directly
// should check this with Validate.
func (c *CoreMetadata) Validate() error {
	if c.BitsPerPixel > 8*c.PixelType.MemoryByteSize() {
		return newErr(MetadataMissing, "bitsPerPixel %d exceeds 8*sizeof(%s)", c.BitsPerPixel, c.PixelType)
	}
	return nil
}

// DimensionOrder mirrors internal/omexml.DimensionOrder without
// importing that package's Store type into the public surface.
type DimensionOrder = coreDimensionOrder

type coreDimensionOrder int

const (
	XYZCT coreDimensionOrder = iota
	XYZTC
	XYCTZ
	XYCZT
	XYTCZ
	XYTZC
)

var dimensionOrderNames = [...]string{"XYZCT", "XYZTC", "XYCTZ", "XYCZT", "XYTCZ", "XYTZC"}

func (o coreDimensionOrder) String() string {
	if int(o) < 0 || int(o) >= len(dimensionOrderNames) {
		return "?"
	}
	return dimensionOrderNames[o]
}

// axisLetters returns o's three non-XY axis letters in the order the
// DimensionOrder string names them after X and Y, which runs from
// fastest- to slowest-varying: letters[0] varies fastest within a plane
// index, letters[2] slowest.
func (o coreDimensionOrder) axisLetters() [3]byte {
	switch o {
	case XYZCT:
		return [3]byte{'Z', 'C', 'T'}
	case XYZTC:
		return [3]byte{'Z', 'T', 'C'}
	case XYCTZ:
		return [3]byte{'C', 'T', 'Z'}
	case XYCZT:
		return [3]byte{'C', 'Z', 'T'}
	case XYTCZ:
		return [3]byte{'T', 'C', 'Z'}
	default: // XYTZC
		return [3]byte{'T', 'Z', 'C'}
	}
}
