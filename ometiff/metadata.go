package ometiff

import (
	"github.com/nd2lab/ometiff/internal/omexml"
	"github.com/nd2lab/ometiff/internal/tiffio"
)

// fromOMEDimensionOrder adapts internal/omexml's DimensionOrder enum to
// ometiff's own, which is declared independently so the public surface
// doesn't leak an internal package's type. The two enumerations are kept
// in the same XYZCT..XYTZC order on purpose, so the conversion is a
// straight cast.
func fromOMEDimensionOrder(o omexml.DimensionOrder) DimensionOrder {
	return DimensionOrder(o)
}

// findUsedFiles walks series i's TiffData list and returns, in order of
// first appearance, the absolute paths of every file its planes live in
// (ownerPath itself included whenever any TiffData entry omits a UUID,
// since that means "this file"). Grounded on the teacher's
// findByAbsolutePathFull, which performs the same kind of reference
// collection over external links before opening any of them.
func findUsedFiles(meta MetadataRetrieve, ownerPath string, series int) ([]string, error) {
	n, err := meta.GetTiffDataCount(series)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	for td := 0; td < n; td++ {
		fileName, err := meta.GetUUIDFileName(series, td)
		if err != nil {
			// No UUID child: this plane's data lives in ownerPath itself.
			add(ownerPath)
			continue
		}
		target, err := resolveRelative(ownerPath, fileName)
		if err != nil {
			return nil, wrapErr(IO, err, "resolving TiffData file reference %q", fileName)
		}
		add(target)
	}
	if len(files) == 0 {
		add(ownerPath)
	}
	return files, nil
}

// seriesIndexStart tracks, independently per axis, the minimum FirstZ/
// FirstC/FirstT seen across a series' TiffData entries so indices can be
// rebased to start at zero even when the original file's TiffData block
// was hand-edited to start mid-range. Resolves the Open Question in
// SPEC_FULL.md §9 in favor of three independent per-axis minimums rather
// than a single combined offset, since nothing requires the three axes'
// starting points to be correlated.
type seriesIndexStart struct {
	z, c, t int
}

func computeSeriesIndexStart(meta MetadataRetrieve, series int) (seriesIndexStart, error) {
	n, err := meta.GetTiffDataCount(series)
	if err != nil {
		return seriesIndexStart{}, err
	}
	if n == 0 {
		return seriesIndexStart{}, nil
	}
	start := seriesIndexStart{z: int(^uint(0) >> 1), c: int(^uint(0) >> 1), t: int(^uint(0) >> 1)}
	for td := 0; td < n; td++ {
		z, err := meta.GetTiffDataFirstZ(series, td)
		if err != nil {
			return seriesIndexStart{}, err
		}
		c, err := meta.GetTiffDataFirstC(series, td)
		if err != nil {
			return seriesIndexStart{}, err
		}
		t, err := meta.GetTiffDataFirstT(series, td)
		if err != nil {
			return seriesIndexStart{}, err
		}
		if z < start.z {
			start.z = z
		}
		if c < start.c {
			start.c = c
		}
		if t < start.t {
			start.t = t
		}
	}
	return start, nil
}

// findTiffData returns the index of the TiffData entry on series whose
// [FirstZ,FirstC,FirstT, FirstZ+PlaneCount) range covers z,c,t under
// DimensionOrder order, or -1 if none does. PlaneCount spans consecutive
// planes along the fastest-varying axis named by order only; a
// PlaneCount > 1 entry never spans more than one of the other two axes.
func findTiffData(meta MetadataRetrieve, series int, order DimensionOrder, z, c, t int) (int, error) {
	n, err := meta.GetTiffDataCount(series)
	if err != nil {
		return -1, err
	}
	letters := order.axisLetters()
	fastest := letters[0]
	for td := 0; td < n; td++ {
		fz, err := meta.GetTiffDataFirstZ(series, td)
		if err != nil {
			return -1, err
		}
		fc, err := meta.GetTiffDataFirstC(series, td)
		if err != nil {
			return -1, err
		}
		ft, err := meta.GetTiffDataFirstT(series, td)
		if err != nil {
			return -1, err
		}
		planeCount, err := meta.GetTiffDataPlaneCount(series, td)
		if err != nil {
			return -1, err
		}
		if planeCount <= 0 {
			planeCount = 1
		}

		coord := map[byte]int{'Z': z, 'C': c, 'T': t}
		first := map[byte]int{'Z': fz, 'C': fc, 'T': ft}
		match := true
		for _, axis := range letters {
			if axis == fastest {
				continue
			}
			if coord[axis] != first[axis] {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		delta := coord[fastest] - first[fastest]
		if delta >= 0 && delta < planeCount {
			return td, nil
		}
	}
	return -1, nil
}

// fixImageCounts checks, for every series, that the TiffData coverage
// over Z*effectiveSizeC*T planes is exactly complete: no gaps and no
// overlaps. An incomplete series is reported as IncompletePlanes rather
// than silently read with holes, per spec.md §7; a plane covered twice
// is reported as FormatInvalid.
func fixImageCounts(meta MetadataRetrieve, core []*CoreMetadata) error {
	for i, c := range core {
		total := c.ImageCount()
		covered := make([]bool, total)
		n, err := meta.GetTiffDataCount(i)
		if err != nil {
			return err
		}
		for td := 0; td < n; td++ {
			fz, _ := meta.GetTiffDataFirstZ(i, td)
			fc, _ := meta.GetTiffDataFirstC(i, td)
			ft, _ := meta.GetTiffDataFirstT(i, td)
			planeCount, err := meta.GetTiffDataPlaneCount(i, td)
			if err != nil {
				return err
			}
			if planeCount <= 0 {
				planeCount = 1
			}
			letters := c.DimensionOrder.axisLetters()
			fastest := letters[0]
			extent := map[byte]int{'Z': c.SizeZ, 'C': c.EffectiveSizeC(), 'T': c.SizeT}
			first := map[byte]int{'Z': fz, 'C': fc, 'T': ft}
			for d := 0; d < planeCount; d++ {
				cur := map[byte]int{'Z': fz, 'C': fc, 'T': ft}
				cur[fastest] = first[fastest] + d
				if cur[fastest] >= extent[fastest] {
					break
				}
				idx, err := getIndex(c, cur['Z'], cur['C'], cur['T'])
				if err != nil {
					return err
				}
				if covered[idx] {
					return newErr(FormatInvalid, "series %d: plane index %d is covered by more than one TiffData entry", i, idx)
				}
				covered[idx] = true
			}
		}
		for idx, ok := range covered {
			if !ok {
				return newErr(IncompletePlanes, "series %d: plane index %d has no TiffData coverage", i, idx)
			}
		}
	}
	return nil
}

// fixDimensions cross-checks each series' declared SizeX/SizeY against
// the first IFD its TiffData block points to, correcting CoreMetadata in
// place when the OME-XML and the TIFF tags disagree (the TIFF tags win,
// since they describe the bytes actually on disk).
func fixDimensions(core *CoreMetadata, ifdWidth, ifdHeight int) {
	if ifdWidth > 0 {
		core.SizeX = ifdWidth
	}
	if ifdHeight > 0 {
		core.SizeY = ifdHeight
	}
}

// fixOMEROMetadata implements spec.md §4.5 step 9: when the dataset's
// UUID/file table carries the OMERO "__omero_export" marker and the
// series' first channel has a non-empty name, the dimension order is
// forced to XYZCT regardless of what the XML declared, matching a
// long-standing OMERO export quirk the teacher's equivalent sanitization
// pass (hdf5/file.go's attribute-driven corrections) works around the
// same way: trust a known producer's fingerprint over its own metadata.
func fixOMEROMetadata(marker bool, core *CoreMetadata, firstChannelName string) {
	if marker && firstChannelName != "" {
		core.DimensionOrder = XYZCT
	}
}

// subResolutionTier is one entry of a pyramid beyond the full-resolution
// image.
type subResolutionTier struct {
	SizeX, SizeY int64
	IFDIndex     int
}

// addSubResolutions validates and appends a series' sub-resolution
// pyramid tiers onto full.Resolutions. It checks that each tier is no
// wider than the tier before it and no larger than the full tier in X
// or Y; equal sizes pass. A Resolution holds only X/Y, so every tier
// takes Z/T/C, pixel type, indexed and interleaved from the full tier;
// those are not compared against the reduced IFDs. Grounded on the
// teacher's chunk-shape consistency checks in hdf5/dataset_write.go,
// generalized from "must match the dataset's shape" to "must match the
// full-resolution tier's non-spatial shape".
func addSubResolutions(full *CoreMetadata, tiers []subResolutionTier) error {
	prevX := full.SizeX
	for _, t := range tiers {
		if t.SizeX > int64(prevX) {
			return newErr(FormatInvalid, "sub-resolution tiers must be ordered by descending width, got %d after %d", t.SizeX, prevX)
		}
		if int64(full.SizeX) < t.SizeX || int64(full.SizeY) < t.SizeY {
			return newErr(FormatInvalid, "sub-resolution tier %dx%d exceeds full resolution %dx%d", t.SizeX, t.SizeY, full.SizeX, full.SizeY)
		}
		full.Resolutions = append(full.Resolutions, Resolution{SizeX: int(t.SizeX), SizeY: int(t.SizeY)})
		prevX = int(t.SizeX)
	}
	return nil
}

// discoverSubResolutions implements spec.md §4.5 step 10: read the
// SubIFD offsets recorded on a series' first plane's IFD, open each one
// just far enough to learn its ImageWidth/ImageLength, and fold the
// result into core.Resolutions via addSubResolutions. A series with no
// SubIFDs tag is left with a single (full-resolution) tier, not an error.
func discoverSubResolutions(firstPlaneIFD *tiffio.IFD, file *tiffio.File, core *CoreMetadata) error {
	offsets, err := firstPlaneIFD.SubIFDOffsets()
	if err != nil {
		return wrapErr(FormatInvalid, err, "reading SubIFD offsets")
	}
	if len(offsets) == 0 {
		return nil
	}

	tiers := make([]subResolutionTier, 0, len(offsets))
	for idx, off := range offsets {
		d, err := file.IFDAt(int64(off))
		if err != nil {
			return wrapErr(IO, err, "opening SubIFD %d at offset %d", idx, off)
		}
		field := tiffio.NewField(d)
		width, ok := field.Uint(tiffio.TagImageWidth)
		if !ok {
			return newErr(FormatInvalid, "SubIFD %d has no ImageWidth", idx)
		}
		height, ok := field.Uint(tiffio.TagImageLength)
		if !ok {
			return newErr(FormatInvalid, "SubIFD %d has no ImageLength", idx)
		}
		tiers = append(tiers, subResolutionTier{SizeX: int64(width), SizeY: int64(height), IFDIndex: idx})
	}
	return addSubResolutions(core, tiers)
}
