package ometiff

import (
	"os"

	"github.com/nd2lab/ometiff/internal/omexml"
	"github.com/nd2lab/ometiff/internal/pixel"
	"github.com/nd2lab/ometiff/internal/tiffio"
)

// Reader opens an existing OME-TIFF dataset (possibly spanning several
// physical files linked by UUID references) and serves plane reads
// against it. Mirrors the teacher's File type's read path: SetId plays
// the role of Open, cursor movement plays the role of group/dataset
// navigation, and ReadPlane plays the role of a hyperslab read.
type Reader struct {
	handlerBase
	files  *fileSet
	blocks *blockCache
	core   []*CoreMetadata
	ownerPath string
}

// NewReader constructs a Reader in the Fresh state; call SetID before
// any other method.
func NewReader(opts ...Option) *Reader {
	return &Reader{handlerBase: newHandlerBase(opts)}
}

// SetID opens path, parses its OME-XML metadata (embedded or, for a
// BinaryOnly file, loaded from the referenced companion document), opens
// every other physical file the dataset's TiffData blocks reference, and
// computes per-series CoreMetadata. It is the read-side counterpart of
// the teacher's File.Open, generalized to a dataset that may span more
// than one underlying file.
func (r *Reader) SetID(path string) error {
	if err := r.requireState(stateFresh, "SetID"); err != nil {
		return err
	}
	abs, err := canonicalize(path)
	if err != nil {
		return wrapErr(IO, err, "canonicalizing %s", path)
	}

	tf, err := tiffio.Open(abs)
	if err != nil {
		return wrapErr(IO, err, "opening %s", abs)
	}
	if tf.IFDCount() == 0 {
		tf.Close()
		return newErr(FormatInvalid, "%s has no image directories", abs)
	}

	store, err := loadMetadataStore(tf, abs)
	if err != nil {
		tf.Close()
		return err
	}

	r.files = newFileSet()
	r.files.put(abs, &tiffHandle{path: abs, file: tf, ifdCount: tf.IFDCount()})
	r.blocks = newBlockCache(r.settings.tileCacheSize)
	r.metadata = store
	r.ownerPath = abs
	r.currentID = abs

	core, err := buildCoreMetadata(store)
	if err != nil {
		r.files.closeAll(r.settings.logger)
		return err
	}
	if err := fixImageCounts(store, core); err != nil {
		r.settings.logger.Warnf("ometiff: %v", err)
	}
	r.core = core

	// Open every referenced file up front, the way the teacher resolves
	// external links eagerly rather than lazily per read.
	for i := range r.core {
		used, err := findUsedFiles(store, abs, i)
		if err != nil {
			r.files.closeAll(r.settings.logger)
			return err
		}
		for _, p := range used {
			if p == abs {
				continue
			}
			if _, err := r.files.resolveExternal(abs, p, map[string]bool{abs: true}); err != nil {
				r.files.closeAll(r.settings.logger)
				return err
			}
		}
	}

	// Derive each series' sub-resolution pyramid tiers from the SubIFDs
	// tag on its first plane's IFD, per spec.md §4.5 step 10. Absence of
	// any SubIFD is not an error: the series simply has one tier.
	for i, c := range r.core {
		td, err := findTiffData(store, i, c.DimensionOrder, 0, 0, 0)
		if err != nil {
			r.files.closeAll(r.settings.logger)
			return err
		}
		if td < 0 {
			continue
		}
		ifdIndex, err := store.GetTiffDataIFD(i, td)
		if err != nil {
			r.files.closeAll(r.settings.logger)
			return err
		}
		handle, err := r.handleForTiffData(i, td)
		if err != nil {
			r.files.closeAll(r.settings.logger)
			return err
		}
		firstIFD, err := handle.file.IFD(ifdIndex)
		if err != nil {
			r.files.closeAll(r.settings.logger)
			return wrapErr(IO, err, "opening first IFD of series %d in %s", i, handle.path)
		}
		if err := discoverSubResolutions(firstIFD, handle.file, c); err != nil {
			r.settings.logger.Warnf("ometiff: series %d: %v", i, err)
		}
	}

	r.state = stateOpen
	return nil
}

// loadMetadataStore reads tf's primary IFD's ImageDescription field and
// parses it as OME-XML, following a BinaryOnly marker out to its
// companion document when present.
func loadMetadataStore(tf *tiffio.File, ownerPath string) (*omexml.Store, error) {
	d, err := tf.IFD(0)
	if err != nil {
		return nil, wrapErr(IO, err, "reading first IFD of %s", ownerPath)
	}
	field := tiffio.NewField(d)
	xmlText, ok := field.String(tiffio.TagImageDescription)
	if !ok {
		return nil, newErr(MetadataMissing, "%s has no ImageDescription tag", ownerPath)
	}

	store, err := omexml.Unmarshal([]byte(xmlText))
	if err != nil {
		return nil, wrapErr(FormatInvalid, err, "parsing OME-XML in %s", ownerPath)
	}

	if store.GetImageCount() == 1 {
		if companionName, err := store.GetBinaryOnlyMetadataFile(0); err == nil {
			companionPath, err := resolveRelative(ownerPath, companionName)
			if err != nil {
				return nil, wrapErr(IO, err, "resolving BinaryOnly companion %q", companionName)
			}
			data, err := os.ReadFile(companionPath)
			if err != nil {
				return nil, wrapErr(IO, err, "reading companion metadata %s", companionPath)
			}
			return omexml.Unmarshal(data)
		}
	}
	return store, nil
}

// buildCoreMetadata derives one CoreMetadata per series from store's
// OME-XML fields, the read-side equivalent of the writer filling
// CoreMetadata directly from caller-set dimensions.
func buildCoreMetadata(store *omexml.Store) ([]*CoreMetadata, error) {
	n := store.GetImageCount()
	out := make([]*CoreMetadata, n)
	for i := 0; i < n; i++ {
		sizeX, err := store.GetPixelsSizeX(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d SizeX", i)
		}
		sizeY, err := store.GetPixelsSizeY(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d SizeY", i)
		}
		sizeZ, err := store.GetPixelsSizeZ(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d SizeZ", i)
		}
		sizeT, err := store.GetPixelsSizeT(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d SizeT", i)
		}
		pType, err := store.GetPixelsType(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d PixelType", i)
		}
		bits, _ := store.GetPixelsSignificantBits(i)
		order, err := store.GetPixelsDimensionOrder(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d DimensionOrder", i)
		}

		chanCount, err := store.GetChannelCount(i)
		if err != nil {
			return nil, wrapErr(MetadataMissing, err, "series %d channel count", i)
		}
		sizeC := make([]int, chanCount)
		for c := 0; c < chanCount; c++ {
			spp, err := store.GetChannelSamplesPerPixel(i, c)
			if err != nil {
				return nil, err
			}
			sizeC[c] = spp
		}
		if chanCount == 0 {
			sizeC = []int{1}
		}

		firstChannelName, _ := store.GetChannelName(i, 0)
		core := &CoreMetadata{
			SizeX: sizeX, SizeY: sizeY, SizeZ: sizeZ, SizeT: sizeT,
			SizeC: sizeC, PixelType: pType, BitsPerPixel: bits,
			DimensionOrder: fromOMEDimensionOrder(order),
			OrderCertain:   true,
		}
		fixOMEROMetadata(store.OmeroExportMarker, core, firstChannelName)
		out[i] = core
	}
	return out, nil
}

// ReadPlane decodes the 2-D plane at (z, c, t) in the cursor's current
// series and resolution as a full-frame region read, returning it as a
// pixel.VariantPixelBuffer resident in the series' pixel type.
func (r *Reader) ReadPlane(z, c, t int) (*pixel.VariantPixelBuffer, error) {
	if err := r.requireOpen("ReadPlane"); err != nil {
		return nil, err
	}
	return r.ReadPlaneROI(z, c, t, 0, 0, -1, -1)
}

// ReadPlaneROI decodes the rectangle [x, y, x+w, y+h) of the plane at
// (z, c, t). w, h of -1 mean "to the series' full width/height".
func (r *Reader) ReadPlaneROI(z, c, t, x, y, w, h int) (*pixel.VariantPixelBuffer, error) {
	if err := r.requireOpen("ReadPlaneROI"); err != nil {
		return nil, err
	}
	series := r.cur.series
	if series < 0 || series >= len(r.core) {
		return nil, newErr(OutOfRange, "series %d out of range", series)
	}
	core := r.core[series]
	resolution := r.cur.resolution
	sizeX, sizeY := core.SizeX, core.SizeY
	if resolution > 0 {
		if resolution-1 >= len(core.Resolutions) {
			return nil, newErr(OutOfRange, "resolution %d out of range for series %d", resolution, series)
		}
		tier := core.Resolutions[resolution-1]
		sizeX, sizeY = tier.SizeX, tier.SizeY
	}
	if w < 0 {
		w = sizeX
	}
	if h < 0 {
		h = sizeY
	}

	td, err := findTiffData(r.metadata, series, core.DimensionOrder, z, c, t)
	if err != nil {
		return nil, err
	}
	if td < 0 {
		return nil, newErr(IncompletePlanes, "series %d: no TiffData entry covers z=%d c=%d t=%d", series, z, c, t)
	}
	ifdIndex, err := r.metadata.GetTiffDataIFD(series, td)
	if err != nil {
		return nil, err
	}

	handle, err := r.handleForTiffData(series, td)
	if err != nil {
		return nil, err
	}

	d, err := handle.file.IFD(ifdIndex)
	if err != nil {
		return nil, wrapErr(IO, err, "opening IFD %d in %s", ifdIndex, handle.path)
	}

	// On a pyramid tier, the plane's own IFD carries no pixel data of its
	// own; follow the full-resolution IFD's SubIFD offsets list out to
	// the reduced-image directory instead, per spec.md §4.5's plane-read
	// rule.
	cacheIFD := ifdIndex
	if resolution > 0 {
		offs, err := d.SubIFDOffsets()
		if err != nil {
			return nil, wrapErr(FormatInvalid, err, "reading SubIFD offsets of IFD %d in %s", ifdIndex, handle.path)
		}
		tierIdx := resolution - 1
		if tierIdx >= len(offs) {
			return nil, newErr(OutOfRange, "series %d: plane z=%d c=%d t=%d has no SubIFD for resolution %d", series, z, c, t, resolution)
		}
		d, err = handle.file.IFDAt(int64(offs[tierIdx]))
		if err != nil {
			return nil, wrapErr(IO, err, "opening SubIFD tier %d in %s", resolution, handle.path)
		}
		cacheIFD = int(offs[tierIdx])
	}

	cacheKey := handle.path
	if cached, ok := r.blocks.get(cacheKey, cacheIFD, roiKey(x, y, w, h)); ok {
		return bytesToVariant(core.PixelType, w, h, samplesForROI(core), cached)
	}

	raw, err := d.ReadRegion(x, y, w, h)
	if err != nil {
		return nil, wrapErr(IO, err, "reading region (%d,%d,%d,%d) of IFD %d in %s", x, y, w, h, ifdIndex, handle.path)
	}
	r.blocks.put(cacheKey, cacheIFD, roiKey(x, y, w, h), raw)

	return bytesToVariant(core.PixelType, w, h, samplesForROI(core), raw)
}

// roiKey folds a region rectangle into a single int for use as the block
// cache's third key component; collisions across different (x,y,w,h)
// tuples only cost a cache miss, never correctness, since the cache is a
// pure performance layer.
func roiKey(x, y, w, h int) int {
	return ((x*131+y)*131+w)*131 + h
}

func samplesForROI(core *CoreMetadata) int {
	if core.EffectiveSizeC() == 0 {
		return 1
	}
	return core.SizeC[0]
}

// handleForTiffData returns the open tiffHandle for the file TiffData
// entry td (on series) points at, resolving its UUID reference if
// present or falling back to the reader's primary file.
func (r *Reader) handleForTiffData(series, td int) (*tiffHandle, error) {
	fileName, err := r.metadata.GetUUIDFileName(series, td)
	if err != nil {
		h, ok := r.files.get(r.ownerPath)
		if !ok {
			return nil, newErr(IO, "primary file handle missing")
		}
		return h, nil
	}
	target, err := resolveRelative(r.ownerPath, fileName)
	if err != nil {
		return nil, wrapErr(IO, err, "resolving UUID file reference %q", fileName)
	}
	h, ok := r.files.get(target)
	if !ok {
		return nil, newErr(InconsistentUUID, "referenced file %s was not opened during SetID", target)
	}
	return h, nil
}

// CoreMetadataAt returns the CoreMetadata computed for series i.
func (r *Reader) CoreMetadataAt(i int) (*CoreMetadata, error) {
	if i < 0 || i >= len(r.core) {
		return nil, newErr(OutOfRange, "series %d out of range (have %d)", i, len(r.core))
	}
	return r.core[i], nil
}

// SeriesCount returns the number of series in the opened dataset.
func (r *Reader) SeriesCount() int { return len(r.core) }

// SetSeries moves the cursor to series i, enforcing spec.md §4.4's
// monotonic-advance invariant (i must be the current series or its
// immediate successor) and resetting resolution/plane to 0.
func (r *Reader) SetSeries(i int) error {
	if err := r.requireOpen("SetSeries"); err != nil {
		return err
	}
	return r.advanceSeries(i, len(r.core))
}

// ResolutionCountAt returns the number of resolution tiers series i has
// (1 when no pyramid was discovered).
func (r *Reader) ResolutionCountAt(i int) (int, error) {
	core, err := r.CoreMetadataAt(i)
	if err != nil {
		return 0, err
	}
	return core.ResolutionCount(), nil
}

// SetResolution moves the cursor to resolution tier res of the current
// series, enforcing spec.md §4.4's `r < resolutionCount(series)`
// precondition and resetting plane to 0.
func (r *Reader) SetResolution(res int) error {
	if err := r.requireOpen("SetResolution"); err != nil {
		return err
	}
	core, err := r.CoreMetadataAt(r.cur.series)
	if err != nil {
		return err
	}
	return r.advanceResolution(res, core.ResolutionCount())
}

// Close releases every physical file the reader opened.
func (r *Reader) Close() error {
	if r.state == stateClosed {
		return nil
	}
	if r.files != nil {
		r.files.closeAll(r.settings.logger)
	}
	r.state = stateClosed
	return nil
}
