package ometiff

import (
	"path/filepath"

	ibinary "github.com/nd2lab/ometiff/internal/binary"
	"github.com/nd2lab/ometiff/internal/omexml"
	"github.com/nd2lab/ometiff/internal/pixel"
	"github.com/nd2lab/ometiff/internal/tiffio"
)

// bigTIFFThreshold is the estimated total pixel-data footprint beyond
// which the writer switches to BigTIFF automatically when WithBigTIFF
// was not used to force a choice, matching common OME-TIFF writer
// practice of reserving BigTIFF for files that would otherwise overflow
// classic TIFF's 4 GiB offset space.
const bigTIFFThreshold = int64(4) << 30

// planeLoc records where one written plane's full-resolution IFD landed:
// which output file, and its index within that file's IFD chain. This is
// exactly what regenerateTiffData needs to emit a TiffData/UUID pair per
// plane at Close.
type planeLoc struct {
	file     *tiffHandle
	ifdIndex int
}

// seriesPlan is the writer's per-series plan, filled by SetSeries before
// any WritePlane call against that series.
type seriesPlan struct {
	core    *CoreMetadata
	planes  []planeLoc
	written []bool
}

// Writer creates a new single- or multi-file OME-TIFF dataset. Mirrors
// the teacher's dataset-write path: SetSeries plays the role of
// selecting a dataset's shape before the first chunk write, and
// WritePlane plays the role of writing one hyperslab. Multiple output
// files are supported the way spec.md §4.6's setId step 4 describes: a
// path-keyed map of TiffState, with ChangeOutputFile moving the cursor
// between them.
type Writer struct {
	handlerBase
	files   map[string]*tiffHandle
	current *tiffHandle
	bigTIFF bool
	store   *omexml.Store
	plans   []*seriesPlan
}

// NewWriter constructs a Writer in the Fresh state; call SetID before
// SetSeries or WritePlane.
func NewWriter(opts ...Option) *Writer {
	return &Writer{handlerBase: newHandlerBase(opts)}
}

// SetID creates path as a fresh TIFF/BigTIFF container and prepares an
// empty OME-XML metadata store for it. BigTIFF is chosen here, once:
// per WithBigTIFF, or, with no override, when estimatedFootprint is at
// least bigTIFFThreshold. The chosen BigTIFF flag is reused by every
// later ChangeOutputFile call.
func (w *Writer) SetID(path string, estimatedFootprint int64) error {
	if err := w.requireState(stateFresh, "SetID"); err != nil {
		return err
	}
	abs, err := canonicalize(path)
	if err != nil {
		return wrapErr(IO, err, "canonicalizing %s", path)
	}

	bigTIFF := estimatedFootprint >= bigTIFFThreshold
	if w.settings.bigTIFF != nil {
		bigTIFF = *w.settings.bigTIFF
	}

	tf, err := tiffio.Create(abs, bigTIFF, ibinary.LittleEndian)
	if err != nil {
		return wrapErr(IO, err, "creating %s", abs)
	}

	h := &tiffHandle{path: abs, file: tf, uuid: newRandomUUID()}
	w.files = map[string]*tiffHandle{abs: h}
	w.current = h
	w.bigTIFF = bigTIFF
	w.store = omexml.NewStore()
	w.currentID = abs
	w.metadata = w.store
	w.state = stateOpen
	return nil
}

// ChangeOutputFile switches every subsequent WritePlane to target path
// instead of the writer's current output file. Reopening an
// already-named path just switches the cursor back to it (spec.md
// §4.6's "if p is already in the TIFF map, switch cursor to it");
// naming a new path creates it with the dataset's already-decided
// BigTIFF flag and a freshly generated UUID.
func (w *Writer) ChangeOutputFile(path string) error {
	if err := w.requireOpen("ChangeOutputFile"); err != nil {
		return err
	}
	abs, err := canonicalize(path)
	if err != nil {
		return wrapErr(IO, err, "canonicalizing %s", path)
	}
	if h, ok := w.files[abs]; ok {
		w.current = h
		return nil
	}

	tf, err := tiffio.Create(abs, w.bigTIFF, ibinary.LittleEndian)
	if err != nil {
		return wrapErr(IO, err, "creating %s", abs)
	}
	h := &tiffHandle{path: abs, file: tf, uuid: newRandomUUID()}
	w.files[abs] = h
	w.current = h
	return nil
}

// SetSeries declares a new series with the given CoreMetadata, allocating
// room for its planes but not yet writing any IFD. The OME-XML Pixels
// element is filled immediately so readers that inspect metadata before
// every plane is written still see correct dimensions.
func (w *Writer) SetSeries(core *CoreMetadata) (int, error) {
	if err := w.requireOpen("SetSeries"); err != nil {
		return 0, err
	}
	if err := core.Validate(); err != nil {
		return 0, err
	}

	i := w.store.AddImage()
	if err := w.store.SetPixelsSizeX(i, core.SizeX); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsSizeY(i, core.SizeY); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsSizeZ(i, core.SizeZ); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsSizeT(i, core.SizeT); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsType(i, core.PixelType); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsSignificantBits(i, core.BitsPerPixel); err != nil {
		return 0, err
	}
	if err := w.store.SetPixelsDimensionOrder(i, omexml.DimensionOrder(core.DimensionOrder)); err != nil {
		return 0, err
	}
	for _, spp := range core.SizeC {
		if err := w.store.AddChannel(i, "", spp); err != nil {
			return 0, err
		}
	}
	if len(core.Resolutions) > 0 {
		tiers := make([][2]int64, 0, len(core.Resolutions)+1)
		tiers = append(tiers, [2]int64{int64(core.SizeX), int64(core.SizeY)})
		for _, r := range core.Resolutions {
			tiers = append(tiers, [2]int64{int64(r.SizeX), int64(r.SizeY)})
		}
		if err := w.store.SetResolutions(i, tiers); err != nil {
			return 0, err
		}
	}

	plan := &seriesPlan{core: core, planes: make([]planeLoc, core.ImageCount()), written: make([]bool, core.ImageCount())}
	w.plans = append(w.plans, plan)

	if err := w.advanceSeries(i, i+1); err != nil {
		return 0, err
	}
	return i, nil
}

// WritePlane encodes buf as the full-resolution 2-D plane at (z, c, t) in
// the current series, allocating a fresh IFD for it (one tile when
// WithTileSize names a tile exactly the plane's size, otherwise one
// full-height strip) and writing its
// pixel data as a single block the way internal/tiffio.IFD.WriteRegion
// expects. Series with more than one resolution tier should use
// WritePlaneWithResolutions instead, so the pyramid's SubIFDs tag can be
// filled in at write time.
func (w *Writer) WritePlane(z, c, t int, buf *pixel.VariantPixelBuffer) error {
	if err := w.requireOpen("WritePlane"); err != nil {
		return err
	}
	series := w.cur.series
	if series < 0 || series >= len(w.plans) {
		return newErr(OutOfRange, "series %d out of range", series)
	}
	plan := w.plans[series]
	core := plan.core

	if buf.Type() != core.PixelType {
		return newErr(WrongPixelType, "plane pixel type %s does not match series pixel type %s", buf.Type(), core.PixelType)
	}

	idx, err := getIndex(core, z, c, t)
	if err != nil {
		return err
	}
	if plan.written[idx] {
		return newErr(InvalidState, "plane (z=%d,c=%d,t=%d) already written for series %d", z, c, t, series)
	}

	d, err := w.setupIFD(core.SizeX, core.SizeY, core, buf, tiffio.SubfilePage, nil)
	if err != nil {
		return wrapErr(IO, err, "writing plane (z=%d,c=%d,t=%d) of series %d", z, c, t, series)
	}

	plan.planes[idx] = planeLoc{file: w.current, ifdIndex: w.current.file.IFDCount() - 1}
	plan.written[idx] = true
	_ = d
	return nil
}

// WritePlaneWithResolutions encodes one logical plane at every resolution
// tier of the current series in a single call, linking the reduced tiers
// to the full-resolution IFD's SubIFDs field the way spec.md §4.6's
// setupIFD pyramid step requires. tiers must have exactly
// core.ResolutionCount() buffers: full resolution first, then one per
// entry of core.Resolutions in order. The reduced tiers are written
// before the full-resolution one so their file offsets are already known
// when the full-resolution IFD's SubIFDs field is filled in.
func (w *Writer) WritePlaneWithResolutions(z, c, t int, tiers []*pixel.VariantPixelBuffer) error {
	if err := w.requireOpen("WritePlaneWithResolutions"); err != nil {
		return err
	}
	series := w.cur.series
	if series < 0 || series >= len(w.plans) {
		return newErr(OutOfRange, "series %d out of range", series)
	}
	plan := w.plans[series]
	core := plan.core
	if len(tiers) != core.ResolutionCount() {
		return newErr(FieldShapeMismatch, "series %d: expected %d resolution tiers, got %d", series, core.ResolutionCount(), len(tiers))
	}
	for r, buf := range tiers {
		if buf.Type() != core.PixelType {
			return newErr(WrongPixelType, "resolution %d pixel type %s does not match series pixel type %s", r, buf.Type(), core.PixelType)
		}
	}

	idx, err := getIndex(core, z, c, t)
	if err != nil {
		return err
	}
	if plan.written[idx] {
		return newErr(InvalidState, "plane (z=%d,c=%d,t=%d) already written for series %d", z, c, t, series)
	}

	subOffsets := make([]uint64, len(tiers)-1)
	for r := len(tiers) - 1; r >= 1; r-- {
		tier := core.Resolutions[r-1]
		d, err := w.setupIFD(tier.SizeX, tier.SizeY, core, tiers[r], tiffio.SubfilePage|tiffio.SubfileReducedImage, nil)
		if err != nil {
			return wrapErr(IO, err, "writing resolution tier %d of plane (z=%d,c=%d,t=%d)", r, z, c, t)
		}
		subOffsets[r-1] = uint64(d.Offset())
	}

	d, err := w.setupIFD(core.SizeX, core.SizeY, core, tiers[0], tiffio.SubfilePage, subOffsets)
	if err != nil {
		return wrapErr(IO, err, "writing full resolution of plane (z=%d,c=%d,t=%d) of series %d", z, c, t, series)
	}
	_ = d

	plan.planes[idx] = planeLoc{file: w.current, ifdIndex: w.current.file.IFDCount() - 1}
	plan.written[idx] = true
	return nil
}

// setupIFD appends a fresh IFD to the writer's current output file,
// configures its shape/compression tags per spec.md §4.6's setupIFD,
// writes buf's data as a single block, and flushes it. subfileType is
// the on-disk SubfileType flags for this IFD; subIFDOffsets, when
// non-empty, is recorded under TagSubIFDs (only ever set on a
// resolution-0 IFD that has pyramid tiers beneath it).
func (w *Writer) setupIFD(width, height int, core *CoreMetadata, buf *pixel.VariantPixelBuffer, subfileType int, subIFDOffsets []uint64) (*tiffio.IFD, error) {
	tf := w.current.file
	d := tf.AppendIFD()
	field := tiffio.NewField(d)
	field.SetUint(tiffio.TagImageWidth, uint64(width))
	field.SetUint(tiffio.TagImageLength, uint64(height))
	samples := samplesForROI(core)
	field.SetUint(tiffio.TagSamplesPerPixel, uint64(samples))
	field.SetUint(tiffio.TagBitsPerSample, uint64(core.PixelType.BitSize()))
	field.SetEnum(tiffio.TagSampleFormat, sampleFormatFor(core.PixelType))
	photometric := tiffio.PhotometricMinIsBlack
	if samples >= 3 {
		photometric = tiffio.PhotometricRGB
	}
	field.SetEnum(tiffio.TagPhotometricInterpretation, photometric)
	if w.settings.interleaved || samples == 1 {
		field.SetEnum(tiffio.TagPlanarConfiguration, 1)
	} else {
		field.SetEnum(tiffio.TagPlanarConfiguration, 2)
	}

	compValue := uint16(tiffio.CompressionNone)
	switch w.settings.compression {
	case "lzw":
		compValue = tiffio.CompressionLZW
	case "packbits":
		compValue = tiffio.CompressionPackBits
	case "deflate":
		compValue = tiffio.CompressionDeflate
	}
	field.SetEnum(tiffio.TagCompression, int(compValue))
	field.SetEnum(tiffio.TagSubfileType, subfileType)
	if len(subIFDOffsets) > 0 {
		field.SetUintArray(tiffio.TagSubIFDs, subIFDOffsets)
	}

	// The file's very first IFD, whichever tier it happens to be, carries
	// the ImageDescription placeholder Close patches with the finalized
	// OME-XML; PatchImageDescription always targets IFD 0.
	if tf.IFDCount() == 1 {
		field.SetString(tiffio.TagImageDescription, "OME-TIFF")
	}

	// WriteRegion writes one whole block per call; this writer only ever
	// issues a single call per tier, so a tile policy is only honored
	// when the requested tile is exactly the tier's size: the block is
	// written unpadded, so any other tile size would not match the
	// tile-width row stride a reader decodes with. Any other tile size
	// falls back to a single full-height strip.
	useTile := w.settings.tileSizeX == width && w.settings.tileSizeY == height && w.settings.tileSizeX > 0
	if useTile {
		field.SetUint(tiffio.TagTileWidth, uint64(w.settings.tileSizeX))
		field.SetUint(tiffio.TagTileLength, uint64(w.settings.tileSizeY))
	} else {
		field.SetUint(tiffio.TagRowsPerStrip, uint64(height))
	}

	if err := d.WriteRegion(0, 0, buf.Data()); err != nil {
		return nil, err
	}
	if err := tf.Flush(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close regenerates every series' TiffData list from the (file, IFD)
// locations WritePlane recorded, marshals each output file's own
// OME-XML (sharing the same TiffData/Resolutions content but tagged with
// that file's own document-level UUID), and patches it into that file's
// IFD 0 ImageDescription field the way PatchImageDescription is built to
// support: one fixed-position rewrite plus an appended blob, never a
// whole-file rewrite.
func (w *Writer) Close() error {
	if w.state == stateClosed {
		return nil
	}
	if w.state != stateOpen {
		w.state = stateClosed
		return nil
	}

	for i, plan := range w.plans {
		entries, err := regenerateTiffData(plan)
		if err != nil {
			return err
		}
		if err := w.store.SetTiffData(i, entries); err != nil {
			return err
		}
	}

	for _, h := range w.files {
		xmlBytes, err := omexml.Marshal(w.store, h.uuid)
		if err != nil {
			return wrapErr(FormatInvalid, err, "marshaling OME-XML for %s", h.path)
		}
		if h.file.IFDCount() > 0 {
			if err := h.file.PatchImageDescription(0, xmlBytes); err != nil {
				return wrapErr(IO, err, "patching ImageDescription in %s", h.path)
			}
		}
		if err := h.file.Close(); err != nil {
			return wrapErr(IO, err, "closing %s", h.path)
		}
	}
	w.state = stateClosed
	return nil
}

// regenerateTiffData rebuilds one series' TiffData list, one entry per
// written plane, PlaneCount always 1, each carrying a UUID referencing
// the plane's own output file by bare filename and urn:uuid value, per
// spec.md §4.6 step 3 — even a dataset with a single output file gets a
// UUID on every entry. A series with no planes gets a single
// PlaneCount=0 entry instead.
func regenerateTiffData(plan *seriesPlan) ([]omexml.TiffData, error) {
	if len(plan.planes) == 0 {
		return []omexml.TiffData{{PlaneCount: 0}}, nil
	}
	entries := make([]omexml.TiffData, 0, len(plan.planes))
	for idx, loc := range plan.planes {
		if !plan.written[idx] {
			return nil, newErr(IncompletePlanes, "plane index %d was never written", idx)
		}
		z, c, t, err := getZCTCoords(plan.core, idx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, omexml.TiffData{
			FirstZ: z, FirstC: c, FirstT: t,
			IFD:        loc.ifdIndex,
			PlaneCount: 1,
			UUID: &omexml.UUID{
				FileName: filepath.Base(loc.file.path),
				Value:    "urn:uuid:" + loc.file.uuid,
			},
		})
	}
	return entries, nil
}
