package tiffio

// DataType is one of the twelve classic TIFF field types plus the three
// BigTIFF additions (LONG8, SLONG8, IFD8 — introduced by the BigTIFF supplement,
// never present in a classic file).
type DataType uint16

const (
	DTByte      DataType = 1
	DTASCII     DataType = 2
	DTShort     DataType = 3
	DTLong      DataType = 4
	DTRational  DataType = 5
	DTSByte     DataType = 6
	DTUndefined DataType = 7
	DTSShort    DataType = 8
	DTSLong     DataType = 9
	DTSRational DataType = 10
	DTFloat     DataType = 11
	DTDouble    DataType = 12
	DTLong8     DataType = 16 // BigTIFF unsigned 64-bit.
	DTSLong8    DataType = 17 // BigTIFF signed 64-bit.
	DTIFD8      DataType = 18 // BigTIFF IFD offset, 64-bit.
)

// typeSizes gives the size in bytes of one instance of each data type.
var typeSizes = map[DataType]int{
	DTByte:      1,
	DTASCII:     1,
	DTShort:     2,
	DTLong:      4,
	DTRational:  8,
	DTSByte:     1,
	DTUndefined: 1,
	DTSShort:    2,
	DTSLong:     4,
	DTSRational: 8,
	DTFloat:     4,
	DTDouble:    8,
	DTLong8:     8,
	DTSLong8:    8,
	DTIFD8:      8,
}

// Size returns the byte size of one value of type dt, or 0 if dt is not
// a recognized data type.
func (dt DataType) Size() int {
	return typeSizes[dt]
}

// Baseline and OME-TIFF tag numbers used by this codec. Not an exhaustive
// TIFF tag registry: only the tags the reader/writer actually touch.
const (
	TagImageWidth                = 256
	TagImageLength               = 257
	TagBitsPerSample             = 258
	TagCompression               = 259
	TagPhotometricInterpretation = 262
	TagImageDescription          = 270
	TagStripOffsets               = 273
	TagSamplesPerPixel            = 277
	TagRowsPerStrip               = 278
	TagStripByteCounts            = 279
	TagXResolution                = 282
	TagYResolution                = 283
	TagPlanarConfiguration        = 284
	TagResolutionUnit             = 296
	TagSoftware                   = 305
	TagPredictor                  = 317
	TagColorMap                   = 320
	TagTileWidth                  = 322
	TagTileLength                 = 323
	TagTileOffsets                = 324
	TagTileByteCounts             = 325
	TagSubIFDs                    = 330
	TagExtraSamples               = 338
	TagSampleFormat               = 339
	TagTransferFunction           = 301
	TagSubfileType                = 254
)

// SubfileType (tag 254) bit flags, the FILETYPE_* values most TIFF readers
// recognize: a reduced-resolution pyramid IFD sets SubfileReducedImage,
// and OME-TIFF additionally marks every plane's IFD as one page of a
// multi-page document with SubfilePage.
const (
	SubfileReducedImage = 1
	SubfilePage         = 2
)

// Compression values this module's registry understands (internal/tiffio/compress).
const (
	CompressionNone     = 1
	CompressionLZW      = 5
	CompressionDeflate  = 8
	CompressionPackBits = 32773
)

// Photometric interpretation values used by OME-TIFF's grayscale planes.
const (
	PhotometricMinIsWhite = 0
	PhotometricMinIsBlack = 1
	PhotometricRGB        = 2
	PhotometricPalette    = 3
)

// RawTag is the untyped, on-disk view of one IFD entry: a data type plus
// its decoded values as uint64 (integers), or raw bytes for ASCII/
// Undefined. internal/tiffio/field.go layers typed accessors on top.
type RawTag struct {
	Type  DataType
	Count uint64
	Ints  []uint64 // populated for integer-family types
	Bytes []byte   // populated for ASCII/Undefined
}
