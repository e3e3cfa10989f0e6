package ometiff

// Option configures a Reader or Writer at construction time.
type Option func(*settings)

type settings struct {
	compression       string
	interleaved       bool
	tileSizeX         int
	tileSizeY         int
	writeSequentially bool
	bigTIFF           *bool
	framesPerSecond   float64
	tileCacheSize     int
	logger            Logger
}

func defaultSettings() *settings {
	return &settings{
		interleaved:   true,
		tileCacheSize: 32,
		logger:        defaultLogger,
	}
}

// WithCompression selects one of the codecs the writer supports for the
// configured pixel type ("none", "lzw", "packbits", "deflate"). Default
// is no compression.
func WithCompression(name string) Option {
	return func(s *settings) { s.compression = name }
}

// WithInterleaved toggles contiguous (true) vs planar (false) sample
// layout for multi-sample pixels.
func WithInterleaved(v bool) Option {
	return func(s *settings) { s.interleaved = v }
}

// WithTileSize records a requested tile size. The writer emits a single
// tile only when x and y equal the size of the tier being written; for
// any other values, y alone included, it writes each tier as one
// full-height strip. Multi-tile and multi-strip layouts are not written.
func WithTileSize(x, y int) Option {
	return func(s *settings) {
		s.tileSizeX = x
		s.tileSizeY = y
	}
}

// WithWriteSequentially records that planes will be written in increasing
// index order. The writer stores the flag; it does not change how planes
// are written.
func WithWriteSequentially(v bool) Option {
	return func(s *settings) { s.writeSequentially = v }
}

// WithBigTIFF forces classic (false) or BigTIFF (true) output; nil (the
// default) lets the writer decide from the estimated pixel footprint.
func WithBigTIFF(v *bool) Option {
	return func(s *settings) { s.bigTIFF = v }
}

// WithFramesPerSecond records a frame rate for movie-capable downstream
// formats. It has no effect on TIFF/OME-XML structure.
func WithFramesPerSecond(fps float64) Option {
	return func(s *settings) { s.framesPerSecond = fps }
}

// WithTileCacheSize bounds the decoded-block LRU cache (§4.9) to n
// entries; 0 disables caching entirely without changing any observable
// result, only repeated I/O/CPU cost. Default is smaller than the
// teacher's example cache (200) since OME-TIFF tiles are typically much
// larger than the thumbnail tiles that example sized itself for.
func WithTileCacheSize(n int) Option {
	return func(s *settings) { s.tileCacheSize = n }
}

// WithLogger installs a Logger to receive warnings from the reader's
// fixup paths. The default discards all messages.
func WithLogger(l Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
