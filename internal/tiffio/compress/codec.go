// Package compress implements the TIFF compression schemes the OME-TIFF
// writer emits and the reader must decode: None, LZW, PackBits, and
// Deflate. It is deliberately not a general TIFF decompression library —
// JPEG, CCITT, and the legacy "old-style" Deflate/LZW variants are out of
// scope.
package compress

import "fmt"

// Codec compresses and decompresses one strip or tile's worth of pixel
// bytes. Decode is told the expected decompressed length n so it can
// size its output buffer up front, matching the TIFF convention that
// StripByteCounts/TileByteCounts records the on-disk (compressed) size
// while ImageLength/TileLength/BitsPerSample determine the decompressed
// size.
type Codec interface {
	Decode(data []byte, n int) ([]byte, error)
	Encode(data []byte) ([]byte, error)
	TIFFValue() uint16
}

const (
	ValueNone     = 1
	ValueLZW      = 5
	ValueDeflate  = 8
	ValuePackBits = 32773
)

var registry = map[uint16]Codec{
	ValueNone:     noneCodec{},
	ValueLZW:      lzwCodec{},
	ValueDeflate:  deflateCodec{},
	ValuePackBits: packBitsCodec{},
}

// ForValue returns the registered codec for a TIFF Compression tag value.
func ForValue(v uint16) (Codec, error) {
	c, ok := registry[v]
	if !ok {
		return nil, fmt.Errorf("compress: unsupported compression %d", v)
	}
	return c, nil
}
