package compress

import (
	"bytes"
	"compress/zlib"
	"io"
)

// deflateCodec wraps the standard library's zlib implementation, the same
// way mdouchement-tiff's decoder does for Compression values 8 and 32946.
// No third-party zlib/deflate implementation appears anywhere in the
// reference pack, and the format itself (zlib-wrapped DEFLATE) is exactly
// what compress/zlib implements — there is nothing for a third-party
// library to add here.
type deflateCodec struct{}

func (deflateCodec) TIFFValue() uint16 { return ValueDeflate }

func (deflateCodec) Decode(data []byte, n int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]byte, 0, n)
	buf := make([]byte, 32*1024)
	for {
		m, err := r.Read(buf)
		out = append(out, buf[:m]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (deflateCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
