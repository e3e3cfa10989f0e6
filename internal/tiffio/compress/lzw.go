package compress

import (
	"bytes"
	"io"

	"golang.org/x/image/tiff/lzw"
)

type lzwCodec struct{}

func (lzwCodec) TIFFValue() uint16 { return ValueLZW }

// Decode wraps golang.org/x/image/tiff/lzw configured MSB-first with an
// 8-bit literal width, exactly as classic TIFF's LZW variant requires.
func (lzwCodec) Decode(data []byte, n int) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
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

// Encode wraps the same package's writer the other direction.
func (lzwCodec) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
