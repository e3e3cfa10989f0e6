package compress

import "fmt"

type noneCodec struct{}

func (noneCodec) Decode(data []byte, n int) ([]byte, error) {
	if len(data) < n {
		return nil, fmt.Errorf("compress: uncompressed strip too short: have %d want %d", len(data), n)
	}
	return data[:n], nil
}

func (noneCodec) Encode(data []byte) ([]byte, error) {
	return data, nil
}

func (noneCodec) TIFFValue() uint16 { return ValueNone }
