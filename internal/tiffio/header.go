package tiffio

import (
	stdbinary "encoding/binary"
	"fmt"

	ibinary "github.com/nd2lab/ometiff/internal/binary"
)

// header is the first 8 (classic) or 16 (BigTIFF) bytes of a TIFF file.
type header struct {
	order      ibinary.Endian
	bigTIFF    bool
	offsetSize int // 4 classic, 8 BigTIFF
	first      uint64
}

const (
	leMagic = 0x4949 // "II"
	beMagic = 0x4D4D // "MM"

	versionClassic = 42
	versionBig     = 43
)

// FormatError reports a malformed or unsupported TIFF header.
type FormatError string

func (e FormatError) Error() string { return "tiffio: invalid format: " + string(e) }

func detectHeader(buf []byte) (header, error) {
	if len(buf) < 8 {
		return header{}, FormatError("short header")
	}
	var order ibinary.Endian
	switch uint16(buf[0])<<8 | uint16(buf[1]) {
	case leMagic:
		if buf[0] != 'I' || buf[1] != 'I' {
			return header{}, FormatError("bad byte-order mark")
		}
		order = ibinary.LittleEndian
	case beMagic:
		order = ibinary.BigEndian
	default:
		return header{}, FormatError("bad byte-order mark")
	}
	bo := order.ByteOrder()
	version := bo.Uint16(buf[2:4])
	switch version {
	case versionClassic:
		if len(buf) < 8 {
			return header{}, FormatError("short classic header")
		}
		return header{
			order:      order,
			bigTIFF:    false,
			offsetSize: 4,
			first:      uint64(bo.Uint32(buf[4:8])),
		}, nil
	case versionBig:
		if len(buf) < 16 {
			return header{}, FormatError("short BigTIFF header")
		}
		offsetByteSize := bo.Uint16(buf[4:6])
		constant := bo.Uint16(buf[6:8])
		if offsetByteSize != 8 || constant != 0 {
			return header{}, FormatError("malformed BigTIFF header")
		}
		return header{
			order:      order,
			bigTIFF:    true,
			offsetSize: 8,
			first:      bo.Uint64(buf[8:16]),
		}, nil
	default:
		return header{}, FormatError(fmt.Sprintf("unrecognized version %d", version))
	}
}

// encodeHeader writes the classic or BigTIFF header preamble and returns
// the byte offset of the "first IFD offset" field, so the caller can
// patch it once the first IFD's position is known.
func encodeHeader(order ibinary.Endian, bigTIFF bool) (buf []byte, firstIFDFieldOffset int64) {
	bo := order.ByteOrder()
	boMark := []byte("II")
	if bo == stdbinary.BigEndian {
		boMark = []byte("MM")
	}
	if !bigTIFF {
		buf = make([]byte, 8)
		copy(buf[0:2], boMark)
		bo.PutUint16(buf[2:4], versionClassic)
		return buf, 4
	}
	buf = make([]byte, 16)
	copy(buf[0:2], boMark)
	bo.PutUint16(buf[2:4], versionBig)
	bo.PutUint16(buf[4:6], 8)
	bo.PutUint16(buf[6:8], 0)
	return buf, 8
}
