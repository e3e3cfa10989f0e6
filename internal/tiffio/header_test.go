package tiffio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ibinary "github.com/nd2lab/ometiff/internal/binary"
)

func TestEncodeDetectHeaderClassic(t *testing.T) {
	for _, order := range []ibinary.Endian{ibinary.LittleEndian, ibinary.BigEndian} {
		buf, firstIFDOff := encodeHeader(order, false)
		assert.Equal(t, int64(4), firstIFDOff)
		assert.Len(t, buf, 8)

		h, err := detectHeader(buf)
		require.NoError(t, err)
		assert.False(t, h.bigTIFF)
		assert.Equal(t, 4, h.offsetSize)
		assert.Equal(t, uint64(0), h.first)
	}
}

func TestEncodeDetectHeaderBigTIFF(t *testing.T) {
	buf, firstIFDOff := encodeHeader(ibinary.LittleEndian, true)
	assert.Equal(t, int64(8), firstIFDOff)
	assert.Len(t, buf, 16)

	h, err := detectHeader(buf)
	require.NoError(t, err)
	assert.True(t, h.bigTIFF)
	assert.Equal(t, 8, h.offsetSize)
}

func TestDetectHeaderRejectsShortBuffer(t *testing.T) {
	_, err := detectHeader([]byte{0x49, 0x49})
	assert.Error(t, err)
}

func TestDetectHeaderRejectsBadMark(t *testing.T) {
	_, err := detectHeader([]byte{0x58, 0x58, 0, 42, 0, 0, 0, 0})
	assert.Error(t, err)
}

func TestDetectHeaderRejectsUnknownVersion(t *testing.T) {
	buf, _ := encodeHeader(ibinary.LittleEndian, false)
	buf[2], buf[3] = 0x01, 0x00 // version field, little-endian
	_, err := detectHeader(buf)
	assert.Error(t, err)
}
