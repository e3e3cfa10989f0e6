package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPackBitsDecodeReplicateRun checks a single replicate run; the
// literal run and the -128 no-op byte have their own tests below.
func TestPackBitsDecodeReplicateRun(t *testing.T) {
	c := packBitsCodec{}
	data := []byte{
		0xFE, 0xAA, // replicate 0xAA
	}
	// -2 as int8 means "repeat next byte 1-(-2)=3 times".
	decoded, err := c.Decode(data, 3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xAA, 0xAA}, decoded)
}

func TestPackBitsDecodeLiteralRun(t *testing.T) {
	c := packBitsCodec{}
	// length byte 2 means "3 literal bytes follow" (code>=0 => code+1 bytes).
	data := []byte{0x02, 0x11, 0x22, 0x33}
	decoded, err := c.Decode(data, 3)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x22, 0x33}, decoded)
}

func TestPackBitsDecodeNoOp(t *testing.T) {
	c := packBitsCodec{}
	data := []byte{0x80, 0x00, 0x05} // -128 no-op, then a 1-byte literal run
	decoded, err := c.Decode(data, 1)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x05}, decoded)
}

func TestPackBitsEncodeUsesReplicateForLongRuns(t *testing.T) {
	c := packBitsCodec{}
	encoded, err := c.Encode([]byte{9, 9, 9, 9, 9})
	assert.NoError(t, err)
	lengthByte := int8(1 - 5)
	assert.Equal(t, []byte{byte(lengthByte), 9}, encoded)
}
