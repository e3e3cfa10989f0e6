package tiffio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ibinary "github.com/nd2lab/ometiff/internal/binary"
)

func createMinimalFile(t *testing.T, bigTIFF bool) (*File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.tif")
	tf, err := Create(path, bigTIFF, ibinary.LittleEndian)
	require.NoError(t, err)

	d := tf.AppendIFD()
	field := NewField(d)
	field.SetUint(TagImageWidth, 4)
	field.SetUint(TagImageLength, 2)
	field.SetUint(TagBitsPerSample, 8)
	field.SetUint(TagSamplesPerPixel, 1)
	field.SetUint(TagCompression, CompressionNone)
	field.SetUint(TagPhotometricInterpretation, PhotometricMinIsBlack)
	field.SetString(TagImageDescription, "placeholder")

	require.NoError(t, d.WriteRegion(0, 0, make([]byte, 4*2)))
	require.NoError(t, tf.Flush())
	require.NoError(t, tf.Close())
	return tf, path
}

func TestCreateFlushOpenRoundTripClassic(t *testing.T) {
	_, path := createMinimalFile(t, false)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	assert.Equal(t, 1, tf.IFDCount())
	assert.False(t, tf.BigTIFF())

	d, err := tf.IFD(0)
	require.NoError(t, err)
	field := NewField(d)
	w, ok := field.Uint(TagImageWidth)
	require.True(t, ok)
	assert.Equal(t, uint64(4), w)

	desc, ok := field.String(TagImageDescription)
	require.True(t, ok)
	assert.Equal(t, "placeholder", desc)
}

func TestCreateFlushOpenRoundTripBigTIFF(t *testing.T) {
	_, path := createMinimalFile(t, true)

	tf, err := Open(path)
	require.NoError(t, err)
	defer tf.Close()

	assert.True(t, tf.BigTIFF())
	assert.Equal(t, ibinary.LittleEndian, tf.ByteOrder())
}

func TestMultipleIFDsChainInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.tif")
	tf, err := Create(path, false, ibinary.LittleEndian)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d := tf.AppendIFD()
		field := NewField(d)
		field.SetUint(TagImageWidth, uint64(i+1))
		field.SetUint(TagImageLength, 1)
		field.SetUint(TagBitsPerSample, 8)
		field.SetUint(TagSamplesPerPixel, 1)
		field.SetUint(TagCompression, CompressionNone)
		field.SetUint(TagPhotometricInterpretation, PhotometricMinIsBlack)
		require.NoError(t, d.WriteRegion(0, 0, make([]byte, i+1)))
		require.NoError(t, tf.Flush())
	}
	require.NoError(t, tf.Close())

	tf2, err := Open(path)
	require.NoError(t, err)
	defer tf2.Close()
	require.Equal(t, 3, tf2.IFDCount())

	for i := 0; i < 3; i++ {
		d, err := tf2.IFD(i)
		require.NoError(t, err)
		w, ok := NewField(d).Uint(TagImageWidth)
		require.True(t, ok)
		assert.Equal(t, uint64(i+1), w)
	}
}

func TestPatchImageDescriptionRewritesXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patched.tif")

	// PatchImageDescription needs a writable handle, which the read-only
	// mmap'd Open does not provide, so this exercises Create directly.
	tf2, err := Create(path, false, ibinary.LittleEndian)
	require.NoError(t, err)
	d := tf2.AppendIFD()
	field := NewField(d)
	field.SetUint(TagImageWidth, 4)
	field.SetUint(TagImageLength, 2)
	field.SetUint(TagBitsPerSample, 8)
	field.SetUint(TagSamplesPerPixel, 1)
	field.SetUint(TagCompression, CompressionNone)
	field.SetUint(TagPhotometricInterpretation, PhotometricMinIsBlack)
	field.SetString(TagImageDescription, "old")
	require.NoError(t, d.WriteRegion(0, 0, make([]byte, 4*2)))
	require.NoError(t, tf2.Flush())

	require.NoError(t, tf2.PatchImageDescription(0, []byte("<OME/>")))
	require.NoError(t, tf2.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	rd, err := reopened.IFD(0)
	require.NoError(t, err)
	desc, ok := NewField(rd).String(TagImageDescription)
	require.True(t, ok)
	assert.Equal(t, "<OME/>", desc)
}
