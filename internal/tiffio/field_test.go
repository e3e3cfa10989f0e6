package tiffio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ibinary "github.com/nd2lab/ometiff/internal/binary"
)

func newTestIFD(t *testing.T, bigTIFF bool) *IFD {
	t.Helper()
	path := filepath.Join(t.TempDir(), "field.tif")
	tf, err := Create(path, bigTIFF, ibinary.LittleEndian)
	require.NoError(t, err)
	return tf.AppendIFD()
}

func TestFieldStringRoundTrip(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)
	f.SetString(TagSoftware, "ometiff")

	got, ok := f.String(TagSoftware)
	require.True(t, ok)
	assert.Equal(t, "ometiff", got)
}

func TestFieldUintWidensPastShort(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)

	f.SetUint(TagImageWidth, 100)
	rt, ok := d.Get(TagImageWidth)
	require.True(t, ok)
	assert.Equal(t, DTShort, rt.Type)

	f.SetUint(TagImageWidth, 1<<20)
	rt, ok = d.Get(TagImageWidth)
	require.True(t, ok)
	assert.Equal(t, DTLong, rt.Type)
	v, ok := f.Uint(TagImageWidth)
	require.True(t, ok)
	assert.Equal(t, uint64(1<<20), v)
}

func TestFieldSetUintArrayWidensOnBigTIFF(t *testing.T) {
	d := newTestIFD(t, true)
	f := NewField(d)
	f.SetUintArray(TagStripOffsets, []uint64{1, 1 << 40})

	rt, ok := d.Get(TagStripOffsets)
	require.True(t, ok)
	assert.Equal(t, DTLong8, rt.Type)
}

func TestFieldSetUintArrayStaysShortWhenSmall(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)
	f.SetUintArray(TagStripOffsets, []uint64{1, 2, 3})

	rt, ok := d.Get(TagStripOffsets)
	require.True(t, ok)
	assert.Equal(t, DTShort, rt.Type)
}

func TestFieldColorMapRoundTrip(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)
	red := []uint64{0, 10, 20}
	green := []uint64{1, 11, 21}
	blue := []uint64{2, 12, 22}
	require.NoError(t, f.SetColorMap(red, green, blue))

	r, g, b, ok := f.ColorMap()
	require.True(t, ok)
	assert.Equal(t, red, r)
	assert.Equal(t, green, g)
	assert.Equal(t, blue, b)
}

func TestFieldColorMapMismatchedLengthErrors(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)
	err := f.SetColorMap([]uint64{1}, []uint64{1, 2}, []uint64{1})
	assert.Error(t, err)
}

func TestFieldTransferFunctionDuplicatesSharedCurve(t *testing.T) {
	d := newTestIFD(t, false)
	d.SetRaw(TagTransferFunction, RawTag{Type: DTShort, Count: 2, Ints: []uint64{5, 6}})
	f := NewField(d)

	r, g, b, ok := f.TransferFunction()
	require.True(t, ok)
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestFieldBlobRoundTrip(t *testing.T) {
	const tagICCProfile = 34675
	d := newTestIFD(t, false)
	f := NewField(d)
	f.SetBlob(tagICCProfile, []byte{1, 2, 3})

	got, ok := f.Blob(tagICCProfile)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestFieldEnumRoundTrip(t *testing.T) {
	d := newTestIFD(t, false)
	f := NewField(d)
	f.SetEnum(TagPhotometricInterpretation, PhotometricRGB)

	v, ok := f.Enum(TagPhotometricInterpretation)
	require.True(t, ok)
	assert.Equal(t, PhotometricRGB, v)
}
