package tiffio

import "fmt"

// Field is a typed accessor over one IFD's raw tag map, classified by
// "shape" the way a TIFF reader must: a scalar string, a string array, a
// scalar pair/tuple packed into a fixed-width short or long, an array of
// 16/32/64-bit integers, or a three-array (ColorMap/TransferFunction).
// Width probing (does this tag's value fit in SHORT, or does it need
// LONG/LONG8?) happens per get/set call, the way jrm-1535-exif's
// getUnsignedShorts/getUnsignedLongs widen on demand rather than fixing
// one width per tag up front.
type Field struct {
	ifd *IFD
}

// NewField returns a typed field accessor over d's raw tag map.
func NewField(d *IFD) *Field { return &Field{ifd: d} }

// String returns the scalar ASCII value of tag, trimming the trailing
// NUL every TIFF ASCII field carries.
func (f *Field) String(tag uint16) (string, bool) {
	t, ok := f.ifd.entries[tag]
	if !ok || t.Type != DTASCII {
		return "", false
	}
	b := t.Bytes
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b), true
}

// SetString installs tag as a NUL-terminated ASCII field.
func (f *Field) SetString(tag uint16, v string) {
	b := append([]byte(v), 0)
	f.ifd.SetRaw(tag, RawTag{Type: DTASCII, Count: uint64(len(b)), Bytes: b})
}

// Uint returns the first integer value of tag, regardless of whether it
// is stored as BYTE, SHORT, LONG, or LONG8 on disk.
func (f *Field) Uint(tag uint16) (uint64, bool) {
	t, ok := f.ifd.entries[tag]
	if !ok || len(t.Ints) == 0 {
		return 0, false
	}
	return t.Ints[0], true
}

// SetUint installs a scalar integer field, choosing the narrowest type
// that can represent v: SHORT when it fits in 16 bits, LONG otherwise
// (LONG8 only ever appears for BigTIFF-specific fields this codec does
// not itself emit as scalars).
func (f *Field) SetUint(tag uint16, v uint64) {
	dt := DTLong
	if v <= 0xFFFF {
		dt = DTShort
	}
	f.ifd.SetRaw(tag, RawTag{Type: dt, Count: 1, Ints: []uint64{v}})
}

// UintArray returns every integer value of tag, in the width it was
// stored (the caller does not need to know whether it was SHORT, LONG,
// or LONG8 — all widths decode to uint64 in RawTag.Ints).
func (f *Field) UintArray(tag uint16) ([]uint64, bool) {
	t, ok := f.ifd.entries[tag]
	if !ok {
		return nil, false
	}
	return t.Ints, true
}

// SetUintArray installs an array field, widening to LONG (or LONG8 on a
// BigTIFF container, to match the container's own offset width) whenever
// any value overflows 16 bits.
func (f *Field) SetUintArray(tag uint16, v []uint64) {
	dt := DTShort
	for _, x := range v {
		if x > 0xFFFF {
			if f.ifd.file.bigTIFF {
				dt = DTLong8
			} else {
				dt = DTLong
			}
			break
		}
	}
	f.ifd.SetRaw(tag, RawTag{Type: dt, Count: uint64(len(v)), Ints: v})
}

// ColorMap returns the three equal-length arrays (red, green, blue) the
// COLORMAP tag packs as one concatenated SHORT array of 3*2^BitsPerSample
// entries, collapsing the flat on-disk layout to the natural three-array
// shape callers want.
func (f *Field) ColorMap() (red, green, blue []uint64, ok bool) {
	t, present := f.ifd.entries[TagColorMap]
	if !present || len(t.Ints)%3 != 0 {
		return nil, nil, nil, false
	}
	n := len(t.Ints) / 3
	return t.Ints[0:n], t.Ints[n : 2*n], t.Ints[2*n : 3*n], true
}

// SetColorMap flattens three equal-length channel arrays into COLORMAP's
// on-disk concatenated layout.
func (f *Field) SetColorMap(red, green, blue []uint64) error {
	if len(red) != len(green) || len(green) != len(blue) {
		return fmt.Errorf("tiffio: ColorMap channel length mismatch: %d/%d/%d", len(red), len(green), len(blue))
	}
	flat := make([]uint64, 0, len(red)*3)
	flat = append(flat, red...)
	flat = append(flat, green...)
	flat = append(flat, blue...)
	f.ifd.SetRaw(TagColorMap, RawTag{Type: DTShort, Count: uint64(len(flat)), Ints: flat})
	return nil
}

// TransferFunction mirrors ColorMap's three-array shape for tag 301,
// except the TIFF spec allows either one shared curve (n==1) or three
// independent per-channel curves (n==3); this accessor always returns
// three slices, duplicating the shared curve when only one was stored.
func (f *Field) TransferFunction() (red, green, blue []uint64, ok bool) {
	t, present := f.ifd.entries[TagTransferFunction]
	if !present {
		return nil, nil, nil, false
	}
	if len(t.Ints)%3 == 0 {
		n := len(t.Ints) / 3
		return t.Ints[0:n], t.Ints[n : 2*n], t.Ints[2*n : 3*n], true
	}
	return t.Ints, t.Ints, t.Ints, true
}

// Blob returns the raw bytes of an UNDEFINED-typed field, e.g. ICC
// profiles or application-specific binary tags.
func (f *Field) Blob(tag uint16) ([]byte, bool) {
	t, ok := f.ifd.entries[tag]
	if !ok || t.Type != DTUndefined {
		return nil, false
	}
	return t.Bytes, true
}

// SetBlob installs a raw UNDEFINED-typed field.
func (f *Field) SetBlob(tag uint16, data []byte) {
	f.ifd.SetRaw(tag, RawTag{Type: DTUndefined, Count: uint64(len(data)), Bytes: data})
}

// Enum returns the first value of tag cast to int, for tags whose
// meaning is a small closed set (Compression, PhotometricInterpretation,
// PlanarConfiguration, ResolutionUnit, SampleFormat, Predictor).
func (f *Field) Enum(tag uint16) (int, bool) {
	v, ok := f.Uint(tag)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// SetEnum installs a scalar SHORT enum field.
func (f *Field) SetEnum(tag uint16, v int) {
	f.ifd.SetRaw(tag, RawTag{Type: DTShort, Count: 1, Ints: []uint64{uint64(v)}})
}
