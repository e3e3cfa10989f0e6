package pixel

import "unsafe"

// elemsToBytes reinterprets a typed element slice as a byte slice without
// copying, the same zero-copy trick the teacher's layout code relies on
// when handing hyperslab data to an io.Writer.
func elemsToBytes[T Elem](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*elemSize)
}

// BytesToElems reinterprets a byte slice as a typed element slice without
// copying, the inverse of elemsToBytes. len(b) must be an exact multiple
// of T's size; callers reading a TIFF strip/tile into a PixelBuffer[T]
// rely on the codec layer having already produced exactly that many
// bytes.
func BytesToElems[T Elem](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/elemSize)
}
