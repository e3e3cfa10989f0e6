// Package tiffio implements the narrow slice of classic TIFF and BigTIFF
// container I/O that an OME-TIFF reader/writer needs: header detection,
// IFD-tree enumeration, raw tag get/set, tile/strip region I/O, and an
// in-place patch of a previously written IFD entry. It is not a general
// TIFF library — compression formats outside none/LZW/PackBits/Deflate,
// JPEG-in-TIFF, and incremental IFD editing beyond appending are all out
// of scope.
package tiffio
