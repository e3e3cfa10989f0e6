// Package ometiff implements the OME-TIFF codec core: a Reader and
// Writer pair that bind internal/tiffio's TIFF container support,
// internal/omexml's OME-XML metadata model, and internal/pixel's typed
// pixel buffers into a single multi-dimensional, possibly multi-file
// image format.
//
// A Reader opens an existing dataset with SetID, which parses the
// dataset's OME-XML (embedded in the primary file's ImageDescription
// tag, or loaded from a companion document for BinaryOnly files) and
// opens every other physical file its TiffData entries reference. A
// Writer creates a fresh dataset with SetID, declares one or more series
// with SetSeries, and writes planes with WritePlane; Close regenerates
// the dataset's OME-XML from the planes actually written and patches it
// into the file in place.
package ometiff
