// Package omexml supplies the concrete OME-XML document model the
// ometiff reader and writer consume and produce: a struct graph tagged
// for encoding/xml, plus the resolution and Modulo annotation extensions
// OME-TIFF needs and the general OME-XML layer does not define.
package omexml

import "encoding/xml"

// Document is the root <OME> element of one OME-XML document, whether
// embedded in a TIFF's ImageDescription or standalone as a companion file.
type Document struct {
	XMLName               xml.Name               `xml:"OME"`
	Xmlns                 string                 `xml:"xmlns,attr"`
	UUID                  string                 `xml:"UUID,attr,omitempty"` // document-level UUID, set to the owning file's UUID at write time
	Images                []Image                `xml:"Image"`
	StructuredAnnotations *StructuredAnnotations `xml:"StructuredAnnotations,omitempty"`
}

// Image is one OME <Image> element: one logical series.
type Image struct {
	ID     string `xml:"ID,attr"`
	Name   string `xml:"Name,attr,omitempty"`
	Pixels Pixels `xml:"Pixels"`
}

// Pixels describes one series' dimensions, pixel type, and plane index.
type Pixels struct {
	ID                string        `xml:"ID,attr"`
	SizeX             int           `xml:"SizeX,attr"`
	SizeY             int           `xml:"SizeY,attr"`
	SizeZ             int           `xml:"SizeZ,attr"`
	SizeC             int           `xml:"SizeC,attr"`
	SizeT             int           `xml:"SizeT,attr"`
	Type              string        `xml:"Type,attr"`
	SignificantBits   int           `xml:"SignificantBits,attr,omitempty"`
	DimensionOrder    string        `xml:"DimensionOrder,attr"`
	Interleaved       *bool         `xml:"Interleaved,attr,omitempty"`
	BigEndian         *bool         `xml:"BigEndian,attr,omitempty"`
	Channels          []Channel     `xml:"Channel"`
	TiffDataList      []TiffData    `xml:"TiffData"`
	BinaryOnly        *BinaryOnly   `xml:"BinaryOnly,omitempty"`
}

// Channel describes one channel's sample count and optional display name.
type Channel struct {
	ID              string `xml:"ID,attr"`
	Name            string `xml:"Name,attr,omitempty"`
	SamplesPerPixel int    `xml:"SamplesPerPixel,attr,omitempty"`
}

// TiffData maps a contiguous run of planes starting at (FirstZ, FirstC,
// FirstT) to an IFD index, optionally in another file identified by UUID.
type TiffData struct {
	FirstZ     int   `xml:"FirstZ,attr,omitempty"`
	FirstC     int   `xml:"FirstC,attr,omitempty"`
	FirstT     int   `xml:"FirstT,attr,omitempty"`
	IFD        int   `xml:"IFD,attr,omitempty"`
	PlaneCount int   `xml:"PlaneCount,attr"`
	UUID       *UUID `xml:"UUID,omitempty"`
}

// UUID cross-references the file a TiffData entry's pixel data actually
// lives in, for multi-file OME-TIFF datasets.
type UUID struct {
	FileName string `xml:"FileName,attr"`
	Value    string `xml:",chardata"`
}

// BinaryOnly marks a file as carrying no OME-XML of its own, deferring to
// a companion document identified by MetadataFile.
type BinaryOnly struct {
	MetadataFile string `xml:"MetadataFile,attr"`
	UUID         string `xml:"UUID,attr"`
}

// StructuredAnnotations carries the OME-TIFF-specific extensions this
// module itself produces and consumes: the per-series resolution list and
// the per-dimension Modulo sub-axis splits. Both are stored as generic
// XMLAnnotation nodes whose ID names the kind and series; Unmarshal
// recognizes only those two ID forms and ignores other annotations.
type StructuredAnnotations struct {
	XMLAnnotations []XMLAnnotation `xml:"XMLAnnotation"`
}

// XMLAnnotation is the generic envelope OME-XML uses for both Resolution
// and Modulo extensions; Value holds the raw inner XML fragment.
type XMLAnnotation struct {
	ID    string `xml:"ID,attr"`
	Value string `xml:",innerxml"`
}

// ResolutionAnnotation records one series' sub-resolution pyramid tiers
// as a list of (X, Y) pixel extents, full resolution first.
type ResolutionAnnotation struct {
	SeriesID    string
	Resolutions [][2]int64 // [i] = (sizeX, sizeY) of tier i
}

// ModuloAnnotation splits one of Z/T/C into a primary count and a modulo
// remainder count, per OME's Modulo extension.
type ModuloAnnotation struct {
	SeriesID string
	Axis     string // "Z", "T", or "C"
	Start    float64
	End      float64
	Step     float64
	Type     string // e.g. "lifetime", "other"
}
