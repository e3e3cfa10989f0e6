package omexml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/nd2lab/ometiff/internal/pixel"
)

const xmlns = "http://www.openmicroscopy.org/Schemas/OME/2016-06"

var pixelTypeNames = map[pixel.Type]string{
	pixel.Int8: "int8", pixel.Int16: "int16", pixel.Int32: "int32",
	pixel.UInt8: "uint8", pixel.UInt16: "uint16", pixel.UInt32: "uint32",
	pixel.Bit: "bit", pixel.Float: "float", pixel.Double: "double",
	pixel.ComplexFloat: "complex", pixel.ComplexDouble: "double-complex",
}

func pixelTypeName(t pixel.Type) (string, error) {
	if n, ok := pixelTypeNames[t]; ok {
		return n, nil
	}
	return "", fmt.Errorf("omexml: unrecognized pixel type %v", t)
}

func parsePixelType(s string) (pixel.Type, error) {
	for t, n := range pixelTypeNames {
		if n == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("omexml: unrecognized PixelType %q", s)
}

// Marshal renders s's series into a Document and serializes it, setting
// the document-level UUID attribute to fileUUID (the owning file's own
// generated UUID, per spec.md §4.6 step 4).
func Marshal(s *Store, fileUUID string) ([]byte, error) {
	doc := Document{Xmlns: xmlns, UUID: "urn:uuid:" + fileUUID}
	var annotations []XMLAnnotation
	for i := range s.series {
		sr := &s.series[i]
		typeName, err := pixelTypeName(sr.pixelType)
		if err != nil {
			return nil, err
		}
		img := Image{
			ID:   fmt.Sprintf("Image:%d", i),
			Name: sr.name,
			Pixels: Pixels{
				ID:              fmt.Sprintf("Pixels:%d", i),
				SizeX:           sr.sizeX,
				SizeY:           sr.sizeY,
				SizeZ:           maxInt(sr.sizeZ, 1),
				SizeC:           sumSamples(sr.channels),
				SizeT:           maxInt(sr.sizeT, 1),
				Type:            typeName,
				SignificantBits: sr.significantBits,
				DimensionOrder:  sr.dimOrder.String(),
				TiffDataList:    sr.tiffData,
			},
		}
		for c, ch := range sr.channels {
			img.Pixels.Channels = append(img.Pixels.Channels, Channel{
				ID:              fmt.Sprintf("Channel:%d:%d", i, c),
				Name:            ch.name,
				SamplesPerPixel: ch.samplesPerPixel,
			})
		}
		if sr.binaryOnlyFile != "" {
			img.Pixels.BinaryOnly = &BinaryOnly{MetadataFile: sr.binaryOnlyFile}
		}
		if len(sr.resolutions) > 0 {
			annotations = append(annotations, XMLAnnotation{
				ID:    fmt.Sprintf("Annotation:Resolution:%d", i),
				Value: encodeResolutions(sr.resolutions),
			})
		}
		for _, axis := range []string{"Z", "T", "C"} {
			if m, ok := sr.modulo[axis]; ok {
				annotations = append(annotations, XMLAnnotation{
					ID:    fmt.Sprintf("Annotation:Modulo:%d:%s", i, axis),
					Value: encodeModulo(m),
				})
			}
		}
		doc.Images = append(doc.Images, img)
	}
	if len(annotations) > 0 {
		doc.StructuredAnnotations = &StructuredAnnotations{XMLAnnotations: annotations}
	}

	out, err := xml.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, err
	}
	header := []byte(xml.Header)
	return append(header, out...), nil
}

func sumSamples(channels []channelState) int {
	total := 0
	for _, c := range channels {
		spp := c.samplesPerPixel
		if spp == 0 {
			spp = 1
		}
		total += spp
	}
	if total == 0 {
		return 1
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// encodeResolutions/decodeResolutions render a sub-resolution pyramid tier
// list as "<X>x<Y>,<X>x<Y>,..." inside an XMLAnnotation's raw Value, since
// OME-XML itself has no native pyramid element.
func encodeResolutions(tiers [][2]int64) string {
	parts := make([]string, len(tiers))
	for i, t := range tiers {
		parts[i] = fmt.Sprintf("%dx%d", t[0], t[1])
	}
	return "<Resolutions>" + strings.Join(parts, ",") + "</Resolutions>"
}

func decodeResolutions(value string) ([][2]int64, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(value, "<Resolutions>"), "</Resolutions>")
	if inner == "" {
		return nil, nil
	}
	fields := strings.Split(inner, ",")
	tiers := make([][2]int64, len(fields))
	for i, f := range fields {
		xy := strings.SplitN(f, "x", 2)
		if len(xy) != 2 {
			return nil, fmt.Errorf("omexml: malformed resolution tier %q", f)
		}
		x, err := strconv.ParseInt(xy[0], 10, 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseInt(xy[1], 10, 64)
		if err != nil {
			return nil, err
		}
		tiers[i] = [2]int64{x, y}
	}
	return tiers, nil
}

// encodeModulo/decodeModulo render a ModuloAnnotation's Start/End/Step/Type
// fields as a self-closing <Modulo .../> tag inside an XMLAnnotation's raw
// Value; Axis and SeriesID are carried in the annotation ID instead.
func encodeModulo(m ModuloAnnotation) string {
	return fmt.Sprintf("<Modulo Start=%q End=%q Step=%q Type=%q/>",
		strconv.FormatFloat(m.Start, 'g', -1, 64),
		strconv.FormatFloat(m.End, 'g', -1, 64),
		strconv.FormatFloat(m.Step, 'g', -1, 64),
		m.Type)
}

func decodeModulo(value string) (start, end, step float64, typ string, err error) {
	var m struct {
		Start string `xml:"Start,attr"`
		End   string `xml:"End,attr"`
		Step  string `xml:"Step,attr"`
		Type  string `xml:"Type,attr"`
	}
	if err = xml.Unmarshal([]byte(value), &m); err != nil {
		return 0, 0, 0, "", err
	}
	if start, err = strconv.ParseFloat(m.Start, 64); err != nil {
		return 0, 0, 0, "", err
	}
	if end, err = strconv.ParseFloat(m.End, 64); err != nil {
		return 0, 0, 0, "", err
	}
	if step, err = strconv.ParseFloat(m.Step, 64); err != nil {
		return 0, 0, 0, "", err
	}
	return start, end, step, m.Type, nil
}

// annotationSeriesIndex parses the trailing ":<index>" or ":<index>:<axis>"
// segment off an Annotation:<Kind>:... ID.
func annotationSeriesIndex(id, kind string) (idx int, axis string, ok bool) {
	prefix := "Annotation:" + kind + ":"
	if !strings.HasPrefix(id, prefix) {
		return 0, "", false
	}
	rest := strings.TrimPrefix(id, prefix)
	parts := strings.SplitN(rest, ":", 2)
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	if len(parts) == 2 {
		return n, parts[1], true
	}
	return n, "", true
}

// Unmarshal parses an OME-XML document and fills a fresh Store with its
// series, channels, and TiffData elements.
func Unmarshal(data []byte) (*Store, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("omexml: %w", err)
	}

	s := NewStore()
	for _, img := range doc.Images {
		i := s.AddImage()
		sr := &s.series[i]
		sr.name = img.Name
		sr.sizeX = img.Pixels.SizeX
		sr.sizeY = img.Pixels.SizeY
		sr.sizeZ = img.Pixels.SizeZ
		sr.sizeT = img.Pixels.SizeT
		sr.significantBits = img.Pixels.SignificantBits
		sr.tiffData = img.Pixels.TiffDataList

		pt, err := parsePixelType(img.Pixels.Type)
		if err != nil {
			return nil, err
		}
		sr.pixelType = pt

		order, err := ParseDimensionOrder(img.Pixels.DimensionOrder)
		if err != nil {
			return nil, err
		}
		sr.dimOrder = order

		for _, ch := range img.Pixels.Channels {
			spp := ch.SamplesPerPixel
			if spp == 0 {
				spp = 1
			}
			sr.channels = append(sr.channels, channelState{name: ch.Name, samplesPerPixel: spp})
		}

		if img.Pixels.BinaryOnly != nil {
			sr.binaryOnlyFile = img.Pixels.BinaryOnly.MetadataFile
		}
	}

	if doc.StructuredAnnotations != nil {
		for _, ann := range doc.StructuredAnnotations.XMLAnnotations {
			if idx, _, ok := annotationSeriesIndex(ann.ID, "Resolution"); ok && idx < len(s.series) {
				tiers, err := decodeResolutions(ann.Value)
				if err != nil {
					return nil, err
				}
				s.series[idx].resolutions = tiers
				continue
			}
			if idx, axis, ok := annotationSeriesIndex(ann.ID, "Modulo"); ok && idx < len(s.series) {
				start, end, step, typ, err := decodeModulo(ann.Value)
				if err != nil {
					return nil, err
				}
				s.series[idx].modulo[axis] = ModuloAnnotation{Axis: axis, Start: start, End: end, Step: step, Type: typ}
			}
		}
	}
	return s, nil
}
