package tiffio

import (
	"fmt"

	"github.com/nd2lab/ometiff/internal/tiffio/compress"
)

// layout describes how one IFD's pixel data is organized on disk: either
// a grid of tiles, or a stack of full-width strips (the "strip" case is
// modeled as a tile grid with TileWidth == ImageWidth).
type layout struct {
	width, height     int
	tileWidth, tileH   int
	tiled              bool
	offsets, byteCounts []uint64
	codec              compress.Codec
	bitsPerSample      int
	samplesPerPixel    int
}

func (d *IFD) layout() (layout, error) {
	width, err := d.intTag(TagImageWidth)
	if err != nil {
		return layout{}, err
	}
	height, err := d.intTag(TagImageLength)
	if err != nil {
		return layout{}, err
	}
	spp := 1
	if t, ok := d.entries[TagSamplesPerPixel]; ok && len(t.Ints) > 0 {
		spp = int(t.Ints[0])
	}
	bps := 8
	if t, ok := d.entries[TagBitsPerSample]; ok && len(t.Ints) > 0 {
		bps = int(t.Ints[0])
	}
	compValue := uint16(CompressionNone)
	if t, ok := d.entries[TagCompression]; ok && len(t.Ints) > 0 {
		compValue = uint16(t.Ints[0])
	}
	codec, err := compress.ForValue(compValue)
	if err != nil {
		return layout{}, err
	}

	if tw, ok := d.entries[TagTileWidth]; ok {
		th := d.entries[TagTileLength]
		off := d.entries[TagTileOffsets]
		cnt := d.entries[TagTileByteCounts]
		return layout{
			width: int(width), height: int(height),
			tileWidth: int(tw.Ints[0]), tileH: int(th.Ints[0]),
			tiled: true, offsets: off.Ints, byteCounts: cnt.Ints,
			codec: codec, bitsPerSample: bps, samplesPerPixel: spp,
		}, nil
	}

	rowsPerStrip := height
	if t, ok := d.entries[TagRowsPerStrip]; ok && len(t.Ints) > 0 {
		rowsPerStrip = t.Ints[0]
	}
	off := d.entries[TagStripOffsets]
	cnt := d.entries[TagStripByteCounts]
	return layout{
		width: int(width), height: int(height),
		tileWidth: int(width), tileH: int(rowsPerStrip),
		tiled: false, offsets: off.Ints, byteCounts: cnt.Ints,
		codec: codec, bitsPerSample: bps, samplesPerPixel: spp,
	}, nil
}

func (d *IFD) intTag(tag uint16) (uint64, error) {
	t, ok := d.entries[tag]
	if !ok || len(t.Ints) == 0 {
		return 0, fmt.Errorf("tiffio: missing required tag %d", tag)
	}
	return t.Ints[0], nil
}

// blockSize returns the decompressed size of one tile/strip block,
// including any trailing partial block at the image edge.
func (l layout) blockSize(blockY int) int {
	h := l.tileH
	if !l.tiled {
		remaining := l.height - blockY*l.tileH
		if remaining < h {
			h = remaining
		}
	}
	bytesPerSample := (l.bitsPerSample + 7) / 8
	return l.tileWidth * h * l.samplesPerPixel * bytesPerSample
}

func (l layout) blocksAcross() int {
	return (l.width + l.tileWidth - 1) / l.tileWidth
}

func (l layout) blockIndex(x, y int) int {
	bx := x / l.tileWidth
	by := y / l.tileH
	return by*l.blocksAcross() + bx
}

// ReadRegion decodes and returns the raw interleaved bytes covering the
// rectangle [x, y, x+w, y+h), reassembled from whichever tiles or strips
// intersect it. Coordinates and size must stay within image bounds.
func (d *IFD) ReadRegion(x, y, w, h int) ([]byte, error) {
	l, err := d.layout()
	if err != nil {
		return nil, err
	}
	bytesPerSample := (l.bitsPerSample + 7) / 8
	rowBytes := w * l.samplesPerPixel * bytesPerSample
	out := make([]byte, rowBytes*h)

	firstBlockRow := y / l.tileH
	lastBlockRow := (y + h - 1) / l.tileH
	firstBlockCol := x / l.tileWidth
	lastBlockCol := (x + w - 1) / l.tileWidth

	for blockRow := firstBlockRow; blockRow <= lastBlockRow; blockRow++ {
		for blockCol := firstBlockCol; blockCol <= lastBlockCol; blockCol++ {
			blockX := blockCol * l.tileWidth
			blockY := blockRow * l.tileH
			idx := l.blockIndex(blockX, blockY)
			if idx >= len(l.offsets) {
				return nil, fmt.Errorf("tiffio: block index %d out of range", idx)
			}
			raw, err := d.file.ReadBlob(int64(l.offsets[idx]), int(l.byteCounts[idx]))
			if err != nil {
				return nil, err
			}
			decoded, err := l.codec.Decode(raw, l.blockSize(blockRow))
			if err != nil {
				return nil, err
			}
			copyBlockIntoRegion(out, decoded, l, x, y, w, h, blockX, blockY, rowBytes, bytesPerSample)
		}
	}
	return out, nil
}

// copyBlockIntoRegion copies the portion of one decoded tile/strip that
// falls inside the requested region into the output buffer.
func copyBlockIntoRegion(out, decoded []byte, l layout, x, y, w, h, blockX, blockY, rowBytes, bytesPerSample int) {
	blockOriginX := (blockX / l.tileWidth) * l.tileWidth
	blockOriginY := (blockY / l.tileH) * l.tileH
	blockRowBytes := l.tileWidth * l.samplesPerPixel * bytesPerSample

	startY := blockOriginY
	if startY < y {
		startY = y
	}
	endY := blockOriginY + l.tileH
	if endY > y+h {
		endY = y + h
	}
	startX := blockOriginX
	if startX < x {
		startX = x
	}
	endX := blockOriginX + l.tileWidth
	if endX > x+w {
		endX = x + w
	}

	for row := startY; row < endY; row++ {
		srcOff := (row-blockOriginY)*blockRowBytes + (startX-blockOriginX)*l.samplesPerPixel*bytesPerSample
		dstOff := (row-y)*rowBytes + (startX-x)*l.samplesPerPixel*bytesPerSample
		n := (endX - startX) * l.samplesPerPixel * bytesPerSample
		if srcOff+n > len(decoded) || dstOff+n > len(out) {
			continue
		}
		copy(out[dstOff:dstOff+n], decoded[srcOff:srcOff+n])
	}
}

// WriteRegion compresses buf (interleaved, row-major over [0,w)x[0,h))
// using the IFD's configured compression and writes it as a single
// strip or tile block at (x, y), appending the compressed bytes to the
// file and recording the offset/byte-count in StripOffsets/TileOffsets.
// It assumes whole-block writes: OME-TIFF planes are written one strip
// or tile at a time, never partially.
func (d *IFD) WriteRegion(x, y int, buf []byte) error {
	l, err := d.layout()
	if err != nil {
		return err
	}
	encoded, err := l.codec.Encode(buf)
	if err != nil {
		return err
	}
	offset, err := d.file.WriteBlob(encoded)
	if err != nil {
		return err
	}

	idx := l.blockIndex(x, y)
	var offTag, cntTag uint16 = TagStripOffsets, TagStripByteCounts
	if l.tiled {
		offTag = TagTileOffsets
		cntTag = TagTileByteCounts
	}

	offs := append([]uint64{}, d.entries[offTag].Ints...)
	cnts := append([]uint64{}, d.entries[cntTag].Ints...)
	for len(offs) <= idx {
		offs = append(offs, 0)
		cnts = append(cnts, 0)
	}
	offs[idx] = uint64(offset)
	cnts[idx] = uint64(len(encoded))
	d.SetRaw(offTag, RawTag{Type: DTLong8pick(d.file.bigTIFF), Count: uint64(len(offs)), Ints: offs})
	d.SetRaw(cntTag, RawTag{Type: DTLong8pick(d.file.bigTIFF), Count: uint64(len(cnts)), Ints: cnts})
	return nil
}

// DTLong8pick selects the narrowest offset/count field width the writer
// should use for classic vs BigTIFF containers.
func DTLong8pick(bigTIFF bool) DataType {
	if bigTIFF {
		return DTLong8
	}
	return DTLong
}
