package ometiff

// getIndex computes the flat plane index for a (z, c, t) coordinate under
// core's DimensionOrder, generalizing the teacher's N-D stride walk
// (internal/layout.extractHyperslabRecursive) to the three Z/C/T axes a
// plane index is defined over; X and Y never participate since a "plane"
// is already one full X*Y image.
func getIndex(core *CoreMetadata, z, c, t int) (int, error) {
	sizeZ, sizeC, sizeT := core.SizeZ, core.EffectiveSizeC(), core.SizeT
	if z < 0 || z >= sizeZ {
		return 0, newErr(OutOfRange, "z index %d out of range [0,%d)", z, sizeZ)
	}
	if c < 0 || c >= sizeC {
		return 0, newErr(OutOfRange, "c index %d out of range [0,%d)", c, sizeC)
	}
	if t < 0 || t >= sizeT {
		return 0, newErr(OutOfRange, "t index %d out of range [0,%d)", t, sizeT)
	}

	extent := map[byte]int{'Z': sizeZ, 'C': sizeC, 'T': sizeT}
	coord := map[byte]int{'Z': z, 'C': c, 'T': t}
	letters := core.DimensionOrder.axisLetters()

	// letters[0] varies fastest, letters[2] slowest, matching OME-XML's
	// DimensionOrder = "XY" + letters convention.
	idx := 0
	stride := 1
	for _, axis := range letters {
		idx += coord[axis] * stride
		stride *= extent[axis]
	}
	return idx, nil
}

// getZCTCoords is getIndex's inverse: recovers (z, c, t) from a flat
// plane index under core's DimensionOrder.
func getZCTCoords(core *CoreMetadata, index int) (z, c, t int, err error) {
	sizeZ, sizeC, sizeT := core.SizeZ, core.EffectiveSizeC(), core.SizeT
	total := sizeZ * sizeC * sizeT
	if index < 0 || index >= total {
		return 0, 0, 0, newErr(OutOfRange, "plane index %d out of range [0,%d)", index, total)
	}

	extent := map[byte]int{'Z': sizeZ, 'C': sizeC, 'T': sizeT}
	letters := core.DimensionOrder.axisLetters()

	coord := map[byte]int{}
	remaining := index
	for _, axis := range letters {
		coord[axis] = remaining % extent[axis]
		remaining /= extent[axis]
	}
	return coord['Z'], coord['C'], coord['T'], nil
}
