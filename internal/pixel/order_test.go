package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalOrderStridesRowMajor(t *testing.T) {
	var extents [NumAxes]int64
	for i := range extents {
		extents[i] = 1
	}
	extents[AxisX] = 4
	extents[AxisY] = 3

	o := CanonicalOrder()
	strides := o.Strides(extents)

	assert.Equal(t, int64(1), strides[AxisX])
	assert.Equal(t, int64(4), strides[AxisY])
}

func TestOffsetMatchesRowMajorFormula(t *testing.T) {
	var extents [NumAxes]int64
	for i := range extents {
		extents[i] = 1
	}
	extents[AxisX] = 5
	extents[AxisY] = 2

	o := CanonicalOrder()
	for y := int64(0); y < 2; y++ {
		for x := int64(0); x < 5; x++ {
			var coords [NumAxes]int64
			coords[AxisX] = x
			coords[AxisY] = y
			got := o.Offset(extents, coords)
			want := y*5 + x
			assert.Equal(t, want, got)
		}
	}
}

func TestOffsetDescendingAxisReflectsIndex(t *testing.T) {
	var extents [NumAxes]int64
	for i := range extents {
		extents[i] = 1
	}
	extents[AxisX] = 4

	o := CanonicalOrder()
	o.Descending[AxisX] = true

	var first, last [NumAxes]int64
	last[AxisX] = 3

	assert.Equal(t, int64(3), o.Offset(extents, first))
	assert.Equal(t, int64(0), o.Offset(extents, last))
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "X", AxisX.String())
	assert.Equal(t, "ModuloC", AxisModuloC.String())
	assert.Equal(t, "Axis(?)", Axis(99).String())
}
