package ometiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coreWithOrder(order DimensionOrder) *CoreMetadata {
	return &CoreMetadata{
		SizeZ:          3,
		SizeT:          2,
		SizeC:          []int{1, 1}, // effectiveSizeC = 2
		DimensionOrder: order,
	}
}

func TestGetIndexGetZCTCoordsRoundTripAllOrders(t *testing.T) {
	for _, order := range []DimensionOrder{XYZCT, XYZTC, XYCTZ, XYCZT, XYTCZ, XYTZC} {
		core := coreWithOrder(order)
		for z := 0; z < core.SizeZ; z++ {
			for c := 0; c < core.EffectiveSizeC(); c++ {
				for tt := 0; tt < core.SizeT; tt++ {
					idx, err := getIndex(core, z, c, tt)
					require.NoError(t, err)

					gz, gc, gt, err := getZCTCoords(core, idx)
					require.NoError(t, err)
					assert.Equal(t, z, gz, "order %s", order)
					assert.Equal(t, c, gc, "order %s", order)
					assert.Equal(t, tt, gt, "order %s", order)
				}
			}
		}
	}
}

func TestGetIndexOutOfRange(t *testing.T) {
	core := coreWithOrder(XYZCT)
	_, err := getIndex(core, core.SizeZ, 0, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, OutOfRange))

	_, err = getIndex(core, 0, core.EffectiveSizeC(), 0)
	assert.True(t, IsKind(err, OutOfRange))

	_, err = getIndex(core, 0, 0, core.SizeT)
	assert.True(t, IsKind(err, OutOfRange))
}

func TestGetZCTCoordsOutOfRange(t *testing.T) {
	core := coreWithOrder(XYZCT)
	total := core.ImageCount()
	_, _, _, err := getZCTCoords(core, total)
	require.Error(t, err)
	assert.True(t, IsKind(err, OutOfRange))

	_, _, _, err = getZCTCoords(core, -1)
	assert.True(t, IsKind(err, OutOfRange))
}
