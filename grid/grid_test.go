package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
)

func testParams(n int) *params.Parameters {
	p := &params.Parameters{
		ProblemType: params.LidDrivenCavity,
		Nx:          n, Ny: n, Nz: n,
		NpX: 1, NpY: 1, NpZ: 1,
		Re:   100,
		TStp: 1e-3,
	}
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}

func singleRank(t *testing.T) *parallel.Rank {
	c, err := NewTestComm()
	require.NoError(t, err)
	return c.Rank(0)
}

func NewTestComm() (*parallel.Communicator, error) {
	return parallel.NewCommunicator([3]int{1, 1, 1}, [3]bool{false, false, false})
}

func TestGridIndexing(t *testing.T) {
	p := testParams(8)
	g, err := NewGrid(p, singleRank(t))
	require.NoError(t, err)

	assert.Equal(t, [3]int{8, 8, 8}, g.NCore)
	assert.Equal(t, [3]int{10, 10, 10}, g.NFull)
	// the core is strictly interior to the full box
	for ax := 0; ax < 3; ax++ {
		assert.Greater(t, g.Core.Lo[ax], g.Full.Lo[ax])
		assert.Less(t, g.Core.Hi[ax], g.Full.Hi[ax])
	}
	assert.Equal(t, 1.0/8, g.DXi)
}

func TestUniformMetrics(t *testing.T) {
	p := testParams(8)
	p.LX, p.LZ = 2.0, 4.0
	g, err := NewGrid(p, singleRank(t))
	require.NoError(t, err)

	for i := 0; i < g.NFull[0]; i++ {
		assert.InDelta(t, 0.5, g.XiX[i], 1e-14)
		assert.InDelta(t, 0.25, g.Xix2[i], 1e-14)
		assert.Equal(t, 0.0, g.Xixx[i])
	}
	for k := 0; k < g.NFull[2]; k++ {
		assert.InDelta(t, 0.0625, g.Ztz2[k], 1e-14)
		assert.Equal(t, 0.0, g.Ztzz[k])
	}
	// first core cell centre sits half a spacing inside the domain
	assert.InDelta(t, 2.0/16, g.XC[g.Core.Lo[0]], 1e-14)
	assert.InDelta(t, 2.0-2.0/16, g.XC[g.Core.Hi[0]], 1e-14)
}

func TestStretchedMetrics(t *testing.T) {
	p := testParams(16)
	p.BetaZ = 1.5
	g, err := NewGrid(p, singleRank(t))
	require.NoError(t, err)

	// coordinates increase monotonically and stay inside the domain
	for k := 1; k < g.NFull[2]; k++ {
		assert.Greater(t, g.ZC[k], g.ZC[k-1])
	}
	for k := g.Core.Lo[2]; k <= g.Core.Hi[2]; k++ {
		assert.Greater(t, g.ZC[k], 0.0)
		assert.Less(t, g.ZC[k], 1.0)
		assert.Greater(t, g.Ztz2[k], 0.0)
	}
	// tanh clustering squeezes cells toward both walls
	var (
		lo  = g.Core.Lo[2]
		hi  = g.Core.Hi[2]
		mid = (lo + hi) / 2
	)
	wallCell := g.ZC[lo+1] - g.ZC[lo]
	midCell := g.ZC[mid+1] - g.ZC[mid]
	assert.Less(t, wallCell, midCell)
	// the stretching metric changes sign across the mid-plane
	assert.Less(t, g.Ztzz[lo]*g.Ztzz[hi], 0.0)
	assert.Less(t, g.Ztzz[lo], 0.0)

	// cell volumes recover the total volume of the box
	var vol float64
	for i := g.Core.Lo[0]; i <= g.Core.Hi[0]; i++ {
		for j := g.Core.Lo[1]; j <= g.Core.Hi[1]; j++ {
			for k := g.Core.Lo[2]; k <= g.Core.Hi[2]; k++ {
				vol += g.CellVolume(i, j, k)
			}
		}
	}
	assert.InDelta(t, 1.0, vol, 0.02)
}
