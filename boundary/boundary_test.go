package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
)

func testGrid(t *testing.T) *grid.Grid {
	p := &params.Parameters{
		ProblemType: params.LidDrivenCavity,
		Nx:          4, Ny: 4, Nz: 4,
		NpX: 1, NpY: 1, NpZ: 1,
		Re:   100,
		TStp: 1e-3,
	}
	require.NoError(t, p.Validate())
	c, err := parallel.NewCommunicator([3]int{1, 1, 1}, [3]bool{false, false, false})
	require.NoError(t, err)
	g, err := grid.NewGrid(p, c.Rank(0))
	require.NoError(t, err)
	return g
}

func TestDirichlet(t *testing.T) {
	var (
		g = testGrid(t)
		f = field.NewField(g, "test")
	)
	f.F.Fill(9)
	NewDirichlet(f, parallel.Top, 1.5).ImposeBC()

	top := g.Core.Hi[2] + 1
	assert.Equal(t, 1.5, f.F.At(2, 2, top))
	assert.Equal(t, 1.5, f.F.At(0, 0, top))
	// interior and other walls untouched
	assert.Equal(t, 9.0, f.F.At(2, 2, top-1))
	assert.Equal(t, 9.0, f.F.At(2, 2, 0))
}

func TestNeumann(t *testing.T) {
	var (
		g = testGrid(t)
		f = field.NewField(g, "test")
	)
	// zero gradient mirrors the interior layer
	for j := 0; j < g.NFull[1]; j++ {
		f.F.Set(g.Core.Lo[0], j, 2, float64(j)+1)
	}
	NewNeumann(g, f, parallel.Left, 0).ImposeBC()
	for j := 0; j < g.NFull[1]; j++ {
		assert.Equal(t, float64(j)+1, f.F.At(g.Core.Lo[0]-1, j, 2))
	}

	// prescribed gradient offsets by the wall spacing
	f.F.Fill(2)
	NewNeumann(g, f, parallel.Right, 4).ImposeBC()
	var (
		ghost = g.Core.Hi[0] + 1
		h     = g.XC[ghost] - g.XC[g.Core.Hi[0]]
	)
	assert.InDelta(t, 2+4*h, f.F.At(ghost, 2, 2), 1e-14)
}

// The imposition laws: imposeBCs is stable under interleaved halo
// syncs, and a second imposition right after the first is a no-op.
func TestImposeSyncLaw(t *testing.T) {
	var (
		g = testGrid(t)
		s = field.NewSField(g, "s")
	)
	for face := 0; face < parallel.NumFaces; face++ {
		s.F.BC[face] = NewDirichlet(s.F, face, float64(face))
	}
	v := 0.3
	c := g.Core
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				s.F.F.Set(i, j, k, v)
				v = -1.1*v + 0.2
			}
		}
	}

	s.ImposeBCs()
	s.SyncData()
	once := append([]float64(nil), s.F.F.Data...)

	s.ImposeBCs()
	assert.Equal(t, once, s.F.F.Data)
}
