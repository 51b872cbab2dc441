package poisson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
)

func testSetup(t *testing.T, n int, periodic, testPoisson bool) (*grid.Grid, *params.Parameters) {
	p := &params.Parameters{
		ProblemType: params.LidDrivenCavity,
		Nx:          n, Ny: n, Nz: n,
		NpX: 1, NpY: 1, NpZ: 1,
		XPer: periodic, YPer: periodic, ZPer: periodic,
		Re:          100,
		TStp:        1e-3,
		MgTolerance: 1e-5,
		TestPoisson: testPoisson,
	}
	require.NoError(t, p.Validate())
	c, err := parallel.NewCommunicator([3]int{1, 1, 1}, [3]bool{periodic, periodic, periodic})
	require.NoError(t, err)
	g, err := grid.NewGrid(p, c.Rank(0))
	require.NoError(t, err)
	return g, p
}

// laplacian applies the compact metric stencil at a core cell of a
// synced array, mirroring the smoother's operator.
func laplacian(g *grid.Grid, a *field.PlainSF, i, j, k int) float64 {
	var (
		f    = a.F
		ihx2 = 1.0 / (g.DXi * g.DXi)
		ihy2 = 1.0 / (g.DEt * g.DEt)
		ihz2 = 1.0 / (g.DZt * g.DZt)
	)
	return ihx2*g.Xix2[i]*(f.At(i+1, j, k)-2*f.At(i, j, k)+f.At(i-1, j, k)) +
		ihy2*g.Ety2[j]*(f.At(i, j+1, k)-2*f.At(i, j, k)+f.At(i, j-1, k)) +
		ihz2*g.Ztz2[k]*(f.At(i, j, k+1)-2*f.At(i, j, k)+f.At(i, j, k-1))
}

func TestMgSolvePeriodic(t *testing.T) {
	var (
		g, p = testSetup(t, 16, true, false)
		mg   = NewMG(g, p)
		rhs  = field.NewPlainSF(g)
		Pp   = field.NewPlainSF(g)
		c    = g.Core
	)
	// a zero-mean smooth RHS on the torus
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				rhs.F.Set(i, j, k, math.Sin(2*math.Pi*g.XC[i])+math.Sin(2*math.Pi*g.ZC[k]))
			}
		}
	}
	require.NoError(t, mg.MgSolve(Pp, rhs))

	// the contract: Laplacian(Pp) matches the RHS within tolerance
	Pp.SyncData()
	var maxRes float64
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				r := math.Abs(laplacian(g, Pp, i, j, k) - rhs.F.At(i, j, k))
				if r > maxRes {
					maxRes = r
				}
			}
		}
	}
	assert.Less(t, maxRes, p.MgTolerance*1.01)
}

func TestMgSolveZeroRHS(t *testing.T) {
	var (
		g, p = testSetup(t, 8, false, false)
		mg   = NewMG(g, p)
		rhs  = field.NewPlainSF(g)
		Pp   = field.NewPlainSF(g)
	)
	Pp.Set(4) // stale correction from a previous solve
	require.NoError(t, mg.MgSolve(Pp, rhs))
	assert.Equal(t, 0.0, Pp.F.MaxAbs())
}

func TestMgSolveDirichletConstantRHS(t *testing.T) {
	// the Poisson-test configuration: unit RHS with Dirichlet walls
	var (
		g, p = testSetup(t, 16, false, true)
		mg   = NewMG(g, p)
		rhs  = field.NewPlainSF(g)
		Pp   = field.NewPlainSF(g)
	)
	rhs.Set(1)
	require.NoError(t, mg.MgSolve(Pp, rhs))

	// check the operator at strictly interior cells, away from the
	// wall ghosts
	var (
		in     = g.Core.Shrink(1)
		maxRes float64
	)
	for i := in.Lo[0]; i <= in.Hi[0]; i++ {
		for j := in.Lo[1]; j <= in.Hi[1]; j++ {
			for k := in.Lo[2]; k <= in.Hi[2]; k++ {
				r := math.Abs(laplacian(g, Pp, i, j, k) - 1)
				if r > maxRes {
					maxRes = r
				}
			}
		}
	}
	assert.Less(t, maxRes, p.MgTolerance*1.01)
	// the solution curves away from the walls
	mid := (g.Core.Lo[0] + g.Core.Hi[0]) / 2
	assert.Less(t, Pp.F.At(mid, mid, mid), 0.0)
}

func TestMgSolveUnreachableToleranceFails(t *testing.T) {
	// a tolerance far below the floating-point floor cannot be met, so
	// the cycle cap is exhausted and the solve reports a failure
	var (
		g, p = testSetup(t, 8, false, false)
	)
	p.MgTolerance = 1e-30
	var (
		mg  = NewMG(g, p)
		rhs = field.NewPlainSF(g)
		Pp  = field.NewPlainSF(g)
		c   = g.Core
	)
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				rhs.F.Set(i, j, k, math.Sin(2*math.Pi*g.XC[i]))
			}
		}
	}
	err := mg.MgSolve(Pp, rhs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multigrid")
}
