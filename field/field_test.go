package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
)

func testGrid(t *testing.T, n int, periodic bool) *grid.Grid {
	p := &params.Parameters{
		ProblemType: params.LidDrivenCavity,
		Nx:          n, Ny: n, Nz: n,
		NpX: 1, NpY: 1, NpZ: 1,
		XPer: periodic, YPer: periodic, ZPer: periodic,
		Re:       100,
		TStp:     1e-3,
		NThreads: 2,
	}
	require.NoError(t, p.Validate())
	c, err := parallel.NewCommunicator([3]int{1, 1, 1}, [3]bool{periodic, periodic, periodic})
	require.NoError(t, err)
	g, err := grid.NewGrid(p, c.Rank(0))
	require.NoError(t, err)
	return g
}

func TestWallSlices(t *testing.T) {
	g := testGrid(t, 8, false)
	f := NewField(g, "test")

	// one cell outside the core, degenerate along the face normal
	assert.Equal(t, g.Core.Lo[0]-1, f.Walls[parallel.Left].Lo[0])
	assert.Equal(t, g.Core.Lo[0]-1, f.Walls[parallel.Left].Hi[0])
	assert.Equal(t, g.Core.Hi[0]+1, f.Walls[parallel.Right].Lo[0])
	assert.Equal(t, g.Core.Hi[2]+1, f.Walls[parallel.Top].Lo[2])
	assert.Equal(t, g.Core.Lo[2]-1, f.Walls[parallel.Bottom].Hi[2])
	for face := 0; face < parallel.NumFaces; face++ {
		assert.True(t, f.HasWall[face])
		ax := parallel.FaceAxis(face)
		assert.Equal(t, 1, f.Walls[face].Size(ax))
	}

	// fields are zero after construction
	assert.Equal(t, 0.0, f.F.MaxAbs())
}

func TestFieldMaxScaling(t *testing.T) {
	g := testGrid(t, 4, true)
	f := NewField(g, "test")
	c := g.Core
	v := 0.1
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				f.F.Set(i, j, k, v)
				v = -1.3*v + 0.07
			}
		}
	}
	m := f.FieldMax()
	f.F.Scale(-2.5)
	assert.InDelta(t, 2.5*m, f.FieldMax(), 1e-14)
}

func TestDerivatives(t *testing.T) {
	g := testGrid(t, 8, true)

	{ // all derivatives of a constant vanish
		f := NewField(g, "const")
		f.F.Fill(3.7)
		var (
			der = NewDerivative(g, f.F)
			out = NewArray(g)
		)
		der.Deriv1X(out)
		assert.Equal(t, 0.0, out.MaxAbsBox(g.Core))
		der.Deriv2XX(out)
		assert.Equal(t, 0.0, out.MaxAbsBox(g.Core))
		der.Deriv2ZZ(out)
		assert.Equal(t, 0.0, out.MaxAbsBox(g.Core))
	}
	{ // d/dx of x is one away from the periodic wrap
		f := NewField(g, "linear")
		full := g.Full
		for i := full.Lo[0]; i <= full.Hi[0]; i++ {
			for j := full.Lo[1]; j <= full.Hi[1]; j++ {
				for k := full.Lo[2]; k <= full.Hi[2]; k++ {
					f.F.Set(i, j, k, g.XC[i])
				}
			}
		}
		var (
			der = NewDerivative(g, f.F)
			out = NewArray(g)
		)
		der.Deriv1X(out)
		mid := (g.Core.Lo[0] + g.Core.Hi[0]) / 2
		assert.InDelta(t, 1.0, out.At(mid, mid, mid), 1e-12)

		der.Deriv2XX(out)
		assert.InDelta(t, 0.0, out.At(mid, mid, mid), 1e-9)
	}
}

// TestAdjointness checks the discrete duality of gradient and
// divergence: on a uniform periodic grid, <div V, phi> = -<V, grad
// phi> to machine precision.
func TestAdjointness(t *testing.T) {
	var (
		g   = testGrid(t, 8, true)
		V   = NewVField(g, "V")
		phi = NewSField(g, "phi")

		div  = NewPlainSF(g)
		grad = NewPlainVF(g)

		c = g.Core
	)
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				var (
					x = 2 * math.Pi * g.XC[i]
					y = 2 * math.Pi * g.YC[j]
					z = 2 * math.Pi * g.ZC[k]
				)
				V.Vx.F.Set(i, j, k, math.Sin(x)*math.Cos(y))
				V.Vy.F.Set(i, j, k, math.Sin(y)*math.Cos(z))
				V.Vz.F.Set(i, j, k, math.Cos(x)*math.Sin(z))
				phi.F.F.Set(i, j, k, math.Sin(x)*math.Sin(z)+math.Cos(y))
			}
		}
	}
	V.SyncData()
	phi.SyncData()

	V.Divergence(div)
	phi.Gradient(grad)

	var lhs, rhs float64
	for i := c.Lo[0]; i <= c.Hi[0]; i++ {
		for j := c.Lo[1]; j <= c.Hi[1]; j++ {
			for k := c.Lo[2]; k <= c.Hi[2]; k++ {
				id := div.F.Idx(i, j, k)
				lhs += div.F.Data[id] * phi.F.F.Data[id]
				rhs += V.Vx.F.Data[id]*grad.Vx.Data[id] +
					V.Vy.F.Data[id]*grad.Vy.Data[id] +
					V.Vz.F.Data[id]*grad.Vz.Data[id]
			}
		}
	}
	assert.InDelta(t, -rhs, lhs, 1e-9)
}

func TestPlainVFMultAdd(t *testing.T) {
	g := testGrid(t, 4, true)
	a := NewPlainVF(g)
	b := NewPlainVF(g)
	a.Set(1)
	b.Set(2)
	a.MultAdd(b, 0.5)
	assert.Equal(t, 2.0, a.Vx.At(1, 1, 1))
	assert.Equal(t, 2.0, a.Vz.At(2, 2, 2))
	a.Scale(2)
	a.SubPlain(b)
	assert.Equal(t, 2.0, a.Vy.At(1, 2, 1))
}
