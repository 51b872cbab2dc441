package solver

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshansamuel/gpu-saras/params"
)

// chdir changes the working directory to dir and restores the
// previous working directory when the test completes.
func chdir(t *testing.T, dir string) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(old))
	})
}

func cavityParams(n int) *params.Parameters {
	return &params.Parameters{
		Title:       "cavity smoke",
		ProblemType: params.LidDrivenCavity,
		Nx:          n, Ny: n, Nz: n,
		NpX: 1, NpY: 1, NpZ: 1,
		Re:          100,
		TStp:        1e-4,
		FinalTime:   3e-4,
		CnTolerance: 1e-6,
		MgTolerance: 1e-4,
		NThreads:    2,
	}
}

func TestLidDrivenCavitySmoke(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, Run(cavityParams(8)))
}

func TestMinimumCoreSize(t *testing.T) {
	// the smallest supported sub-domain still completes without the
	// stencils leaving the padded box
	chdir(t, t.TempDir())
	require.NoError(t, Run(cavityParams(4)))
}

func TestMultiRank(t *testing.T) {
	chdir(t, t.TempDir())
	p := cavityParams(8)
	p.NpX, p.NpZ = 2, 2
	require.NoError(t, Run(p))
}

func TestRayleighBenardSmoke(t *testing.T) {
	chdir(t, t.TempDir())
	p := &params.Parameters{
		Title:       "rbc smoke",
		ProblemType: params.RayleighBenard,
		Nx:          8, Ny: 8, Nz: 8,
		NpX: 1, NpY: 1, NpZ: 1,
		XPer: true, YPer: true,
		Ra: 1e4, Pr: 1,
		TStp:        1e-4,
		FinalTime:   3e-4,
		CnTolerance: 1e-6,
		MgTolerance: 1e-4,
	}
	require.NoError(t, Run(p))
}

func TestPlanarSmoke(t *testing.T) {
	chdir(t, t.TempDir())
	p := cavityParams(8)
	p.Planar = true
	p.Ny, p.NpY = 1, 1
	require.NoError(t, Run(p))
}

func TestRunRejectsBadRecord(t *testing.T) {
	p := cavityParams(8)
	p.LesModel = 9
	assert.Error(t, Run(p))
}
