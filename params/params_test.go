package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *Parameters {
	return &Parameters{
		ProblemType: LidDrivenCavity,
		Nx:          32, Ny: 32, Nz: 32,
		NpX: 2, NpY: 2, NpZ: 1,
		Re:   100,
		TStp: 1e-3,
	}
}

func TestParseYAML(t *testing.T) {
	input := []byte(`
Title: "Cavity check"
ProblemType: ldc
Nx: 16
Ny: 16
Nz: 16
Re: 1000
TStp: 0.001
FinalTime: 1.0
CnTolerance: 1.0e-6
LesModel: 1
XPer: false
`)
	p := &Parameters{}
	require.NoError(t, p.Parse(input))
	assert.Equal(t, "Cavity check", p.Title)
	assert.Equal(t, 16, p.Nx)
	assert.Equal(t, 1000.0, p.Re)
	assert.Equal(t, 1e-6, p.CnTolerance)
	assert.Equal(t, 1, p.LesModel)

	require.NoError(t, p.Validate())
	// defaults filled in
	assert.Equal(t, 1, p.NpX)
	assert.Equal(t, 1.0, p.LX)
	assert.Greater(t, p.NThreads, 0)
	assert.Equal(t, 1e-6, p.MgTolerance)
}

func TestValidateErrors(t *testing.T) {
	{
		p := validRecord()
		p.Nx = 0
		assert.Error(t, p.Validate())
	}
	{
		p := validRecord()
		p.TStp = -1
		assert.Error(t, p.Validate())
	}
	{
		p := validRecord()
		p.LesModel = 3
		assert.Error(t, p.Validate())
	}
	{
		p := validRecord()
		p.ProblemType = "vortex"
		assert.Error(t, p.Validate())
	}
	{ // grid not divisible by process grid
		p := validRecord()
		p.NpX = 3
		assert.Error(t, p.Validate())
	}
	{ // planar runs must collapse the y axis
		p := validRecord()
		p.Planar = true
		assert.Error(t, p.Validate())
	}
	{ // scalar runs need their physical groups
		p := validRecord()
		p.ProblemType = RayleighBenard
		assert.Error(t, p.Validate())
		p.Ra, p.Pr = 1e5, 1
		assert.NoError(t, p.Validate())
	}
}
