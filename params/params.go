// Package params holds the input-parameter record of the solver,
// parsed from a YAML input file.
package params

import (
	"fmt"
	"runtime"

	"github.com/ghodss/yaml"
)

// Problem types understood by the solver setup.
const (
	LidDrivenCavity = "ldc"
	RayleighBenard  = "rbc"
)

// Parameters obtained from the YAML input file
type Parameters struct {
	Title       string `yaml:"Title"`
	ProblemType string `yaml:"ProblemType"`

	// Global core sizes and the Cartesian process grid
	Nx  int `yaml:"Nx"`
	Ny  int `yaml:"Ny"`
	Nz  int `yaml:"Nz"`
	NpX int `yaml:"NpX"`
	NpY int `yaml:"NpY"`
	NpZ int `yaml:"NpZ"`

	XPer   bool `yaml:"XPer"`
	YPer   bool `yaml:"YPer"`
	ZPer   bool `yaml:"ZPer"`
	Planar bool `yaml:"Planar"`

	// Domain lengths and per-axis tangent-hyperbolic stretching
	// factors; a factor of 0 selects a uniform grid along that axis.
	LX    float64 `yaml:"LX"`
	LY    float64 `yaml:"LY"`
	LZ    float64 `yaml:"LZ"`
	BetaX float64 `yaml:"BetaX"`
	BetaY float64 `yaml:"BetaY"`
	BetaZ float64 `yaml:"BetaZ"`

	// Physical groups: Re governs hydro runs, Ra and Pr scalar runs.
	Re float64 `yaml:"Re"`
	Ra float64 `yaml:"Ra"`
	Pr float64 `yaml:"Pr"`

	TStp      float64 `yaml:"TStp"`
	FinalTime float64 `yaml:"FinalTime"`

	CnTolerance float64 `yaml:"CnTolerance"`
	MgTolerance float64 `yaml:"MgTolerance"`

	// MaxJacobiIters caps the implicit velocity/scalar solves. When 0
	// the cap defaults to the ceil((ln N)^3) heuristic, with N the
	// number of core cells of one rank's sub-domain.
	MaxJacobiIters int `yaml:"MaxJacobiIters"`

	NThreads int `yaml:"NThreads"`

	// LesModel: 0 = off, 1 = momentum-only, 2 = momentum + scalar
	LesModel int `yaml:"LesModel"`

	// TimeSeriesInterval is the physical-time cadence of the
	// time-series diagnostics; 0 writes every step.
	TimeSeriesInterval float64 `yaml:"TimeSeriesInterval"`

	// TestPoisson replaces the multigrid input with a constant and
	// suppresses the pressure history; used only by the Poisson test.
	TestPoisson bool `yaml:"TestPoisson"`
}

func (p *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, p)
}

func (p *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", p.Title)
	fmt.Printf("[%s]\t\t\t= Problem Type\n", p.ProblemType)
	fmt.Printf("%d x %d x %d\t\t= Grid Size\n", p.Nx, p.Ny, p.Nz)
	fmt.Printf("%d x %d x %d\t\t\t= Process Grid\n", p.NpX, p.NpY, p.NpZ)
	fmt.Printf("%8.5f\t\t= Time Step\n", p.TStp)
	fmt.Printf("%8.5f\t\t= Final Time\n", p.FinalTime)
	fmt.Printf("%8.2e\t\t= CN Tolerance\n", p.CnTolerance)
	fmt.Printf("%8.2e\t\t= MG Tolerance\n", p.MgTolerance)
	fmt.Printf("[%d]\t\t\t\t= LES Model\n", p.LesModel)
	switch p.ProblemType {
	case RayleighBenard:
		fmt.Printf("%10.2f\t\t= Ra\n", p.Ra)
		fmt.Printf("%8.2f\t\t= Pr\n", p.Pr)
	default:
		fmt.Printf("%8.2f\t\t= Re\n", p.Re)
	}
}

// Validate checks the record for the configuration errors that are
// terminal at startup, and fills the defaulted entries.
func (p *Parameters) Validate() error {
	if p.ProblemType == "" {
		p.ProblemType = LidDrivenCavity
	}
	if p.ProblemType != LidDrivenCavity && p.ProblemType != RayleighBenard {
		return fmt.Errorf("params: unknown problem type %q", p.ProblemType)
	}
	if p.Planar {
		if p.Ny == 0 {
			p.Ny = 1
		}
		if p.Ny != 1 {
			return fmt.Errorf("params: planar runs require Ny = 1, got %d", p.Ny)
		}
		if p.NpY == 0 {
			p.NpY = 1
		}
		if p.NpY != 1 {
			return fmt.Errorf("params: planar runs require NpY = 1, got %d", p.NpY)
		}
	}
	if p.Nx <= 0 || p.Ny <= 0 || p.Nz <= 0 {
		return fmt.Errorf("params: non-positive grid size %dx%dx%d", p.Nx, p.Ny, p.Nz)
	}
	if p.NpX <= 0 {
		p.NpX = 1
	}
	if p.NpY <= 0 {
		p.NpY = 1
	}
	if p.NpZ <= 0 {
		p.NpZ = 1
	}
	if p.Nx%p.NpX != 0 || p.Ny%p.NpY != 0 || p.Nz%p.NpZ != 0 {
		return fmt.Errorf("params: grid %dx%dx%d not divisible by process grid %dx%dx%d",
			p.Nx, p.Ny, p.Nz, p.NpX, p.NpY, p.NpZ)
	}
	if p.TStp <= 0 {
		return fmt.Errorf("params: non-positive time step %g", p.TStp)
	}
	if p.LesModel < 0 || p.LesModel > 2 {
		return fmt.Errorf("params: unknown LES model %d", p.LesModel)
	}
	if p.LX <= 0 {
		p.LX = 1
	}
	if p.LY <= 0 {
		p.LY = 1
	}
	if p.LZ <= 0 {
		p.LZ = 1
	}
	if p.CnTolerance <= 0 {
		p.CnTolerance = 1e-5
	}
	if p.MgTolerance <= 0 {
		p.MgTolerance = 1e-6
	}
	if p.NThreads <= 0 {
		p.NThreads = runtime.NumCPU()
	}
	if p.ProblemType == RayleighBenard && (p.Ra <= 0 || p.Pr <= 0) {
		return fmt.Errorf("params: Rayleigh-Benard runs need positive Ra and Pr")
	}
	if p.ProblemType == LidDrivenCavity && p.Re <= 0 {
		return fmt.Errorf("params: hydro runs need positive Re")
	}
	return nil
}
