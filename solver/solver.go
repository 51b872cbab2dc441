// Package solver assembles a run from the input-parameter record:
// process grid, fields, boundary conditions, forcing, the time
// integrator, and the main time loop.
package solver

import (
	"fmt"

	"github.com/roshansamuel/gpu-saras/boundary"
	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/forcing"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/parallel"
	"github.com/roshansamuel/gpu-saras/params"
	"github.com/roshansamuel/gpu-saras/timestep"
	"github.com/roshansamuel/gpu-saras/tseries"
)

// Run validates the record, builds the communicator and executes the
// SPMD body on every rank.
func Run(p *params.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	comm, err := parallel.NewCommunicator(
		[3]int{p.NpX, p.NpY, p.NpZ},
		[3]bool{p.XPer, p.YPer, p.ZPer},
	)
	if err != nil {
		return err
	}
	return comm.Run(func(rk *parallel.Rank) error {
		return runRank(p, rk)
	})
}

func runRank(p *params.Parameters, rk *parallel.Rank) error {
	mesh, err := grid.NewGrid(p, rk)
	if err != nil {
		return err
	}

	var (
		scalar = p.ProblemType == params.RayleighBenard

		V = field.NewVField(mesh, "V")
		P = field.NewSField(mesh, "P")
		T *field.SField
	)
	if scalar {
		T = field.NewSField(mesh, "T")
	}

	initFields(mesh, V, T)
	attachBCs(mesh, V, P, T)

	if scalar {
		V.Forcing = forcing.NewBuoyancy(mesh, T)
		T.Forcing = forcing.ZeroSForce{}
	} else {
		V.Forcing = forcing.ZeroVForce{}
	}

	tsIO, err := tseries.NewWriter(mesh, V)
	if err != nil {
		return err
	}
	defer tsIO.Close()

	ts, err := timestep.NewEulerCN(mesh, p.TStp, tsIO, V, P)
	if err != nil {
		return err
	}

	// settle pads and wall slices before the first step
	V.ImposeBCs()
	P.ImposeBCs()
	if scalar {
		T.ImposeBCs()
	}

	if rk.ID == 0 {
		p.Print()
	}
	tsIO.WriteHeader(scalar)

	var (
		t         float64
		nextWrite float64
	)
	for t < p.FinalTime-1e-12 {
		ts.SolTime = t
		if scalar {
			err = ts.TimeAdvanceScalar(V, P, T)
		} else {
			err = ts.TimeAdvance(V, P)
		}
		if err != nil {
			return err
		}
		t += p.TStp

		if t >= nextWrite {
			if scalar {
				tsIO.WriteDataScalar(t, T)
			} else {
				tsIO.WriteData(t)
			}
			nextWrite += p.TimeSeriesInterval
		}

		if p.TestPoisson {
			// the Poisson test performs a single time advance
			break
		}
	}
	if rk.ID == 0 {
		fmt.Printf("Simulation completed at Time = %9.5f\n", t)
	}
	return nil
}

// initFields sets the initial condition: quiescent velocity for all
// problems, and the linear conduction profile for the temperature of
// a Rayleigh-Benard run.
func initFields(mesh *grid.Grid, V *field.VField, T *field.SField) {
	if T == nil {
		return
	}
	full := mesh.Full
	for i := full.Lo[0]; i <= full.Hi[0]; i++ {
		for j := full.Lo[1]; j <= full.Hi[1]; j++ {
			for k := full.Lo[2]; k <= full.Hi[2]; k++ {
				T.F.F.Set(i, j, k, 1.0-mesh.ZC[k]/mesh.Params.LZ)
			}
		}
	}
}

// attachBCs wires the wall appliers onto the physical faces of the
// fields. Inter-rank faces and periodic axes carry none.
func attachBCs(mesh *grid.Grid, V *field.VField, P *field.SField, T *field.SField) {
	p := mesh.Params
	for face := 0; face < parallel.NumFaces; face++ {
		if !V.Vx.HasWall[face] || !mesh.PhysicalWall(face) {
			continue
		}

		// no-slip walls; the lid of the cavity drives Vx on top
		vxWall := 0.0
		if p.ProblemType == params.LidDrivenCavity && face == parallel.Top {
			vxWall = 1.0
		}
		V.Vx.BC[face] = boundary.NewDirichlet(V.Vx, face, vxWall)
		V.Vy.BC[face] = boundary.NewDirichlet(V.Vy, face, 0)
		V.Vz.BC[face] = boundary.NewDirichlet(V.Vz, face, 0)

		P.F.BC[face] = boundary.NewNeumann(mesh, P.F, face, 0)

		if T != nil {
			switch face {
			case parallel.Bottom:
				T.F.BC[face] = boundary.NewDirichlet(T.F, face, 1.0)
			case parallel.Top:
				T.F.BC[face] = boundary.NewDirichlet(T.F, face, 0.0)
			default:
				// adiabatic side walls
				T.F.BC[face] = boundary.NewNeumann(mesh, T.F, face, 0)
			}
		}
	}
}
