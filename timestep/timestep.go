// Package timestep implements the pressure-projection time
// integrator: explicit Euler for advection and forcing, semi-implicit
// Crank-Nicolson for diffusion, and a multigrid pressure correction
// that projects the velocity to a divergence-free state.
package timestep

import (
	"fmt"
	"math"

	"github.com/roshansamuel/gpu-saras/field"
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/les"
	"github.com/roshansamuel/gpu-saras/params"
	"github.com/roshansamuel/gpu-saras/poisson"
	"github.com/roshansamuel/gpu-saras/tseries"
	"github.com/roshansamuel/gpu-saras/utils"
)

// EulerCN advances the velocity, pressure and optional temperature
// fields by one step. The scratch fields are owned members, so
// separate instances are independent and a step never leaks state
// into the next beyond the solution fields themselves.
type EulerCN struct {
	mesh     *grid.Grid
	tsWriter *tseries.Writer

	// SolTime is set by the driver before each step; Dt is the step
	// size given at construction.
	SolTime float64
	Dt      float64

	nu, kappa float64

	maxIterations int

	i2hx, i2hy, i2hz float64
	ihx2, ihy2, ihz2 float64

	nseRHS           *field.PlainVF
	tmpRHS           *field.PlainSF
	mgRHS            *field.PlainSF
	Pp               *field.PlainSF
	pressureGradient *field.PlainVF

	mgSolver *poisson.MG
	sgsLES   les.Model

	tempVx, tempVy, tempVz, tempT *utils.Array3
}

func NewEulerCN(mesh *grid.Grid, dt float64, tsIO *tseries.Writer, V *field.VField, P *field.SField) (*EulerCN, error) {
	p := mesh.Params
	ts := &EulerCN{
		mesh:     mesh,
		tsWriter: tsIO,
		Dt:       dt,

		nseRHS:           field.NewPlainVF(mesh),
		tmpRHS:           field.NewPlainSF(mesh),
		mgRHS:            field.NewPlainSF(mesh),
		Pp:               field.NewPlainSF(mesh),
		pressureGradient: field.NewPlainVF(mesh),

		mgSolver: poisson.NewMG(mesh, p),

		tempVx: field.NewArray(mesh),
		tempVy: field.NewArray(mesh),
		tempVz: field.NewArray(mesh),
		tempT:  field.NewArray(mesh),
	}
	ts.setCoefficients()
	ts.setDiffusivities()

	// This upper limit on iterations is an arbitrarily chosen
	// function of the sub-domain size. Using Nx*Ny*Nz itself can let
	// a diverging run burn core hours before anyone notices.
	n := mesh.NCore[0] * mesh.NCore[1] * mesh.NCore[2]
	ts.maxIterations = int(math.Ceil(math.Pow(math.Log(float64(n)), 3)))
	if p.MaxJacobiIters > 0 {
		ts.maxIterations = p.MaxJacobiIters
	}

	if p.LesModel > 0 {
		if mesh.Rank.ID == 0 {
			fmt.Println("LES switch is ON. Using eddy-viscosity sub-grid model")
		}
		ts.sgsLES = les.NewEddyViscosity(mesh, V)
	}
	return ts, nil
}

func (ts *EulerCN) setCoefficients() {
	g := ts.mesh
	ts.i2hx = 0.5 / g.DXi
	ts.i2hy = 0.5 / g.DEt
	ts.i2hz = 0.5 / g.DZt
	ts.ihx2 = 1.0 / (g.DXi * g.DXi)
	ts.ihy2 = 1.0 / (g.DEt * g.DEt)
	ts.ihz2 = 1.0 / (g.DZt * g.DZt)
}

// setDiffusivities derives the nondimensional diffusion constants
// from the physical groups of the run: 1/Re for hydro runs,
// sqrt(Pr/Ra) and 1/sqrt(Ra*Pr) for Rayleigh-Benard runs.
func (ts *EulerCN) setDiffusivities() {
	p := ts.mesh.Params
	switch p.ProblemType {
	case params.RayleighBenard:
		ts.nu = math.Sqrt(p.Pr / p.Ra)
		ts.kappa = 1.0 / math.Sqrt(p.Ra*p.Pr)
	default:
		ts.nu = 1.0 / p.Re
		ts.kappa = ts.nu
	}
	ts.tsWriter.MDiff = ts.nu
	ts.tsWriter.TDiff = ts.kappa
}

// TimeAdvance advances velocity and pressure by one step for
// hydrodynamics runs.
func (ts *EulerCN) TimeAdvance(V *field.VField, P *field.SField) error {
	p := ts.mesh.Params

	ts.nseRHS.Set(0)

	// Explicit half of the Crank-Nicolson diffusion term; the other
	// half sits on the left-hand side of the implicit solves.
	V.ComputeDiff(ts.nseRHS)
	ts.nseRHS.Scale(ts.nu / 2)

	V.ComputeNLin(V, ts.nseRHS)

	if V.Forcing != nil {
		V.Forcing.AddForcing(ts.nseRHS)
	}

	if p.LesModel > 0 && ts.SolTime > 5*p.TStp {
		ts.tsWriter.SubgridEnergy = ts.sgsLES.ComputeSG(ts.nseRHS, V)
	}

	ts.pressureGradient.Set(0)
	P.Gradient(ts.pressureGradient)
	ts.nseRHS.SubPlain(ts.pressureGradient)

	// Explicit Euler update to the predictor RHS
	ts.nseRHS.Scale(ts.Dt)
	ts.nseRHS.AddVField(V)

	ts.nseRHS.SyncData()

	if err := ts.solveVx(V); err != nil {
		return err
	}
	if !ts.mesh.Planar {
		if err := ts.solveVy(V); err != nil {
			return err
		}
	}
	if err := ts.solveVz(V); err != nil {
		return err
	}

	if err := ts.project(V, P); err != nil {
		return err
	}

	V.ImposeBCs()
	P.ImposeBCs()
	return nil
}

// TimeAdvanceScalar advances velocity, pressure and temperature for
// scalar runs.
func (ts *EulerCN) TimeAdvanceScalar(V *field.VField, P *field.SField, T *field.SField) error {
	p := ts.mesh.Params

	ts.nseRHS.Set(0)
	ts.tmpRHS.Set(0)

	V.ComputeDiff(ts.nseRHS)
	ts.nseRHS.Scale(ts.nu / 2)

	T.ComputeDiff(ts.tmpRHS)
	ts.tmpRHS.Scale(ts.kappa / 2)

	V.ComputeNLin(V, ts.nseRHS)
	T.ComputeNLin(V, ts.tmpRHS)

	if V.Forcing != nil {
		V.Forcing.AddForcing(ts.nseRHS)
	}
	if T.Forcing != nil {
		T.Forcing.AddForcing(ts.tmpRHS)
	}

	if p.LesModel > 0 && ts.SolTime > 5*p.TStp {
		// A momentum-only closure leaves the scalar passive; only
		// model 2 forwards the scalar RHS.
		var subgridKE float64
		switch p.LesModel {
		case 1:
			subgridKE = ts.sgsLES.ComputeSG(ts.nseRHS, V)
		case 2:
			subgridKE = ts.sgsLES.ComputeSGScalar(ts.nseRHS, ts.tmpRHS, V, T)
		}
		ts.tsWriter.SubgridEnergy = subgridKE
	}

	ts.pressureGradient.Set(0)
	P.Gradient(ts.pressureGradient)
	ts.nseRHS.SubPlain(ts.pressureGradient)

	ts.nseRHS.Scale(ts.Dt)
	ts.nseRHS.AddVField(V)

	ts.tmpRHS.Scale(ts.Dt)
	ts.tmpRHS.AddField(T)

	ts.nseRHS.SyncData()
	ts.tmpRHS.SyncData()

	if err := ts.solveVx(V); err != nil {
		return err
	}
	if !ts.mesh.Planar {
		if err := ts.solveVy(V); err != nil {
			return err
		}
	}
	if err := ts.solveVz(V); err != nil {
		return err
	}
	if err := ts.solveT(T); err != nil {
		return err
	}

	if err := ts.project(V, P); err != nil {
		return err
	}

	V.ImposeBCs()
	P.ImposeBCs()
	T.ImposeBCs()
	return nil
}

// project forms the pressure-Poisson RHS from the predictor
// divergence, solves for the correction and projects the velocity.
// With a zero step there is nothing to correct (and no divergence
// scale), so the fields pass through untouched.
func (ts *EulerCN) project(V *field.VField, P *field.SField) error {
	if ts.Dt == 0 {
		return nil
	}
	p := ts.mesh.Params

	V.Divergence(ts.mgRHS)
	ts.mgRHS.Scale(1.0 / ts.Dt)

	if p.TestPoisson {
		ts.mgRHS.Set(1.0)
	}

	if err := ts.mgSolver.MgSolve(ts.Pp, ts.mgRHS); err != nil {
		return err
	}

	ts.Pp.SyncData()

	if p.TestPoisson {
		// the correction becomes the whole pressure, ready for
		// comparison against the known solution
		P.Set(0)
	}

	P.AddPlain(ts.Pp)

	ts.Pp.Gradient(ts.pressureGradient)
	ts.pressureGradient.Scale(ts.Dt)
	V.SubPlain(ts.pressureGradient)

	return nil
}

func (ts *EulerCN) solveVx(V *field.VField) error {
	return ts.jacobiSolve(V.Vx.F, ts.nseRHS.Vx, ts.tempVx, ts.nu, V.ImposeVxBC, "Vx")
}

func (ts *EulerCN) solveVy(V *field.VField) error {
	return ts.jacobiSolve(V.Vy.F, ts.nseRHS.Vy, ts.tempVy, ts.nu, V.ImposeVyBC, "Vy")
}

func (ts *EulerCN) solveVz(V *field.VField) error {
	return ts.jacobiSolve(V.Vz.F, ts.nseRHS.Vz, ts.tempVz, ts.nu, V.ImposeVzBC, "Vz")
}

func (ts *EulerCN) solveT(T *field.SField) error {
	return ts.jacobiSolve(T.F.F, ts.tmpRHS.F, ts.tempT, ts.kappa, T.ImposeBCs, "T")
}

// jacobiSolve iterates the point-Jacobi relaxation of the implicit
// Helmholtz system f - (alpha*dt/2)*Laplacian(f) = rhs until the
// global residual maximum falls below the tolerance. Exceeding the
// iteration cap is a fatal convergence failure, reported once from
// rank 0 and propagated by every rank since the residual check is
// collective.
func (ts *EulerCN) jacobiSolve(f, rhs, temp *utils.Array3, alpha float64, impose func(), name string) error {
	var (
		g         = ts.mesh
		iterCount int
	)
	for {
		ts.jacobiSweep(f, rhs, temp, alpha)
		f.SetBox(g.Core, temp)

		impose()

		ts.jacobiResidual(f, rhs, temp, alpha)
		locMax := temp.MaxAbsBox(g.Core)
		gloMax := g.Rank.AllReduceMax(locMax)

		if gloMax < g.Params.CnTolerance {
			return nil
		}

		iterCount++
		if iterCount > ts.maxIterations {
			if g.Rank.ID == 0 {
				fmt.Printf("ERROR: Jacobi iterations for solution of %s not converging. Aborting\n", name)
			}
			return fmt.Errorf("timestep: jacobi solve for %s exceeded %d iterations", name, ts.maxIterations)
		}
	}
}

// jacobiSweep writes the sweep candidate into temp over the core.
func (ts *EulerCN) jacobiSweep(f, rhs, temp *utils.Array3, alpha float64) {
	var (
		g      = ts.mesh
		c      = g.Core
		d      = f.Data
		sx     = f.SX
		sy     = f.SY
		hdt    = ts.Dt * alpha / 2
		dta    = ts.Dt * alpha
		planar = g.Planar
	)
	utils.ParallelRange(c.Lo[0], c.Hi[0]+1, g.Params.NThreads, func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := f.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					var (
						S = ts.ihx2*g.Xix2[i]*(d[id+sx]+d[id-sx]) +
							ts.i2hx*g.Xixx[i]*(d[id+sx]-d[id-sx]) +
							ts.ihz2*g.Ztz2[k]*(d[id+1]+d[id-1]) +
							ts.i2hz*g.Ztzz[k]*(d[id+1]-d[id-1])
						diag = ts.ihx2*g.Xix2[i] + ts.ihz2*g.Ztz2[k]
					)
					if !planar {
						S += ts.ihy2*g.Ety2[j]*(d[id+sy]+d[id-sy]) +
							ts.i2hy*g.Etyy[j]*(d[id+sy]-d[id-sy])
						diag += ts.ihy2 * g.Ety2[j]
					}
					temp.Data[id] = (S*hdt + rhs.Data[id]) / (1 + dta*diag)
					id++
				}
			}
		}
	})
}

// jacobiResidual writes f - (alpha*dt/2)*Laplacian(f) - rhs into temp
// over the core.
func (ts *EulerCN) jacobiResidual(f, rhs, temp *utils.Array3, alpha float64) {
	var (
		g      = ts.mesh
		c      = g.Core
		d      = f.Data
		sx     = f.SX
		sy     = f.SY
		hdt    = ts.Dt * alpha / 2
		planar = g.Planar
	)
	utils.ParallelRange(c.Lo[0], c.Hi[0]+1, g.Params.NThreads, func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := f.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					L := ts.ihx2*g.Xix2[i]*(d[id+sx]-2*d[id]+d[id-sx]) +
						ts.i2hx*g.Xixx[i]*(d[id+sx]-d[id-sx]) +
						ts.ihz2*g.Ztz2[k]*(d[id+1]-2*d[id]+d[id-1]) +
						ts.i2hz*g.Ztzz[k]*(d[id+1]-d[id-1])
					if !planar {
						L += ts.ihy2*g.Ety2[j]*(d[id+sy]-2*d[id]+d[id-sy]) +
							ts.i2hy*g.Etyy[j]*(d[id+sy]-d[id-sy])
					}
					temp.Data[id] = d[id] - hdt*L - rhs.Data[id]
					id++
				}
			}
		}
	})
}
