package field

import (
	"github.com/roshansamuel/gpu-saras/grid"
	"github.com/roshansamuel/gpu-saras/utils"
)

// Derivative computes first and second derivatives of one array in
// the computational coordinates, mapped to physical space through the
// metric terms of the grid. The second derivative keeps the split
// form
//
//	xix2*(f+ - 2f + f-)*ihx2 + xixx*(f+ - f-)*i2hx
//
// so that uniform grids, where xixx = 0, recover the canonical central
// formulas. All kernels write the core box only and are threaded over
// the outermost index.
type Derivative struct {
	g *grid.Grid
	F *utils.Array3

	i2hx, i2hy, i2hz float64
	ihx2, ihy2, ihz2 float64
}

func NewDerivative(g *grid.Grid, F *utils.Array3) *Derivative {
	return &Derivative{
		g: g, F: F,
		i2hx: 0.5 / g.DXi,
		i2hy: 0.5 / g.DEt,
		i2hz: 0.5 / g.DZt,
		ihx2: 1.0 / (g.DXi * g.DXi),
		ihy2: 1.0 / (g.DEt * g.DEt),
		ihz2: 1.0 / (g.DZt * g.DZt),
	}
}

func (d *Derivative) forCore(fn func(iLo, iHi int)) {
	c := d.g.Core
	utils.ParallelRange(c.Lo[0], c.Hi[0]+1, d.g.Params.NThreads, fn)
}

// Deriv1X writes df/dx over the core.
func (d *Derivative) Deriv1X(out *utils.Array3) {
	var (
		c  = d.g.Core
		f  = d.F.Data
		sx = d.F.SX
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			fac := d.i2hx * d.g.XiX[i]
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					out.Data[id] = fac * (f[id+sx] - f[id-sx])
					id++
				}
			}
		}
	})
}

// Deriv1Y writes df/dy over the core; never called in planar mode.
func (d *Derivative) Deriv1Y(out *utils.Array3) {
	var (
		c  = d.g.Core
		f  = d.F.Data
		sy = d.F.SY
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				fac := d.i2hy * d.g.EtY[j]
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					out.Data[id] = fac * (f[id+sy] - f[id-sy])
					id++
				}
			}
		}
	})
}

// Deriv1Z writes df/dz over the core.
func (d *Derivative) Deriv1Z(out *utils.Array3) {
	var (
		c = d.g.Core
		f = d.F.Data
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					out.Data[id] = d.i2hz * d.g.ZtZ[k] * (f[id+1] - f[id-1])
					id++
				}
			}
		}
	})
}

// Deriv2XX writes d2f/dx2 over the core.
func (d *Derivative) Deriv2XX(out *utils.Array3) {
	var (
		c  = d.g.Core
		f  = d.F.Data
		sx = d.F.SX
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			var (
				f2 = d.ihx2 * d.g.Xix2[i]
				f1 = d.i2hx * d.g.Xixx[i]
			)
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					out.Data[id] = f2*(f[id+sx]-2*f[id]+f[id-sx]) + f1*(f[id+sx]-f[id-sx])
					id++
				}
			}
		}
	})
}

// Deriv2YY writes d2f/dy2 over the core; never called in planar mode.
func (d *Derivative) Deriv2YY(out *utils.Array3) {
	var (
		c  = d.g.Core
		f  = d.F.Data
		sy = d.F.SY
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				var (
					f2 = d.ihy2 * d.g.Ety2[j]
					f1 = d.i2hy * d.g.Etyy[j]
				)
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					out.Data[id] = f2*(f[id+sy]-2*f[id]+f[id-sy]) + f1*(f[id+sy]-f[id-sy])
					id++
				}
			}
		}
	})
}

// Deriv2ZZ writes d2f/dz2 over the core.
func (d *Derivative) Deriv2ZZ(out *utils.Array3) {
	var (
		c = d.g.Core
		f = d.F.Data
	)
	d.forCore(func(iLo, iHi int) {
		for i := iLo; i < iHi; i++ {
			for j := c.Lo[1]; j <= c.Hi[1]; j++ {
				id := d.F.Idx(i, j, c.Lo[2])
				for k := c.Lo[2]; k <= c.Hi[2]; k++ {
					var (
						f2 = d.ihz2 * d.g.Ztz2[k]
						f1 = d.i2hz * d.g.Ztzz[k]
					)
					out.Data[id] = f2*(f[id+1]-2*f[id]+f[id-1]) + f1*(f[id+1]-f[id-1])
					id++
				}
			}
		}
	})
}
