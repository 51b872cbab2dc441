package utils

import "math"

// Array3 is a dense 3D array stored flat, with the z index varying
// fastest. All stencil kernels walk it in iX-iY-iZ nesting order, so
// the innermost loop is unit stride. The exported strides SX, SY let
// stencil code address neighbours as Data[id±SX] etc. without going
// through At.
type Array3 struct {
	NX, NY, NZ int
	SX, SY     int
	Data       []float64
}

func NewArray3(nx, ny, nz int) *Array3 {
	return &Array3{
		NX: nx, NY: ny, NZ: nz,
		SX:   ny * nz,
		SY:   nz,
		Data: make([]float64, nx*ny*nz),
	}
}

func (a *Array3) Idx(i, j, k int) int { return i*a.SX + j*a.SY + k }

func (a *Array3) At(i, j, k int) float64 { return a.Data[a.Idx(i, j, k)] }

func (a *Array3) Set(i, j, k int, v float64) { a.Data[a.Idx(i, j, k)] = v }

func (a *Array3) SameShape(b *Array3) bool {
	return a.NX == b.NX && a.NY == b.NY && a.NZ == b.NZ
}

func (a *Array3) Fill(v float64) {
	for i := range a.Data {
		a.Data[i] = v
	}
}

func (a *Array3) CopyFrom(b *Array3) {
	copy(a.Data, b.Data)
}

// Whole-array element-wise operations. These mirror the chained
// operator arithmetic used by the RHS assembly: the pads are included,
// which is harmless since pads are refreshed by sync before any
// stencil reads them.

func (a *Array3) Add(b *Array3) {
	for i, v := range b.Data {
		a.Data[i] += v
	}
}

func (a *Array3) Sub(b *Array3) {
	for i, v := range b.Data {
		a.Data[i] -= v
	}
}

func (a *Array3) Scale(k float64) {
	for i := range a.Data {
		a.Data[i] *= k
	}
}

// MultAdd performs a += k*b without allocating a temporary.
func (a *Array3) MultAdd(b *Array3, k float64) {
	for i, v := range b.Data {
		a.Data[i] += k * v
	}
}

// Box-restricted operations, used where a kernel writes only the core
// sub-box of an accumulator.

func (a *Array3) AddBox(b Box, src *Array3) {
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			for k := b.Lo[2]; k <= b.Hi[2]; k++ {
				a.Data[id] += src.Data[id]
				id++
			}
		}
	}
}

func (a *Array3) SetBox(b Box, src *Array3) {
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			for k := b.Lo[2]; k <= b.Hi[2]; k++ {
				a.Data[id] = src.Data[id]
				id++
			}
		}
	}
}

// SubMulBox performs a -= u*d element-wise over the box. It is the
// accumulation step of the convective term, where u is a velocity
// component and d a derivative of the advected field.
func (a *Array3) SubMulBox(b Box, u, d *Array3) {
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			for k := b.Lo[2]; k <= b.Hi[2]; k++ {
				a.Data[id] -= u.Data[id] * d.Data[id]
				id++
			}
		}
	}
}

func (a *Array3) MaxAbs() (m float64) {
	for _, v := range a.Data {
		if av := math.Abs(v); av > m {
			m = av
		}
	}
	return
}

func (a *Array3) MaxAbsBox(b Box) (m float64) {
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			for k := b.Lo[2]; k <= b.Hi[2]; k++ {
				if av := math.Abs(a.Data[id]); av > m {
					m = av
				}
				id++
			}
		}
	}
	return
}
