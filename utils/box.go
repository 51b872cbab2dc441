package utils

// Box is an inclusive 3D index box. The core of a sub-domain, its six
// wall slices and the halo send/receive slabs are all Boxes over the
// same full-array index space.
type Box struct {
	Lo, Hi [3]int
}

func NewBox(lo, hi [3]int) Box { return Box{Lo: lo, Hi: hi} }

// Size returns the extent along one axis. A degenerate (one cell
// thick) wall slice has Size 1 along its normal axis.
func (b Box) Size(axis int) int { return b.Hi[axis] - b.Lo[axis] + 1 }

func (b Box) NumCells() int {
	n := 1
	for ax := 0; ax < 3; ax++ {
		if b.Hi[ax] < b.Lo[ax] {
			return 0
		}
		n *= b.Size(ax)
	}
	return n
}

func (b Box) Contains(i, j, k int) bool {
	return i >= b.Lo[0] && i <= b.Hi[0] &&
		j >= b.Lo[1] && j <= b.Hi[1] &&
		k >= b.Lo[2] && k <= b.Hi[2]
}

// Shrink returns the box with n layers peeled off every face.
func (b Box) Shrink(n int) Box {
	for ax := 0; ax < 3; ax++ {
		b.Lo[ax] += n
		b.Hi[ax] -= n
	}
	return b
}
