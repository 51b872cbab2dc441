package parallel

import (
	"github.com/roshansamuel/gpu-saras/utils"
)

// Halo performs ghost-layer exchange for one array. The send and
// receive slabs for each face are computed once at construction, the
// way the MPI subarray types of a domain-decomposed solver are set up
// once and reused for every exchange.
//
// Along each active axis the outermost pad-wide interior layers are
// sent, and the opposite pads received. Slabs span the full extent of
// the transverse axes; corner pads are therefore filled with data that
// may lag one sync, which is immaterial since every stencil in the
// solver is star-shaped.
type Halo struct {
	rank   *Rank
	send   [NumFaces]utils.Box
	recv   [NumFaces]utils.Box
	active [NumFaces]bool
}

// NewHalo builds the exchange slabs for an array of the given full
// extents, whose core ends at coreUb1 (exclusive) and whose pad widths
// are pads. It is constructed once per array.
func NewHalo(rank *Rank, full, coreUb1, pads [3]int) *Halo {
	h := &Halo{rank: rank}
	for f := 0; f < NumFaces; f++ {
		var (
			ax = FaceAxis(f)
			p  = pads[ax]
		)
		if p == 0 || rank.Neighbors[f] < 0 {
			continue
		}
		h.active[f] = true

		lo := [3]int{0, 0, 0}
		hi := [3]int{full[0] - 1, full[1] - 1, full[2] - 1}
		sendBox := utils.Box{Lo: lo, Hi: hi}
		recvBox := utils.Box{Lo: lo, Hi: hi}

		coreLo := pads[ax]
		coreHi := coreUb1[ax] - 1
		if f%2 == 0 { // low-side face
			sendBox.Lo[ax], sendBox.Hi[ax] = coreLo, coreLo+p-1
			recvBox.Lo[ax], recvBox.Hi[ax] = 0, p-1
		} else { // high-side face
			sendBox.Lo[ax], sendBox.Hi[ax] = coreHi-p+1, coreHi
			recvBox.Lo[ax], recvBox.Hi[ax] = coreHi+1, coreHi+p
		}
		h.send[f] = sendBox
		h.recv[f] = recvBox
	}
	return h
}

// SyncData exchanges the pad layers of a with all neighbours. All
// sends are posted before any receive is drained, so the exchange is
// deadlock-free on the torus; after it returns, every pad on a
// non-physical face holds the owning neighbour's core layer.
func (h *Halo) SyncData(a *utils.Array3) {
	for f := 0; f < NumFaces; f++ {
		if !h.active[f] {
			continue
		}
		nb := h.rank.Neighbors[f]
		h.rank.Comm.inbox[nb][Opposite(f)] <- pack(a, h.send[f])
	}
	for f := 0; f < NumFaces; f++ {
		if !h.active[f] {
			continue
		}
		buf := <-h.rank.Comm.inbox[h.rank.ID][f]
		unpack(a, h.recv[f], buf)
	}
}

func pack(a *utils.Array3, b utils.Box) []float64 {
	buf := make([]float64, 0, b.NumCells())
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			buf = append(buf, a.Data[id:id+b.Size(2)]...)
		}
	}
	return buf
}

func unpack(a *utils.Array3, b utils.Box, buf []float64) {
	n := 0
	for i := b.Lo[0]; i <= b.Hi[0]; i++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			id := a.Idx(i, j, b.Lo[2])
			copy(a.Data[id:id+b.Size(2)], buf[n:n+b.Size(2)])
			n += b.Size(2)
		}
	}
}
