package utils

import "sync"

// Partition splits an index range into Degree buckets with a maximum
// imbalance of one item. The threaded stencil sweeps partition their
// outermost grid index with it.
type Partition struct {
	MaxIndex int
	Degree   int
	Buckets  [][2]int // begin and one-past-end index of each bucket
}

func NewPartition(degree, maxIndex int) (p *Partition) {
	p = &Partition{
		MaxIndex: maxIndex,
		Degree:   degree,
		Buckets:  make([][2]int, degree),
	}
	for n := 0; n < degree; n++ {
		p.Buckets[n] = p.split1D(n)
	}
	return
}

func (p *Partition) Range(n int) (lo, hi int) {
	lo, hi = p.Buckets[n][0], p.Buckets[n][1]
	return
}

func (p *Partition) split1D(threadNum int) (bucket [2]int) {
	var (
		nPart            = p.MaxIndex / p.Degree
		startAdd, endAdd int
		remainder        = p.MaxIndex % p.Degree
	)
	if remainder != 0 { // spread the remainder over the first buckets evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*nPart + startAdd
	bucket[1] = bucket[0] + nPart + endAdd
	return
}

// ParallelRange runs fn over sub-ranges of [lo, hi) on nw goroutines
// and waits for all of them. Small ranges run inline to avoid the
// spawning overhead.
func ParallelRange(lo, hi, nw int, fn func(lo, hi int)) {
	if nw <= 1 || hi-lo <= nw {
		fn(lo, hi)
		return
	}
	var (
		p  = NewPartition(nw, hi-lo)
		wg sync.WaitGroup
	)
	for n := 0; n < nw; n++ {
		b0, b1 := p.Range(n)
		if b0 >= b1 {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(lo+b0, lo+b1)
	}
	wg.Wait()
}
