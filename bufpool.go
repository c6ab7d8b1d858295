package colblock

import "sync"

// scratchPool hands out byte slices sized to at least the requested
// capacity and accepts them back for reuse. It is the same fetchBuffer /
// releaseBuffer pattern sntable.Reader uses for its block buffers, lifted to
// package scope so both the encoder and decoder can share pooled scratch
// memory across calls without per-block heap allocation.
var scratchPool sync.Pool

func fetchScratch(n int) []byte {
	if v := scratchPool.Get(); v != nil {
		if p := v.([]byte); n <= cap(p) {
			return p[:n]
		}
	}
	return make([]byte, n)
}

func releaseScratch(p []byte) {
	if cap(p) != 0 {
		scratchPool.Put(p) //nolint:staticcheck // intentional: pool slices by capacity, not value
	}
}
