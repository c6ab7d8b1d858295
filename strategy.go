package colblock

import "github.com/bsm/colblock/codec"

// Strategy decides, for one block of source bytes, which algorithm (if any)
// to apply. CompressBlock returns the bytes to write to disk and the
// algorithm id to record in the block index; an id of codec.None signals
// that dst is not meaningful and the caller must write src itself (the
// block is stored verbatim, whether because the strategy's own selector
// picked "uncompressed" for this block index, or because compression
// expanded the data and the strategy fell back per the format's
// fallback-on-expansion rule).
type Strategy interface {
	CompressBlock(blockIndex int, src []byte) (dst []byte, algo codec.ID, err error)
}

// selected implements the deterministic per-block selector every mixing
// strategy uses: over any 100 consecutive block indices, exactly mix of
// them satisfy selected, spread as evenly as a Bresenham line, never
// clustered at the start or end of the run. It depends only on the block
// index, so a reader never needs to reconstruct it: the per-block algorithm
// id recorded in the block index is authoritative on read.
func selected(blockIndex, mix int) bool {
	if mix <= 0 {
		return false
	}
	if mix >= 100 {
		return true
	}
	return (blockIndex*mix)%100 < mix
}

// Single always applies one codec at a fixed level, falling back to
// verbatim storage when compression does not shrink the block (the
// fallback-on-expansion guard every strategy is built on top of).
type Single struct {
	algo codec.ID
	c    codec.Codec
}

// NewSingle returns a Strategy that always applies c, tagging compressed
// blocks with algo in the block index.
func NewSingle(algo codec.ID, c codec.Codec) *Single {
	return &Single{algo: algo, c: c}
}

func (s *Single) CompressBlock(_ int, src []byte) ([]byte, codec.ID, error) {
	return s.compress(src)
}

func (s *Single) compress(src []byte) ([]byte, codec.ID, error) {
	dst := fetchScratch(s.c.MaxCompressedLen(len(src)))
	n, err := s.c.Compress(dst, src)
	if err != nil || n >= len(src) {
		releaseScratch(dst)
		return nil, codec.None, nil
	}
	return dst[:n], s.algo, nil
}

// LinearMix probabilistically emits uncompressed or algoA per block,
// interpolating between "no compression" (mix=0) and "always algoA"
// (mix=100).
type LinearMix struct {
	algoA *Single
	mix   int
}

// NewLinearMix returns a LinearMix strategy applying algoA to mix percent of
// blocks, selected deterministically by block index.
func NewLinearMix(algoA *Single, mix int) *LinearMix {
	return &LinearMix{algoA: algoA, mix: mix}
}

func (m *LinearMix) CompressBlock(blockIndex int, src []byte) ([]byte, codec.ID, error) {
	if !selected(blockIndex, m.mix) {
		return nil, codec.None, nil
	}
	return m.algoA.compress(src)
}

// CompositeMix probabilistically emits algoA or algoB per block,
// interpolating between "always algoA" (mix=0) and "always algoB" (mix=100).
// Unlike LinearMix it never stores a block verbatim by selector choice
// (though the fallback-on-expansion guard may still do so for either
// branch).
type CompositeMix struct {
	algoA, algoB *Single
	mix          int
}

// NewCompositeMix returns a CompositeMix strategy applying algoB to mix
// percent of blocks and algoA to the rest.
func NewCompositeMix(algoA, algoB *Single, mix int) *CompositeMix {
	return &CompositeMix{algoA: algoA, algoB: algoB, mix: mix}
}

func (m *CompositeMix) CompressBlock(blockIndex int, src []byte) ([]byte, codec.ID, error) {
	if selected(blockIndex, m.mix) {
		return m.algoB.compress(src)
	}
	return m.algoA.compress(src)
}
