package codec

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec is the fast, low-ratio codec in the variable-ratio family. It
// compresses a single block at a time using lz4's raw block format (no
// frame header), matching the one-block-in, one-block-out shape the
// block-streamer needs; there is no streaming state to carry across
// blocks.
type lz4Codec struct {
	level lz4.CompressionLevel
}

// NewLZ4 returns an LZ4 codec pinned at a 0-100 compression level, the same
// scale the column facades expose to callers. 0 maps to lz4's fastest mode,
// 100 to its highest-ratio mode.
func NewLZ4(level int) Codec {
	return &lz4Codec{level: mapLZ4Level(level)}
}

func mapLZ4Level(level int) lz4.CompressionLevel {
	switch {
	case level <= 0:
		return lz4.Fast
	case level >= 100:
		return lz4.Level9
	default:
		// lz4 exposes levels 1-9; spread our 0-100 input across them.
		return lz4.CompressionLevel(1 + (level * 8 / 100))
	}
}

func (c *lz4Codec) Compress(dst, src []byte) (int, error) {
	if len(dst) < c.MaxCompressedLen(len(src)) {
		return 0, ErrDestTooSmall
	}
	var comp lz4.CompressorHC
	comp.Level = c.level
	n, err := comp.CompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("codec: lz4 compress: %w", err)
	}
	if n == 0 && len(src) > 0 {
		// lz4 signals "incompressible" by writing nothing; the caller's
		// fallback-on-expansion policy should store the block verbatim.
		return 0, fmt.Errorf("codec: lz4: block did not compress")
	}
	return n, nil
}

func (c *lz4Codec) Decompress(dst, src []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("codec: lz4 decompress: %w", err)
	}
	return n, nil
}

func (c *lz4Codec) MaxCompressedLen(srcLen int) int {
	return lz4.CompressBlockBound(srcLen)
}
