package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec is the high-ratio codec in the variable-ratio family. Encoders
// and decoders are pooled the same way ajitpratap0/nebula's compression
// package pools them: zstd.Encoder/Decoder carry non-trivial setup cost and
// are safe to reuse across blocks once Reset.
type zstdCodec struct {
	level   zstd.EncoderLevel
	encPool sync.Pool
	decPool sync.Pool
}

// NewZstd returns a Zstd codec pinned at a 0-100 compression level.
func NewZstd(level int) Codec {
	lvl := mapZstdLevel(level)
	c := &zstdCodec{level: lvl}
	c.encPool.New = func() interface{} {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(lvl))
		if err != nil {
			panic(err) // only fails on invalid static options
		}
		return enc
	}
	c.decPool.New = func() interface{} {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}
		return dec
	}
	return c
}

func mapZstdLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedFastest
	case level <= 33:
		return zstd.SpeedDefault
	case level <= 66:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func (c *zstdCodec) Compress(dst, src []byte) (int, error) {
	if len(dst) < c.MaxCompressedLen(len(src)) {
		return 0, ErrDestTooSmall
	}
	enc := c.encPool.Get().(*zstd.Encoder)
	defer c.encPool.Put(enc)

	out := enc.EncodeAll(src, dst[:0])
	if len(out) > len(dst) {
		return 0, ErrDestTooSmall
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (c *zstdCodec) Decompress(dst, src []byte) (int, error) {
	dec := c.decPool.Get().(*zstd.Decoder)
	defer c.decPool.Put(dec)

	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, fmt.Errorf("codec: zstd decompress: %w", err)
	}
	if len(out) > len(dst) {
		return 0, ErrDestTooSmall
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

func (c *zstdCodec) MaxCompressedLen(srcLen int) int {
	// zstd frame overhead is small and fixed; pad generously since we fall
	// back to storing the block uncompressed whenever compression does not
	// pay off, so an oversized bound here only costs scratch memory, never
	// correctness.
	return srcLen + srcLen/2 + 256
}
