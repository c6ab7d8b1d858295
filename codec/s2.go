package codec

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// s2Codec is a third variable-ratio codec: snappy-wire-compatible but with a
// better compression ratio, per klauspost/compress's own package docs. It
// has no frame overhead, so it slots into the block-streamer's one-shot
// compress/decompress contract directly.
type s2Codec struct{}

// NewS2 returns an S2 codec. S2 has no meaningful level knob at the block
// API used here (levels are exposed on the streaming writer only), so it is
// always used at its default setting.
func NewS2() Codec {
	return s2Codec{}
}

func (s2Codec) Compress(dst, src []byte) (int, error) {
	if len(dst) < s2.MaxEncodedLen(len(src)) {
		return 0, ErrDestTooSmall
	}
	out := s2.Encode(dst, src)
	if len(out) > len(dst) {
		return 0, ErrDestTooSmall
	}
	return len(out), nil
}

func (s2Codec) Decompress(dst, src []byte) (int, error) {
	out, err := s2.Decode(dst, src)
	if err != nil {
		return 0, fmt.Errorf("codec: s2 decompress: %w", err)
	}
	if len(out) > len(dst) {
		return 0, ErrDestTooSmall
	}
	return len(out), nil
}

func (s2Codec) MaxCompressedLen(srcLen int) int {
	return s2.MaxEncodedLen(srcLen)
}
