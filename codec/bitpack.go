package codec

import "fmt"

// bitpack8Codec is the fixed-ratio codec used by boolean/logical columns:
// every 8 source bytes (one logical byte per element, 0 or non-zero) pack
// into a single target byte. No example in the reference corpus ships a
// byte-to-bit packer with this exact source/target-rep contract, so this is
// written directly against bit shifts rather than borrowed from a library --
// see DESIGN.md for why no third-party codec was a fit here.
type bitpack8Codec struct{}

// NewBitpack8 returns the fixed-ratio 8:1 boolean packer.
func NewBitpack8() FixedRatioCodec {
	return bitpack8Codec{}
}

func (bitpack8Codec) SourceRepSize() int { return 8 }
func (bitpack8Codec) TargetRepSize() int { return 1 }

func (bitpack8Codec) MaxCompressedLen(srcLen int) int {
	return (srcLen + 7) / 8
}

func (bitpack8Codec) Compress(dst, src []byte) (int, error) {
	if len(src)%8 != 0 {
		return 0, fmt.Errorf("codec: bitpack8 compress: source length %d not a multiple of 8", len(src))
	}
	n := len(src) / 8
	if len(dst) < n {
		return 0, ErrDestTooSmall
	}
	for i := 0; i < n; i++ {
		var b byte
		base := i * 8
		for j := 0; j < 8; j++ {
			if src[base+j] != 0 {
				b |= 1 << uint(j)
			}
		}
		dst[i] = b
	}
	return n, nil
}

func (bitpack8Codec) Decompress(dst, src []byte) (int, error) {
	n := len(src) * 8
	if len(dst) < n {
		return 0, ErrDestTooSmall
	}
	for i, b := range src {
		base := i * 8
		for j := 0; j < 8; j++ {
			if b&(1<<uint(j)) != 0 {
				dst[base+j] = 1
			} else {
				dst[base+j] = 0
			}
		}
	}
	return n, nil
}
