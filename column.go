package colblock

import "github.com/bsm/colblock/codec"

// Per-type block sizes chosen so an uncompressed block lands in the
// few-tens-of-KiB range. These mirror the BLOCKSIZE_REAL/BLOCKSIZE_INT
// constants of the format this column layout descends from.
const (
	blockSizeElementsDouble = 4096 // 4096 * 8B  = 32KiB
	blockSizeElementsInt32  = 8192 // 8192 * 4B  = 32KiB
	blockSizeElementsBool   = 65536
)

// strategyForLevel implements the facade's compression-level -> strategy
// mapping. level is expected in [0,100]; it is not clamped here or by the
// facades.
func strategyForLevel(level int, fastAlgo, highRatioAlgo codec.ID) Strategy {
	switch {
	case level == 0:
		return nil
	case level <= 50:
		lvl := 2 * level
		return NewLinearMix(NewSingle(fastAlgo, newLeveled(fastAlgo, lvl)), lvl)
	default:
		a := NewSingle(fastAlgo, newLeveled(fastAlgo, 100))
		b := NewSingle(highRatioAlgo, newLeveled(highRatioAlgo, 20))
		return NewCompositeMix(a, b, 2*(level-50))
	}
}

func newLeveled(algo codec.ID, level int) codec.Codec {
	switch algo {
	case codec.LZ4:
		return codec.NewLZ4(level)
	case codec.Zstd:
		return codec.NewZstd(level)
	default:
		return codec.NewS2()
	}
}

// Int32Column is the facade for 4-byte integer columns.
type Int32Column struct {
	Level int // 0-100
}

func (Int32Column) ElementSize() int       { return 4 }
func (Int32Column) BlockSizeElements() int { return blockSizeElementsInt32 }
func (c Int32Column) strategy() Strategy   { return strategyForLevel(c.Level, codec.LZ4, codec.Zstd) }

// Write encodes a column of int32 values, provided as raw little-endian
// bytes (len(src) == 4*N), onto sink.
func (c Int32Column) Write(obs Observability, sink Sink, src []byte, annotation string) (int64, int, error) {
	return WriteColumn(obs, sink, src, c.ElementSize(), c.BlockSizeElements(), c.strategy(), annotation)
}

// Read decodes [startRow, startRow+length) of an int32 column into out.
func (c Int32Column) Read(obs Observability, src Source, blockPos int64, startRow, length, size int, out []byte) error {
	return ReadColumn(obs, src, blockPos, startRow, length, size, c.ElementSize(), out)
}

// DoubleColumn is the facade for 8-byte float64/int64 columns.
type DoubleColumn struct {
	Level int // 0-100
}

func (DoubleColumn) ElementSize() int       { return 8 }
func (DoubleColumn) BlockSizeElements() int { return blockSizeElementsDouble }
func (c DoubleColumn) strategy() Strategy   { return strategyForLevel(c.Level, codec.LZ4, codec.Zstd) }

// Write encodes a column of float64/int64 values, provided as raw
// little-endian bytes (len(src) == 8*N), onto sink.
func (c DoubleColumn) Write(obs Observability, sink Sink, src []byte, annotation string) (int64, int, error) {
	return WriteColumn(obs, sink, src, c.ElementSize(), c.BlockSizeElements(), c.strategy(), annotation)
}

// Read decodes [startRow, startRow+length) of a double column into out.
func (c DoubleColumn) Read(obs Observability, src Source, blockPos int64, startRow, length, size int, out []byte) error {
	return ReadColumn(obs, src, blockPos, startRow, length, size, c.ElementSize(), out)
}

// BoolColumn is the facade for 1-byte logical/boolean columns. Unlike the
// numeric facades it has no Level: a logical column always takes the
// fixed-ratio path through codec.Bitpack8, since an 8:1 deterministic pack
// beats any general-purpose variable-ratio codec on data this uniform and
// permits offset-based random access without a block index.
type BoolColumn struct{}

func (BoolColumn) ElementSize() int       { return 1 }
func (BoolColumn) BlockSizeElements() int { return blockSizeElementsBool }

// Write encodes a column of boolean values (one byte each, 0 or non-zero)
// onto sink using the fixed-ratio bit-packer.
func (c BoolColumn) Write(obs Observability, sink Sink, src []byte, annotation string) (int64, int, error) {
	obs = obs.norm()
	strategy := NewSingle(codec.Bitpack8, mustBitpack8(obs.Registry))
	return WriteColumn(obs, sink, src, c.ElementSize(), c.BlockSizeElements(), strategy, annotation)
}

// Read decodes [startRow, startRow+length) of a bool column into out.
func (c BoolColumn) Read(obs Observability, src Source, blockPos int64, startRow, length, size int, out []byte) error {
	return ReadColumn(obs, src, blockPos, startRow, length, size, c.ElementSize(), out)
}

func mustBitpack8(reg *codec.Registry) codec.Codec {
	c, ok := reg.Get(codec.Bitpack8)
	if !ok {
		// The default registry always carries Bitpack8; a caller-supplied
		// registry that omits it is a configuration error worth failing
		// loudly on, not silently falling back from.
		panic("colblock: registry has no Bitpack8 codec registered")
	}
	return c
}
