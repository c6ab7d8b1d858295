package colblock

import (
	"encoding/binary"
	"fmt"

	"github.com/bsm/colblock/codec"
)

// headerSize is the fixed 8-byte column header: two little-endian uint32s.
const headerSize = 8

// blockIndexEntrySize is the fixed 10-byte block index entry: an 8-byte
// little-endian absolute file offset followed by a 2-byte little-endian
// algorithm id.
const blockIndexEntrySize = 10

// formatMarker is the constant colblock writes into header[0] for
// variable-ratio columns. The source format leaves this field's meaning
// open (an opaque non-zero flag vs. a per-algorithm size-bound encoding);
// colblock picks interpretation (b) from the format's open questions:
// always write the same constant and ignore it on read, so header[0] is
// purely a three-way discriminant (0/0 uncompressed, 0/non-zero
// fixed-ratio, non-zero/blockSize variable-ratio).
const formatMarker uint32 = 1

func putHeader(buf []byte, h0, h1 uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], h0)
	binary.LittleEndian.PutUint32(buf[4:8], h1)
}

func putBlockIndexEntry(buf []byte, offset int64, algo codec.ID) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(offset))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(algo))
}

// WriteColumn encodes N elements of elementSize bytes each (src must have
// length N*elementSize) onto sink, which must already be positioned at the
// column's start offset. strategy chooses per-block compression; a nil
// strategy selects the uncompressed path (header (0,0), raw bytes). A
// strategy built from a single FixedRatioCodec selects the fixed-ratio
// path; any other strategy selects the variable-ratio path with its own
// block index.
//
// If annotation is non-empty it is written immediately after the last
// payload; WriteColumn returns the annotation's absolute offset and length
// so the caller's enclosing container can record them. colblock does not
// persist column metadata itself.
//
// Any write failure is returned unwrapped-but-tagged with ErrShortIO; the
// column is then considered corrupt and the caller owns cleanup. There is
// no partial rollback.
func WriteColumn(obs Observability, sink Sink, src []byte, elementSize, blockSizeElements int, strategy Strategy, annotation string) (annotationOffset int64, annotationLen int, err error) {
	obs = obs.norm()
	if elementSize <= 0 {
		return 0, 0, fmt.Errorf("colblock: write: elementSize must be positive: %w", ErrUsage)
	}
	if len(src)%elementSize != 0 {
		return 0, 0, fmt.Errorf("colblock: write: src length %d not a multiple of elementSize %d: %w", len(src), elementSize, ErrUsage)
	}
	n := len(src) / elementSize

	start, err := sink.Tell()
	if err != nil {
		return 0, 0, fmt.Errorf("colblock: write: tell: %w", err)
	}

	hdr := make([]byte, headerSize)
	if _, err := sink.Write(hdr); err != nil {
		return 0, 0, fmt.Errorf("colblock: write: header placeholder: %w", ErrShortIO)
	}

	var h0, h1 uint32
	switch {
	case strategy == nil:
		h0, h1 = 0, 0
		if err := writeUncompressed(sink, src); err != nil {
			return 0, 0, err
		}
	default:
		if single, ok := strategy.(*Single); ok {
			if fr, ok := single.c.(codec.FixedRatioCodec); ok {
				h0, h1 = 0, uint32(single.algo)
				if err := writeFixedRatio(obs, sink, src, fr, single.algo); err != nil {
					return 0, 0, err
				}
				break
			}
		}
		h0, h1 = formatMarker, uint32(blockSizeElements)
		if err := writeVariableRatio(obs, sink, src, n, elementSize, blockSizeElements, strategy); err != nil {
			return 0, 0, err
		}
	}

	postPayload, err := sink.Tell()
	if err != nil {
		return 0, 0, fmt.Errorf("colblock: write: tell: %w", err)
	}

	if _, err := sink.Seek(start, 0); err != nil {
		return 0, 0, fmt.Errorf("colblock: write: seek back to header: %w", err)
	}
	putHeader(hdr, h0, h1)
	if _, err := sink.Write(hdr); err != nil {
		return 0, 0, fmt.Errorf("colblock: write: patch header: %w", ErrShortIO)
	}
	if _, err := sink.Seek(postPayload, 0); err != nil {
		return 0, 0, fmt.Errorf("colblock: write: seek to end of payload: %w", err)
	}

	if annotation == "" {
		return 0, 0, nil
	}
	annotationOffset = postPayload
	if _, err := sink.Write([]byte(annotation)); err != nil {
		return 0, 0, fmt.Errorf("colblock: write: annotation: %w", ErrShortIO)
	}
	return annotationOffset, len(annotation), nil
}

func writeUncompressed(sink Sink, src []byte) error {
	if _, err := sink.Write(src); err != nil {
		return fmt.Errorf("colblock: write: uncompressed payload: %w", ErrShortIO)
	}
	return nil
}

// writeFixedRatio processes the input in source-rep-sized units,
// compressing each to exactly targetRepSize bytes.
// The final unit is zero-padded up to sourceRepSize before compression; the
// reader clips output back to N elements using size/startRow/length, never
// the padding.
func writeFixedRatio(obs Observability, sink Sink, src []byte, fr codec.FixedRatioCodec, algo codec.ID) error {
	srcRep := fr.SourceRepSize()
	tgtRep := fr.TargetRepSize()

	in := fetchScratch(srcRep)
	defer releaseScratch(in)
	out := fetchScratch(tgtRep)
	defer releaseScratch(out)

	for off := 0; off < len(src); off += srcRep {
		end := off + srcRep
		unit := in
		if end > len(src) {
			// Last unit: copy what's left and zero-pad the remainder.
			for i := range unit {
				unit[i] = 0
			}
			copy(unit, src[off:])
		} else {
			unit = src[off:end]
		}

		n, err := fr.Compress(out, unit)
		if err != nil {
			return fmt.Errorf("colblock: write: fixed-ratio compress: %w", err)
		}
		if n != tgtRep {
			return fmt.Errorf("colblock: write: fixed-ratio codec produced %d bytes, want %d: %w", n, tgtRep, ErrCorruption)
		}
		if _, err := sink.Write(out[:n]); err != nil {
			return fmt.Errorf("colblock: write: fixed-ratio payload: %w", ErrShortIO)
		}
		obs.Metrics.ObserveBlockWrite(algo, len(unit), n)
	}
	return nil
}

// writeVariableRatio reserves the block index, streams each block's
// (possibly compressed) payload, then back-patches the reserved index once
// every offset is known.
func writeVariableRatio(obs Observability, sink Sink, src []byte, n, elementSize, blockSizeElements int, strategy Strategy) error {
	nrOfBlocks := ceilDiv(n, blockSizeElements)

	indexStart, err := sink.Tell()
	if err != nil {
		return fmt.Errorf("colblock: write: tell: %w", err)
	}
	reserve := make([]byte, (nrOfBlocks+1)*blockIndexEntrySize)
	if _, err := sink.Write(reserve); err != nil {
		return fmt.Errorf("colblock: write: reserve block index: %w", ErrShortIO)
	}

	index := make([]byte, (nrOfBlocks+1)*blockIndexEntrySize)
	for k := 0; k < nrOfBlocks; k++ {
		elementsInBlock := blockSizeElements
		if k == nrOfBlocks-1 {
			elementsInBlock = n - k*blockSizeElements
		}

		offset, err := sink.Tell()
		if err != nil {
			return fmt.Errorf("colblock: write: tell: %w", err)
		}

		blockStart := k * blockSizeElements * elementSize
		blockBytes := src[blockStart : blockStart+elementsInBlock*elementSize]

		dst, algo, err := strategy.CompressBlock(k, blockBytes)
		if err != nil {
			return fmt.Errorf("colblock: write: compress block %d: %w", k, err)
		}

		if algo == codec.None {
			if _, err := sink.Write(blockBytes); err != nil {
				return fmt.Errorf("colblock: write: block %d payload: %w", k, ErrShortIO)
			}
			obs.Logger.Debugw("colblock: block stored verbatim", "block", k, "bytes", len(blockBytes))
			obs.Metrics.ObserveBlockWrite(algo, len(blockBytes), len(blockBytes))
		} else {
			dstLen := len(dst)
			_, werr := sink.Write(dst)
			releaseScratch(dst)
			if werr != nil {
				return fmt.Errorf("colblock: write: block %d payload: %w", k, ErrShortIO)
			}
			obs.Metrics.ObserveBlockWrite(algo, len(blockBytes), dstLen)
		}
		putBlockIndexEntry(index[k*blockIndexEntrySize:], offset, algo)
	}

	sentinel, err := sink.Tell()
	if err != nil {
		return fmt.Errorf("colblock: write: tell: %w", err)
	}
	putBlockIndexEntry(index[nrOfBlocks*blockIndexEntrySize:], sentinel, 0)

	if _, err := sink.Seek(indexStart, 0); err != nil {
		return fmt.Errorf("colblock: write: seek back to block index: %w", err)
	}
	if _, err := sink.Write(index); err != nil {
		return fmt.Errorf("colblock: write: block index: %w", ErrShortIO)
	}
	if _, err := sink.Seek(sentinel, 0); err != nil {
		return fmt.Errorf("colblock: write: seek to end of payload: %w", err)
	}
	return nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
