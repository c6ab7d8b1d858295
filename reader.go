package colblock

import (
	"encoding/binary"
	"fmt"

	"github.com/bsm/colblock/codec"
)

// prefBlockSize is the read batch size used to amortize I/O over many
// fixed-ratio rep units instead of issuing one read per unit.
const prefBlockSize = 16384

// ReadColumn resolves [startRow, startRow+length) against a column written
// by WriteColumn and writes exactly length*elementSize bytes into out. src
// must be positioned (conceptually, since ReadAt is stateless) such that
// blockPos is the absolute offset of the column's header. size is the
// column's total element count N, needed to compute the last block/rep
// unit's size.
//
// length == 0 returns immediately without reading the header, per the
// format's documented edge case.
func ReadColumn(obs Observability, src Source, blockPos int64, startRow, length, size, elementSize int, out []byte) error {
	if length == 0 {
		return nil
	}
	obs = obs.norm()
	if startRow < 0 || length < 0 || startRow+length > size {
		return fmt.Errorf("colblock: read: range [%d,%d) exceeds column length %d: %w", startRow, startRow+length, size, ErrUsage)
	}
	if len(out) < length*elementSize {
		return fmt.Errorf("colblock: read: output buffer too small for %d elements: %w", length, ErrUsage)
	}

	hdr := make([]byte, headerSize)
	if _, err := src.ReadAt(hdr, blockPos); err != nil {
		return fmt.Errorf("colblock: read: header: %w", ErrShortIO)
	}
	h0 := binary.LittleEndian.Uint32(hdr[0:4])
	h1 := binary.LittleEndian.Uint32(hdr[4:8])

	switch {
	case h0 == 0 && h1 == 0:
		return readUncompressed(src, blockPos, startRow, length, elementSize, out)
	case h0 == 0:
		return readFixedRatio(obs, src, blockPos, startRow, length, size, elementSize, codec.ID(h1), out)
	default:
		if h1 == 0 {
			return fmt.Errorf("colblock: read: variable-ratio header with zero block size: %w", ErrCorruption)
		}
		return readVariableRatio(obs, src, blockPos, startRow, length, size, elementSize, int(h1), out)
	}
}

func readUncompressed(src Source, blockPos int64, startRow, length, elementSize int, out []byte) error {
	off := blockPos + headerSize + int64(startRow)*int64(elementSize)
	n := length * elementSize
	if _, err := src.ReadAt(out[:n], off); err != nil {
		return fmt.Errorf("colblock: read: uncompressed payload: %w", ErrShortIO)
	}
	return nil
}

// readFixedRatio decodes a fixed-ratio column: it walks source-rep-sized
// units back from compressed rep units, batching full units to amortize I/O.
func readFixedRatio(obs Observability, src Source, blockPos int64, startRow, length, size, elementSize int, algo codec.ID, out []byte) error {
	c, ok := obs.Registry.Get(algo)
	if !ok {
		return fmt.Errorf("colblock: read: unknown fixed-ratio algorithm %d: %w", algo, ErrCorruption)
	}
	fr, ok := c.(codec.FixedRatioCodec)
	if !ok {
		return fmt.Errorf("colblock: read: algorithm %d is not fixed-ratio: %w", algo, ErrCorruption)
	}

	srcRep := fr.SourceRepSize()
	tgtRep := fr.TargetRepSize()
	repElems := srcRep / elementSize

	startRep := startRow / repElems
	endRep := (startRow + length - 1) / repElems
	startOffset := startRow - startRep*repElems

	pos := blockPos + headerSize + int64(startRep)*int64(tgtRep)
	outOff := 0

	if startOffset != 0 {
		tgtBuf := fetchScratch(tgtRep)
		srcBuf := fetchScratch(srcRep)
		defer releaseScratch(tgtBuf)
		defer releaseScratch(srcBuf)

		if _, err := src.ReadAt(tgtBuf, pos); err != nil {
			return fmt.Errorf("colblock: read: fixed-ratio rep unit: %w", ErrShortIO)
		}
		if _, err := fr.Decompress(srcBuf, tgtBuf); err != nil {
			return fmt.Errorf("colblock: read: fixed-ratio decompress: %w", ErrCorruption)
		}
		obs.Metrics.ObserveBlockRead(algo, tgtRep)

		if startRep == endRep {
			copy(out[:length*elementSize], srcBuf[startOffset*elementSize:])
			return nil
		}

		n := (repElems - startOffset) * elementSize
		copy(out[:n], srcBuf[startOffset*elementSize:])
		outOff += n
		startRep++
		pos += int64(tgtRep)
	}

	// Process the remaining full rep units in batches sized to amortize I/O,
	// decompressing straight into out.
	repsPerBatch := prefBlockSize / srcRep
	if repsPerBatch < 1 {
		repsPerBatch = 1
	}

	remainingReps := endRep - startRep + 1
	for remainingReps > 1 {
		batch := remainingReps - 1
		if batch > repsPerBatch {
			batch = repsPerBatch
		}

		srcLen := batch * tgtRep
		dstLen := batch * repElems * elementSize
		tgtBuf := fetchScratch(srcLen)
		if _, err := src.ReadAt(tgtBuf, pos); err != nil {
			releaseScratch(tgtBuf)
			return fmt.Errorf("colblock: read: fixed-ratio batch: %w", ErrShortIO)
		}
		if _, err := fr.Decompress(out[outOff:outOff+dstLen], tgtBuf); err != nil {
			releaseScratch(tgtBuf)
			return fmt.Errorf("colblock: read: fixed-ratio decompress: %w", ErrCorruption)
		}
		releaseScratch(tgtBuf)
		obs.Metrics.ObserveBlockRead(algo, srcLen)

		outOff += dstLen
		pos += int64(srcLen)
		remainingReps -= batch
	}

	// Final rep unit may be partial. Decompress into a local buffer and
	// truncate to the needed tail length.
	tgtBuf := fetchScratch(tgtRep)
	srcBuf := fetchScratch(srcRep)
	defer releaseScratch(tgtBuf)
	defer releaseScratch(srcBuf)

	if _, err := src.ReadAt(tgtBuf, pos); err != nil {
		return fmt.Errorf("colblock: read: fixed-ratio last rep unit: %w", ErrShortIO)
	}
	if _, err := fr.Decompress(srcBuf, tgtBuf); err != nil {
		return fmt.Errorf("colblock: read: fixed-ratio decompress: %w", ErrCorruption)
	}
	obs.Metrics.ObserveBlockRead(algo, tgtRep)

	tailElems := (startRow + length) - endRep*repElems
	copy(out[outOff:outOff+tailElems*elementSize], srcBuf)
	return nil
}

type blockIndexEntry struct {
	offset int64
	algo   codec.ID
}

// readVariableRatio decodes a variable-ratio column against its block
// index. Per-block slice boundaries are derived directly from absolute row
// positions rather than a first/middle/last phase split, which sidesteps
// the "(startRow+length) mod B == 0" off-by-one a naive ceil-based endBlock
// computation is prone to: using floor((startRow+length-1)/B) for endBlock
// already excludes any empty tail block, so no separate decrement/increment
// correction is needed.
func readVariableRatio(obs Observability, src Source, blockPos int64, startRow, length, size, elementSize, blockSizeElements int, out []byte) error {
	B := blockSizeElements
	nrOfBlocks := ceilDiv(size, B)

	startBlock := startRow / B
	endBlock := (startRow + length - 1) / B

	idxBuf := fetchScratch((endBlock - startBlock + 2) * blockIndexEntrySize)
	defer releaseScratch(idxBuf)
	if _, err := src.ReadAt(idxBuf, blockPos+headerSize+int64(startBlock)*blockIndexEntrySize); err != nil {
		return fmt.Errorf("colblock: read: block index: %w", ErrShortIO)
	}

	entries := make([]blockIndexEntry, endBlock-startBlock+2)
	for i := range entries {
		off := int64(binary.LittleEndian.Uint64(idxBuf[i*blockIndexEntrySize:]))
		algo := codec.ID(binary.LittleEndian.Uint16(idxBuf[i*blockIndexEntrySize+8:]))
		if i > 0 && off <= entries[i-1].offset {
			return fmt.Errorf("colblock: read: block index offsets not monotonic: %w", ErrCorruption)
		}
		entries[i] = blockIndexEntry{offset: off, algo: algo}
	}

	outOff := 0
	for k := startBlock; k <= endBlock; k++ {
		entry := entries[k-startBlock]
		next := entries[k-startBlock+1]
		compLen := int(next.offset - entry.offset)

		blockElemCount := B
		if k == nrOfBlocks-1 {
			blockElemCount = 1 + (size-1)%B
		}

		var sliceStart, sliceLen int
		switch {
		case k == startBlock && k == endBlock:
			sliceStart, sliceLen = startRow%B, length
		case k == startBlock:
			sliceStart, sliceLen = startRow%B, B-startRow%B
		case k == endBlock:
			sliceStart, sliceLen = 0, (startRow+length)-endBlock*B
		default:
			sliceStart, sliceLen = 0, blockElemCount
		}

		dstSlice := out[outOff : outOff+sliceLen*elementSize]

		if entry.algo == codec.None {
			off := entry.offset + int64(sliceStart*elementSize)
			if _, err := src.ReadAt(dstSlice, off); err != nil {
				return fmt.Errorf("colblock: read: block %d uncompressed payload: %w", k, ErrShortIO)
			}
			obs.Logger.Debugw("colblock: block read verbatim", "block", k, "bytes", len(dstSlice))
		} else {
			c, ok := obs.Registry.Get(entry.algo)
			if !ok {
				return fmt.Errorf("colblock: read: block %d unknown algorithm %d: %w", k, entry.algo, ErrCorruption)
			}

			compBuf := fetchScratch(compLen)
			if _, err := src.ReadAt(compBuf, entry.offset); err != nil {
				releaseScratch(compBuf)
				return fmt.Errorf("colblock: read: block %d compressed payload: %w", k, ErrShortIO)
			}

			if sliceStart == 0 && sliceLen == blockElemCount {
				if n, err := c.Decompress(dstSlice, compBuf); err != nil || n != len(dstSlice) {
					releaseScratch(compBuf)
					return fmt.Errorf("colblock: read: block %d decompress: %w", k, ErrCorruption)
				}
			} else {
				tmp := fetchScratch(blockElemCount * elementSize)
				if n, err := c.Decompress(tmp, compBuf); err != nil || n != len(tmp) {
					releaseScratch(compBuf)
					releaseScratch(tmp)
					return fmt.Errorf("colblock: read: block %d decompress: %w", k, ErrCorruption)
				}
				copy(dstSlice, tmp[sliceStart*elementSize:(sliceStart+sliceLen)*elementSize])
				releaseScratch(tmp)
			}
			releaseScratch(compBuf)
			obs.Metrics.ObserveBlockRead(entry.algo, compLen)
		}

		outOff += sliceLen * elementSize
	}

	return nil
}
