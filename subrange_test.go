package colblock_test

import (
	"bytes"
	"encoding/binary"

	"github.com/bsm/colblock"
	"github.com/bsm/colblock/codec"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("sub-range reads", func() {
	const B = 8192

	var src []byte
	var n int
	var sink *memSink

	BeforeEach(func() {
		n = 7*B + 3
		src = randomInt32(n, 9)
		col := colblock.Int32Column{Level: 50}
		sink = &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())
	})

	table.DescribeTable("matches the same slice of a full read",
		func(startRow, length int) {
			col := colblock.Int32Column{Level: 50}
			out := make([]byte, length*4)
			err := col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, startRow, length, n, out)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(src[startRow*4 : (startRow+length)*4]))
		},
		table.Entry("startRow == 0", 0, 10),
		table.Entry("startRow == N-length", 7*B+3-10, 10),
		table.Entry("within a single block", 100, 50),
		table.Entry("spans 2 blocks", B-5, 10),
		table.Entry("spans >= 3 blocks", B-5, 2*B+10),
		table.Entry("ends exactly on a block boundary", B-10, 10),
		table.Entry("length 1", 42, 1),
		table.Entry("length 0", 42, 0),
	)
})

var _ = Describe("layout invariants", func() {
	It("produces strictly monotonic block-index offsets, a sentinel at EOF, and the documented header pattern", func() {
		n := 7*8192 + 3
		src := randomInt32(n, 11)
		col := colblock.Int32Column{Level: 75}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		h0 := binary.LittleEndian.Uint32(sink.buf[0:4])
		h1 := binary.LittleEndian.Uint32(sink.buf[4:8])
		Expect(h0).NotTo(BeZero(), "variable-ratio header[0] must be the non-zero marker")
		Expect(h1).To(Equal(uint32(8192)))

		nrOfBlocks := (n + 8191) / 8192
		idx := sink.buf[8 : 8+(nrOfBlocks+1)*10]
		var prevOffset int64 = -1
		for i := 0; i <= nrOfBlocks; i++ {
			off := int64(binary.LittleEndian.Uint64(idx[i*10:]))
			Expect(off).To(BeNumerically(">", prevOffset))
			prevOffset = off
		}
		sentinel := int64(binary.LittleEndian.Uint64(idx[nrOfBlocks*10:]))
		Expect(sentinel).To(Equal(int64(len(sink.buf))))
	})
})

var _ = Describe("fixed-ratio edge cases", func() {
	It("handles unaligned startRow, unaligned endRow, aligned ranges and single-unit slices", func() {
		n := 17
		vals := make([]byte, n)
		for i := range vals {
			vals[i] = byte(i % 3) // 0 or non-zero
		}
		col := colblock.BoolColumn{}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, vals, "")
		Expect(err).NotTo(HaveOccurred())

		read := func(startRow, length int) []byte {
			out := make([]byte, length)
			Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, startRow, length, n, out)).To(Succeed())
			return out
		}

		asBool := func(b byte) byte {
			if b != 0 {
				return 1
			}
			return 0
		}
		want := func(start, length int) []byte {
			out := make([]byte, length)
			for i := 0; i < length; i++ {
				out[i] = asBool(vals[start+i])
			}
			return out
		}

		Expect(read(5, 10)).To(Equal(want(5, 10))) // §8 scenario 6: startRow=5, length=10
		Expect(read(1, 5)).To(Equal(want(1, 5)))   // unaligned start, unaligned end
		Expect(read(0, 8)).To(Equal(want(0, 8)))   // full-unit-aligned
		Expect(read(8, 8)).To(Equal(want(8, 8)))   // full-unit-aligned, second unit
		Expect(read(3, 1)).To(Equal(want(3, 1)))   // single-unit slice
	})
})

var _ = Describe("end-to-end scenarios", func() {
	It("scenario 1: N=10 doubles, c=0, read (3,4)", func() {
		vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
		src := doubleBytes(vals)
		col := colblock.DoubleColumn{Level: 0}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		Expect(sink.buf[:8]).To(Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0}))
		Expect(sink.buf[8:]).To(Equal(src))

		out := make([]byte, 4*8)
		Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 3, 4, 10, out)).To(Succeed())
		Expect(out).To(Equal(doubleBytes([]float64{3, 4, 5, 6})))
	})

	It("scenario 2: N=100000 int32 at c=25, blockSizeElements=4096, nrOfBlocks=25, index has 26 entries, read spans blocks 0-1", func() {
		n := 100000
		const blockSizeElements = 4096
		vals := make([]int32, n)
		for i := range vals {
			vals[i] = int32(i)
		}
		src := int32Bytes(vals)

		strategy := colblock.NewLinearMix(colblock.NewSingle(codec.LZ4, codec.NewLZ4(50)), 50)
		sink := &memSink{}
		_, _, err := colblock.WriteColumn(colblock.Observability{}, sink, src, 4, blockSizeElements, strategy, "")
		Expect(err).NotTo(HaveOccurred())

		nrOfBlocks := (n + blockSizeElements - 1) / blockSizeElements
		Expect(nrOfBlocks).To(Equal(25))

		sentinel := int64(binary.LittleEndian.Uint64(sink.buf[8+nrOfBlocks*10:]))
		Expect(sentinel).To(Equal(int64(len(sink.buf))))

		out := make([]byte, 2*4)
		Expect(colblock.ReadColumn(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 4095, 2, n, 4, out)).To(Succeed())
		Expect(out).To(Equal(int32Bytes([]int32{4095, 4096})))
	})

	It("scenario 3: N=4096 doubles, c=75, full read equal to input; zero-length read touches nothing", func() {
		n := 4096
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(i) * 1.5
		}
		src := doubleBytes(vals)
		col := colblock.DoubleColumn{Level: 75}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		out := make([]byte, n*8)
		Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, n, n, out)).To(Succeed())
		Expect(out).To(Equal(src))

		sentinel := []byte("untouched")
		out2 := append([]byte(nil), sentinel...)
		Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, 0, n, out2)).To(Succeed())
		Expect(out2).To(Equal(sentinel))
	})

	It("scenario 4: corrupting a block index algorithm id surfaces a corruption error", func() {
		n := 100000
		vals := make([]int32, n)
		for i := range vals {
			vals[i] = int32(i)
		}
		src := int32Bytes(vals)
		col := colblock.Int32Column{Level: 100}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		// First block-index entry's algo field: offset 8 (header) + 8 (file
		// offset field width) = byte 16.
		sink.buf[16] = 0xFE
		sink.buf[17] = 0xFF

		out := make([]byte, 2*4)
		err = col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, 2, n, out)
		Expect(err).To(MatchError(colblock.ErrCorruption))
	})

	It("scenario 5: uncompressed column, read (startRow=N, length=0) succeeds with zero bytes written", func() {
		n := 10
		src := randomInt32(n, 3)
		col := colblock.Int32Column{Level: 0}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		out := []byte("untouched!!")
		before := append([]byte(nil), out...)
		Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, n, 0, n, out)).To(Succeed())
		Expect(out).To(Equal(before))
	})

	It("scenario 6: fixed-ratio boolean column, N=17, read (5,10)", func() {
		n := 17
		vals := make([]byte, n)
		for i := range vals {
			vals[i] = byte((i + 1) % 2)
		}
		col := colblock.BoolColumn{}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, vals, "")
		Expect(err).NotTo(HaveOccurred())

		out := make([]byte, 10)
		Expect(col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 5, 10, n, out)).To(Succeed())
		Expect(out).To(Equal(vals[5:15]))
	})
})

var _ = Describe("codec registry dispatch through ReadColumn", func() {
	It("rejects an unknown fixed-ratio algorithm id", func() {
		n := 8
		src := make([]byte, n)
		col := colblock.BoolColumn{}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		sink.buf[4] = 0xFF // header[1] = algo id, now unknown
		sink.buf[5] = 0x7F

		out := make([]byte, n)
		err = col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, n, n, out)
		Expect(err).To(MatchError(colblock.ErrCorruption))
	})

	It("exposes codec.ID values consistently with the default registry", func() {
		Expect(codec.Default).NotTo(BeNil())
	})
})
