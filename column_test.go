package colblock_test

import (
	"bytes"

	"github.com/bsm/colblock"
	"github.com/bsm/colblock/codec"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Int32Column", func() {
	It("writes an all-zero (uncompressed) header at level 0", func() {
		src := int32Bytes([]int32{1, 2, 3, 4, 5})
		col := colblock.Int32Column{Level: 0}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.buf[:8]).To(Equal(make([]byte, 8)))
	})

	It("writes a non-zero (variable-ratio) header marker at level 100", func() {
		src := int32Bytes([]int32{1, 2, 3, 4, 5})
		col := colblock.Int32Column{Level: 100}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(sink.buf[0:4]).NotTo(Equal([]byte{0, 0, 0, 0}))
	})

	It("records an annotation after the payload and reports its offset/length", func() {
		src := int32Bytes([]int32{1, 2, 3})
		col := colblock.Int32Column{Level: 0}
		sink := &memSink{}
		off, n, err := col.Write(colblock.Observability{}, sink, src, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))
		Expect(sink.buf[off : int(off)+n]).To(Equal([]byte("hello")))
	})
})

var _ = Describe("BoolColumn", func() {
	It("always takes the fixed-ratio bitpack path", func() {
		src := []byte{1, 0, 1, 0, 1, 0, 1, 0}
		col := colblock.BoolColumn{}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		// header (0, Bitpack8) then exactly 1 packed byte.
		Expect(sink.buf[0:4]).To(Equal([]byte{0, 0, 0, 0}))
		Expect(len(sink.buf)).To(Equal(8 + 1))

		out := make([]byte, len(src))
		err = col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, len(src), len(src), out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(src))
	})

	It("panics if the registry omits Bitpack8", func() {
		reg := codec.NewRegistry()
		reg.MustRegister(codec.LZ4, codec.NewLZ4(0))

		col := colblock.BoolColumn{}
		sink := &memSink{}
		Expect(func() {
			_, _, _ = col.Write(colblock.Observability{Registry: reg}, sink, []byte{1, 0, 1, 0, 1, 0, 1, 0}, "")
		}).To(Panic())
	})
})

var _ = Describe("DoubleColumn", func() {
	It("round-trips", func() {
		src := doubleBytes([]float64{1.5, -2.25, 3.125})
		col := colblock.DoubleColumn{Level: 30}
		sink := &memSink{}
		_, _, err := col.Write(colblock.Observability{}, sink, src, "")
		Expect(err).NotTo(HaveOccurred())

		out := make([]byte, len(src))
		err = col.Read(colblock.Observability{}, bytes.NewReader(sink.buf), 0, 0, 3, 3, out)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(src))
	})
})
