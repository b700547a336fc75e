package protocol_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/usenet/protocol"
)

func respReader(wire string) protocol.LineReader {
	return protocol.NewLineReader(strings.NewReader(wire))
}

var _ = Describe("Parsing", func() {
	Describe("ReadResponse()", func() {
		It("parses a single-line response", func() {
			resp, err := protocol.ReadResponse(respReader("200 news.example.com ready\r\n"))
			Expect(err).To(Succeed())
			Expect(resp.Code()).To(Equal(protocol.ResponseCode(200)))
			Expect(resp.FirstLine()).To(Equal([]byte("200 news.example.com ready")))
			Expect(resp.HasDataBlock()).To(BeFalse())
			Expect(resp.DataBlock()).To(BeNil())
		})

		It("exposes the first line without its code prefix", func() {
			resp, err := protocol.ReadResponse(respReader("211 1234 3000234 3002322 misc.test\r\n"))
			Expect(err).To(Succeed())
			Expect(resp.FirstLineWithoutCode()).To(Equal([]byte("1234 3000234 3002322 misc.test")))
			Expect(resp.FirstLine()[4:]).To(Equal(resp.FirstLineWithoutCode()))
		})

		It("returns an error if the status line has no code", func() {
			_, err := protocol.ReadResponse(respReader("hello there\r\n"))
			Expect(errors.Is(err, protocol.ErrMalformedResponse)).To(BeTrue())
		})

		It("returns an error if the status line is too short", func() {
			_, err := protocol.ReadResponse(respReader("205\r\n"))
			Expect(errors.Is(err, protocol.ErrMalformedResponse)).To(BeTrue())
		})

		It("returns a truncated error if the stream ends before a complete status line", func() {
			_, err := protocol.ReadResponse(respReader("200 partial"))
			Expect(errors.Is(err, protocol.ErrTruncatedResponse)).To(BeTrue())

			_, err = protocol.ReadResponse(respReader(""))
			Expect(errors.Is(err, protocol.ErrTruncatedResponse)).To(BeTrue())
		})

		It("does not decode non-UTF-8 payloads", func() {
			wire := "200 \xff\xfe ready\r\n"
			resp, err := protocol.ReadResponse(respReader(wire))
			Expect(err).To(Succeed())
			Expect(resp.FirstLine()).To(Equal([]byte("200 \xff\xfe ready")))

			_, err = resp.FirstLineText()
			Expect(errors.Is(err, protocol.ErrInvalidUTF8)).To(BeTrue())

			Expect(resp.FirstLineTextLossy()).To(ContainSubstring("ready"))
			Expect(resp.FirstLineTextLossy()).To(ContainSubstring("�"))
		})

		Describe("multi-line responses", func() {
			It("collects the data block and consumes the terminator", func() {
				wire := "101 Capability list follows\r\n" +
					"VERSION 2\r\n" +
					"READER\r\n" +
					".\r\n"

				resp, err := protocol.ReadResponse(respReader(wire))
				Expect(err).To(Succeed())
				Expect(resp.Code().Kind()).To(Equal(protocol.KindCapabilitiesFollow))
				Expect(resp.HasDataBlock()).To(BeTrue())

				block := resp.DataBlock()
				Expect(block.LineCount()).To(Equal(2))
				Expect(block.Line(0)).To(Equal([]byte("VERSION 2")))
				Expect(block.Line(1)).To(Equal([]byte("READER")))
				Expect(block.Payload()).To(Equal([]byte("VERSION 2\r\nREADER\r\n")))
				Expect(block.IsEmpty()).To(BeFalse())
			})

			It("undoes dot-stuffing on content lines", func() {
				wire := "220 1 <a@b> article\r\n" +
					"..foo\r\n" +
					"plain\r\n" +
					"...\r\n" +
					".\r\n"

				resp, err := protocol.ReadResponse(respReader(wire))
				Expect(err).To(Succeed())

				block := resp.DataBlock()
				Expect(block.LineCount()).To(Equal(3))
				Expect(block.Line(0)).To(Equal([]byte(".foo")))
				Expect(block.Line(1)).To(Equal([]byte("plain")))
				Expect(block.Line(2)).To(Equal([]byte("..")))
			})

			It("keeps an empty block when the terminator comes first", func() {
				resp, err := protocol.ReadResponse(respReader("215 list follows\r\n.\r\n"))
				Expect(err).To(Succeed())
				Expect(resp.HasDataBlock()).To(BeTrue())
				Expect(resp.DataBlock().IsEmpty()).To(BeTrue())
				Expect(resp.DataBlock().LineCount()).To(Equal(0))
				Expect(resp.DataBlock().PayloadLen()).To(Equal(0))
			})

			It("records boundaries that are strictly increasing, in bounds, and exclude CRLFs", func() {
				wire := "101 caps\r\na\r\nbb\r\nccc\r\n.\r\n"
				resp, err := protocol.ReadResponse(respReader(wire))
				Expect(err).To(Succeed())

				block := resp.DataBlock()
				Expect(block.LineCount()).To(Equal(3))

				prevEnd := 0
				for i, line := range block.Lines() {
					Expect(len(line)).To(Equal(i + 1))

					// Lines alias the payload buffer without copying.
					Expect(&line[0]).To(BeIdenticalTo(&block.Payload()[prevEnd]))

					prevEnd += len(line) + 2
				}
				Expect(prevEnd).To(Equal(block.PayloadLen()))
			})

			It("returns a truncated error if the stream ends before the terminator", func() {
				wire := "101 caps\r\nVERSION 2\r\n"
				_, err := protocol.ReadResponse(respReader(wire))
				Expect(errors.Is(err, protocol.ErrTruncatedResponse)).To(BeTrue())
			})
		})
	})

	Describe("TrimCRLF()", func() {
		It("strips a trailing CRLF", func() {
			Expect(protocol.TrimCRLF([]byte("line\r\n"))).To(Equal([]byte("line")))
		})

		It("strips a bare trailing LF", func() {
			Expect(protocol.TrimCRLF([]byte("line\n"))).To(Equal([]byte("line")))
		})

		It("leaves other lines alone", func() {
			Expect(protocol.TrimCRLF([]byte("line"))).To(Equal([]byte("line")))
		})
	})
})
