package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/usenet/protocol"
)

var _ = Describe("Commands", func() {
	Describe("Encode()", func() {
		It("renders each command as a single line of ASCII tokens", func() {
			Expect(protocol.Capabilities{}.Encode()).To(Equal([]byte("CAPABILITIES")))
			Expect(protocol.Group{Group: "misc.test"}.Encode()).To(Equal([]byte("GROUP misc.test")))
			Expect(protocol.AuthInfoUser{Username: "sam"}.Encode()).To(Equal([]byte("AUTHINFO USER sam")))
			Expect(protocol.AuthInfoPass{Password: "hunter2"}.Encode()).To(Equal([]byte("AUTHINFO PASS hunter2")))
			Expect(protocol.Quit{}.Encode()).To(Equal([]byte("QUIT")))
			Expect(protocol.Article{MessageID: "<a@b>"}.Encode()).To(Equal([]byte("ARTICLE <a@b>")))
			Expect(protocol.Body{MessageID: "<a@b>"}.Encode()).To(Equal([]byte("BODY <a@b>")))
			Expect(protocol.Head{MessageID: "<a@b>"}.Encode()).To(Equal([]byte("HEAD <a@b>")))
			Expect(protocol.List{}.Encode()).To(Equal([]byte("LIST")))
			Expect(protocol.List{Keyword: "ACTIVE"}.Encode()).To(Equal([]byte("LIST ACTIVE")))
			Expect(protocol.Over{Range: "1-100"}.Encode()).To(Equal([]byte("OVER 1-100")))
		})
	})

	Describe("ParseCommand()", func() {
		It("round trips every command through its wire line", func() {
			commands := []protocol.Command{
				protocol.Capabilities{},
				protocol.Group{Group: "alt.test"},
				protocol.AuthInfoUser{Username: "sam"},
				protocol.AuthInfoPass{Password: "hunter2"},
				protocol.Quit{},
				protocol.Article{MessageID: "<a@b>"},
				protocol.Head{MessageID: "<a@b>"},
				protocol.Body{MessageID: "<a@b>"},
				protocol.List{},
				protocol.List{Keyword: "ACTIVE"},
				protocol.Over{},
				protocol.Over{Range: "1-100"},
			}

			for _, cmd := range commands {
				parsed, err := protocol.ParseCommand(cmd.Encode())
				Expect(err).To(Succeed())
				Expect(parsed).To(Equal(cmd))
			}
		})

		It("returns an error for an unknown command", func() {
			_, err := protocol.ParseCommand([]byte("EVIL"))
			Expect(errors.Is(err, protocol.ErrUnknownCommand)).To(BeTrue())
		})

		It("returns an error when an argument is missing", func() {
			_, err := protocol.ParseCommand([]byte("GROUP"))
			Expect(errors.Is(err, protocol.ErrMissingArgument)).To(BeTrue())

			_, err = protocol.ParseCommand([]byte("GROUPmisc.test"))
			Expect(errors.Is(err, protocol.ErrMissingArgument)).To(BeTrue())
		})

		It("returns an error when AUTHINFO is missing its keyword", func() {
			_, err := protocol.ParseCommand([]byte("AUTHINFO sam"))
			Expect(errors.Is(err, protocol.ErrMissingAuthKeyword)).To(BeTrue())
		})
	})
})
