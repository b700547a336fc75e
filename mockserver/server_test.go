package mockserver_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/usenet/client"
	"github.com/luma/usenet/mockserver"
	"github.com/luma/usenet/protocol"
)

func startServer(opts mockserver.Options) *mockserver.Server {
	opts.Host = "127.0.0.1"
	server := mockserver.New(opts)

	Expect(server.Start(context.Background())).To(Succeed())

	return server
}

var _ = Describe("mockserver", func() {
	Describe("Server", func() {
		It("serves a full anonymous session", func() {
			server := startServer(mockserver.Options{})
			defer server.Close()

			Expect(server.Store().SetGroup("misc.test", 1234, 3000234, 3002322)).To(Succeed())

			c, err := client.Config{}.Connect(server.Addr())
			Expect(err).To(Succeed())

			Expect(c.Capabilities().Has("READER")).To(BeTrue())

			group, err := c.SetGroup("misc.test")
			Expect(err).To(Succeed())
			Expect(group.Count).To(Equal(int64(1234)))
			Expect(group.Low).To(Equal(int64(3000234)))
			Expect(group.High).To(Equal(int64(3002322)))

			_, err = c.SetGroup("missing.group")
			Expect(errors.Is(err, client.ErrNoSuchGroup)).To(BeTrue())

			Expect(c.Close()).To(Succeed())
		})

		It("authenticates clients with the configured credentials", func() {
			server := startServer(mockserver.Options{
				Username: "sam",
				Password: "hunter2",
			})
			defer server.Close()

			Expect(server.Store().SetGroup("alt.test", 56, 1, 56)).To(Succeed())

			c, err := client.Config{
				Username: "sam",
				Password: "hunter2",
				Group:    "alt.test",
			}.Connect(server.Addr())
			Expect(err).To(Succeed())

			Expect(c.Group().Name).To(Equal("alt.test"))
			Expect(c.Close()).To(Succeed())
		})

		It("rejects bad credentials", func() {
			server := startServer(mockserver.Options{
				Username: "sam",
				Password: "hunter2",
			})
			defer server.Close()

			_, err := client.Config{
				Username: "sam",
				Password: "wrong",
			}.Connect(server.Addr())

			var f *client.Failure
			Expect(errors.As(err, &f)).To(BeTrue())
			Expect(f.Code).To(Equal(protocol.ResponseCode(481)))
		})

		It("refuses GROUP before authentication when credentials are required", func() {
			server := startServer(mockserver.Options{
				Username: "sam",
				Password: "hunter2",
			})
			defer server.Close()

			Expect(server.Store().SetGroup("alt.test", 56, 1, 56)).To(Succeed())

			// No credentials configured on the client side.
			c, err := client.Config{}.Connect(server.Addr())
			Expect(err).To(Succeed())

			_, err = c.SetGroup("alt.test")

			var f *client.Failure
			Expect(errors.As(err, &f)).To(BeTrue())
			Expect(f.Code.Kind()).To(Equal(protocol.KindAuthenticationRequired))
		})

		It("serves LIST as a dot-terminated block", func() {
			server := startServer(mockserver.Options{})
			defer server.Close()

			Expect(server.Store().SetGroup("misc.test", 56, 1, 56)).To(Succeed())

			c, err := client.Config{}.Connect(server.Addr())
			Expect(err).To(Succeed())
			defer c.Close()

			resp, err := c.Conn().Command(protocol.List{})
			Expect(err).To(Succeed())
			Expect(resp.Code().Kind()).To(Equal(protocol.KindListFollows))
			Expect(resp.HasDataBlock()).To(BeTrue())
			Expect(resp.DataBlock().LineCount()).To(Equal(1))
			Expect(resp.DataBlock().Line(0)).To(Equal([]byte("misc.test 56 1 y")))
		})

		It("answers unknown commands with 500", func() {
			server := startServer(mockserver.Options{})
			defer server.Close()

			c, err := client.Config{}.Connect(server.Addr())
			Expect(err).To(Succeed())
			defer c.Close()

			resp, err := c.Conn().Command(protocol.Over{Range: "1-10"})
			Expect(err).To(Succeed())
			Expect(resp.Code()).To(Equal(protocol.ResponseCode(500)))
		})
	})

	Describe("GroupStore", func() {
		It("round trips groups through the JSON document", func() {
			store := mockserver.NewGroupStore()

			Expect(store.SetGroup("misc.test", 1234, 1, 1234)).To(Succeed())
			Expect(store.SetGroup("alt.binaries.pictures", 9, 100, 108)).To(Succeed())

			count, low, high, ok := store.Group("alt.binaries.pictures")
			Expect(ok).To(BeTrue())
			Expect(count).To(Equal(int64(9)))
			Expect(low).To(Equal(int64(100)))
			Expect(high).To(Equal(int64(108)))

			Expect(store.Names()).To(ConsistOf("misc.test", "alt.binaries.pictures"))
		})

		It("reports missing groups", func() {
			store := mockserver.NewGroupStore()

			_, _, _, ok := store.Group("missing.group")
			Expect(ok).To(BeFalse())
		})

		It("restores from and backs up to a plain document", func() {
			store := mockserver.NewGroupStore()
			Expect(store.Backup()).To(Equal([]byte(`{}`)))

			Expect(store.Restore([]byte(`{"misc.test":{"count":2,"low":1,"high":2}}`))).To(Succeed())

			count, _, _, ok := store.Group("misc.test")
			Expect(ok).To(BeTrue())
			Expect(count).To(Equal(int64(2)))
		})
	})
})
