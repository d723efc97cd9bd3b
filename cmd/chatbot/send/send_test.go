package sendcmder

import (
	"bytes"
	"context"
	"net"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	chatbotapi "github.com/papercomputeco/chatbot/api"
	"github.com/papercomputeco/chatbot/pkg/chat"
	"github.com/papercomputeco/chatbot/pkg/storage/inmemory"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

var _ = Describe("Send Command", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	startServer := func() (string, *inmemory.Driver, func()) {
		serverDriver := inmemory.NewDriver()
		logger := zap.NewNop()

		srv := chatbotapi.NewServer(chatbotapi.Config{
			ListenAddr: ":0",
		}, chat.NewService(echoCompleter{}, serverDriver, logger), logger)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		go func() {
			_ = srv.RunWithListener(listener)
		}()

		addr := "http://" + listener.Addr().String()
		cleanup := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			serverDriver.Close()
		}
		return addr, serverDriver, cleanup
	}

	It("prints the reply and the new session id", func() {
		addr, serverDriver, cleanup := startServer()
		defer cleanup()

		var stdout, stderr bytes.Buffer
		cmd := NewSendCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs([]string{"--server", addr, "hello", "there"})

		Expect(cmd.ExecuteContext(ctx)).To(Succeed())

		Expect(stdout.String()).To(Equal("echo: hello there\n"))
		Expect(stderr.String()).To(ContainSubstring("session: " + chat.SessionIDPrefix))

		turns, err := serverDriver.ListRecent(ctx, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].UserMessage).To(Equal("hello there"))
	})

	It("continues an existing session", func() {
		addr, serverDriver, cleanup := startServer()
		defer cleanup()

		for _, msg := range []string{"first", "second"} {
			cmd := NewSendCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--server", addr, "--session", "cli-session", msg})
			Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		}

		turns, err := serverDriver.ListBySession(ctx, "cli-session")
		Expect(err).NotTo(HaveOccurred())
		Expect(turns).To(HaveLen(2))
	})

	It("reports validation failures from the server", func() {
		addr, _, cleanup := startServer()
		defer cleanup()

		cmd := NewSendCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--server", addr, strings.Repeat("x", 1001)})

		err := cmd.ExecuteContext(ctx)
		Expect(err).To(MatchError(ContainSubstring("User message cannot exceed 1000 characters")))
	})
})
