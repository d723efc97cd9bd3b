package servecmder

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/pkg/config"
	"github.com/papercomputeco/chatbot/pkg/storage/inmemory"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

var _ = Describe("Serve Command", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		for _, key := range []string{config.EnvAPIKey, config.EnvAPIURL, config.EnvListenAddr, config.EnvSQLitePath} {
			GinkgoT().Setenv(key, "")
		}
	})

	Describe("loadConfig", func() {
		It("uses defaults when nothing is set", func() {
			cmder := &serveCommander{}
			cmd := newServeCmd(cmder)
			Expect(cmd.ParseFlags(nil)).To(Succeed())

			cfg, err := cmder.loadConfig(cmd)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ListenAddr).To(Equal(config.DefaultListenAddr))
			Expect(cfg.Storage.SQLitePath).To(BeEmpty())
		})

		It("lets flags override the file", func() {
			path := filepath.Join(tmpDir, "chatbot.toml")
			Expect(os.WriteFile(path, []byte("listen = \":7000\"\n[storage]\nsqlite_path = \"file.db\"\n"), 0o600)).To(Succeed())

			cmder := &serveCommander{}
			cmd := newServeCmd(cmder)
			Expect(cmd.ParseFlags([]string{"--config", path, "--listen", ":7001", "--debug"})).To(Succeed())

			cfg, err := cmder.loadConfig(cmd)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ListenAddr).To(Equal(":7001"))
			Expect(cfg.Storage.SQLitePath).To(Equal("file.db"))
			Expect(cfg.Debug).To(BeTrue())
		})

		It("rejects an unknown log format", func() {
			cmder := &serveCommander{}
			cmd := newServeCmd(cmder)
			Expect(cmd.ParseFlags([]string{"--log-format", "xml"})).To(Succeed())

			_, err := cmder.loadConfig(cmd)
			Expect(err).To(MatchError(ContainSubstring("log_format")))
		})
	})

	Describe("openDriver", func() {
		It("opens an in-memory driver without a path", func() {
			driver, err := openDriver(context.Background(), "", zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()
			Expect(driver).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		})

		It("opens a SQLite driver with a path", func() {
			driver, err := openDriver(context.Background(), filepath.Join(tmpDir, "chat.db"), zap.NewNop())
			Expect(err).NotTo(HaveOccurred())
			defer driver.Close()
			Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		})
	})

	It("serves until the context is cancelled", func() {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		cmder := &serveCommander{listener: listener}
		cmd := newServeCmd(cmder)
		Expect(cmd.ParseFlags(nil)).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() { errCh <- cmder.run(ctx, cmd) }()

		healthURL := "http://" + listener.Addr().String() + "/chat/health"
		Eventually(func() (string, error) {
			resp, err := http.Get(healthURL)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			return string(body), err
		}, 5*time.Second, 50*time.Millisecond).Should(Equal("Chatbot service is running!"))

		cancel()
		Eventually(errCh, 15*time.Second).Should(Receive(BeNil()))
	})
})
