package statscmder

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbot/pkg/chat"
	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

var _ = Describe("Stats Command", func() {
	var (
		ctx       context.Context
		localPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		localPath = filepath.Join(GinkgoT().TempDir(), "local.sqlite")

		local, err := sqlite.NewDriver(ctx, localPath)
		Expect(err).NotTo(HaveOccurred())
		defer local.Close()

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		for i, ms := range []int64{100, 200, 300} {
			turn := llm.NewConversationTurn("q", "a", "measured")
			turn.Timestamp = base.Add(time.Duration(i) * time.Minute)
			turn.ResponseTimeMs = ms
			_, err := local.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewStatsCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--sqlite", localPath}, args...))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("aggregates a session", func() {
		out, err := execute("--json", "measured")
		Expect(err).NotTo(HaveOccurred())

		var stats chat.SessionStats
		Expect(json.Unmarshal([]byte(out), &stats)).To(Succeed())
		Expect(stats.MessageCount).To(Equal(int64(3)))
		Expect(stats.TotalResponseTime).To(Equal(int64(600)))
		Expect(stats.AverageResponseTime).To(Equal(200.0))
		Expect(stats.FirstMessage.Format(time.RFC3339)).To(Equal("2024-03-01T12:00:00Z"))
		Expect(stats.LastMessage.Format(time.RFC3339)).To(Equal("2024-03-01T12:02:00Z"))
	})

	It("prints a zero record for an unknown session", func() {
		out, err := execute("missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("messages:       0"))
		Expect(out).To(ContainSubstring("first message:  -"))
		Expect(out).To(ContainSubstring("average time:   0.0 ms"))
	})

	It("requires a session id", func() {
		_, err := execute()
		Expect(err).To(HaveOccurred())
	})
})
