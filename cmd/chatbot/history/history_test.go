package historycmder

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage/sqlite"
)

var _ = Describe("History Command", func() {
	var (
		ctx       context.Context
		localPath string
		base      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		localPath = filepath.Join(GinkgoT().TempDir(), "local.sqlite")
		base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		local, err := sqlite.NewDriver(ctx, localPath)
		Expect(err).NotTo(HaveOccurred())
		defer local.Close()

		seed := []struct {
			msg, session, ip string
			offset           time.Duration
		}{
			{"first question", "alpha", "203.0.113.7", 0},
			{"second question", "alpha", "203.0.113.7", time.Hour},
			{"other question", "beta", "198.51.100.2", 2 * time.Hour},
		}
		for _, s := range seed {
			turn := llm.NewConversationTurn(s.msg, "answer to "+s.msg, s.session)
			turn.Timestamp = base.Add(s.offset)
			turn.ClientIP = s.ip
			turn.ResponseTimeMs = 10
			_, err := local.Append(ctx, turn)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--sqlite", localPath}, args...))
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	decode := func(out string) []llm.ConversationTurn {
		var turns []llm.ConversationTurn
		Expect(json.Unmarshal([]byte(out), &turns)).To(Succeed())
		return turns
	}

	It("lists a session oldest first", func() {
		out, err := execute("--json", "alpha")
		Expect(err).NotTo(HaveOccurred())

		turns := decode(out)
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].UserMessage).To(Equal("first question"))
		Expect(turns[1].UserMessage).To(Equal("second question"))
	})

	It("filters a session by time range", func() {
		out, err := execute("--json", "--start", "2024-03-01T12:30:00Z", "--end", "2024-03-01T14:00:00Z", "alpha")
		Expect(err).NotTo(HaveOccurred())

		turns := decode(out)
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].UserMessage).To(Equal("second question"))
	})

	It("lists recent turns across sessions newest first", func() {
		out, err := execute("--json", "--limit", "2")
		Expect(err).NotTo(HaveOccurred())

		turns := decode(out)
		Expect(turns).To(HaveLen(2))
		Expect(turns[0].UserMessage).To(Equal("other question"))
		Expect(turns[1].UserMessage).To(Equal("second question"))
	})

	It("lists turns by client ip", func() {
		out, err := execute("--json", "--ip", "198.51.100.2")
		Expect(err).NotTo(HaveOccurred())

		turns := decode(out)
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].SessionID).To(Equal("beta"))
	})

	It("renders turns as text", func() {
		out, err := execute("beta")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("other question"))
		Expect(out).To(ContainSubstring("answer to other question"))
		Expect(out).To(ContainSubstring("198.51.100.2"))
	})

	It("says so when nothing matches", func() {
		out, err := execute("nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("No turns found."))
	})

	It("rejects a half-open range", func() {
		_, err := execute("--start", "2024-03-01T12:30:00Z", "alpha")
		Expect(err).To(MatchError(ContainSubstring("together")))
	})

	It("rejects a session id combined with --ip", func() {
		_, err := execute("--ip", "203.0.113.7", "alpha")
		Expect(err).To(HaveOccurred())
	})
})
