package chat_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbot/pkg/chat"
	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage/inmemory"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		completer *fakeCompleter
		driver    *inmemory.Driver
		svc       *chat.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		completer = &fakeCompleter{reply: "Hello there"}
		driver = inmemory.NewDriver()
		svc = chat.NewService(completer, driver, zap.NewNop())
	})

	AfterEach(func() {
		driver.Close()
	})

	Describe("ProcessChatRequest", func() {
		Context("session resolution", func() {
			DescribeTable("keeps a non-blank supplied session id unchanged",
				func(supplied string) {
					outcome := svc.ProcessChatRequest(ctx, "Hi", supplied, "127.0.0.1")
					Expect(outcome.Success()).To(BeTrue())
					Expect(outcome.SessionID).To(Equal(supplied))
				},
				Entry("generated-looking id", "session_1234abcd"),
				Entry("arbitrary id", "my-conversation"),
				Entry("id with surrounding spaces", "  padded  "),
			)

			DescribeTable("generates a session id when none is supplied",
				func(supplied string) {
					outcome := svc.ProcessChatRequest(ctx, "Hi", supplied, "127.0.0.1")
					Expect(outcome.Success()).To(BeTrue())
					Expect(outcome.SessionID).To(MatchRegexp(`^session_[0-9a-f]{8}$`))
				},
				Entry("empty", ""),
				Entry("spaces", "   "),
				Entry("tabs and newlines", "\t\n"),
			)

			It("uses the configured generator", func() {
				svc = chat.NewService(completer, driver, zap.NewNop(),
					chat.WithSessionIDGenerator(func() string { return "session_fixed00" }))

				outcome := svc.ProcessChatRequest(ctx, "Hi", "", "")
				Expect(outcome.SessionID).To(Equal("session_fixed00"))
			})
		})

		It("returns the completion with a non-negative response time", func() {
			outcome := svc.ProcessChatRequest(ctx, "Hi", "session_a", "127.0.0.1")

			Expect(outcome.Status).To(Equal(chat.StatusSuccess))
			Expect(outcome.AIResponse).To(Equal("Hello there"))
			Expect(outcome.ResponseTimeMs).To(BeNumerically(">=", 0))
			Expect(outcome.Message).To(BeEmpty())
			Expect(outcome.Timestamp).NotTo(BeZero())
			Expect(completer.prompts).To(Equal([]string{"Hi"}))
		})

		It("persists the turn", func() {
			outcome := svc.ProcessChatRequest(ctx, "Hi", "session_a", "10.1.2.3")

			turns, err := driver.ListBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].UserMessage).To(Equal("Hi"))
			Expect(turns[0].AIResponse).To(Equal("Hello there"))
			Expect(turns[0].ClientIP).To(Equal("10.1.2.3"))
			Expect(turns[0].ResponseTimeMs).To(BeNumerically("<=", outcome.ResponseTimeMs))
		})

		It("stores fallback text like any other reply", func() {
			completer.reply = llm.FallbackResponse

			outcome := svc.ProcessChatRequest(ctx, "Hi", "session_a", "")
			Expect(outcome.Success()).To(BeTrue())
			Expect(outcome.AIResponse).To(Equal(llm.FallbackResponse))
		})

		It("returns an error outcome when the completer fails", func() {
			completer.err = errors.New("upstream returned 503")

			outcome := svc.ProcessChatRequest(ctx, "Hi", "session_a", "")
			Expect(outcome.Status).To(Equal(chat.StatusError))
			Expect(outcome.Message).To(Equal("Failed to process chat request: upstream returned 503"))
			Expect(outcome.AIResponse).To(BeEmpty())
			Expect(outcome.SessionID).To(BeEmpty())

			count, err := driver.CountBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("returns an error outcome when the store fails", func() {
			svc = chat.NewService(completer, failingDriver{Driver: driver}, zap.NewNop())

			outcome := svc.ProcessChatRequest(ctx, "Hi", "session_a", "")
			Expect(outcome.Success()).To(BeFalse())
			Expect(outcome.Message).To(ContainSubstring("disk full"))
		})
	})

	Describe("GetSessionStats", func() {
		It("returns zero values for a session with no turns", func() {
			stats, err := svc.GetSessionStats(ctx, "empty")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.SessionID).To(Equal("empty"))
			Expect(stats.MessageCount).To(BeZero())
			Expect(stats.FirstMessage).To(BeNil())
			Expect(stats.LastMessage).To(BeNil())
			Expect(stats.TotalResponseTime).To(BeZero())
			Expect(stats.AverageResponseTime).To(BeZero())
		})

		It("aggregates latencies and bounds", func() {
			base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
			for i, latency := range []int64{100, 200, 300} {
				turn := llm.NewConversationTurn("q", "a", "session_s")
				turn.Timestamp = base.Add(time.Duration(i) * time.Minute)
				turn.ResponseTimeMs = latency
				_, err := driver.Append(ctx, turn)
				Expect(err).NotTo(HaveOccurred())
			}

			stats, err := svc.GetSessionStats(ctx, "session_s")
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.MessageCount).To(Equal(int64(3)))
			Expect(stats.TotalResponseTime).To(Equal(int64(600)))
			Expect(stats.AverageResponseTime).To(Equal(200.0))
			Expect(*stats.FirstMessage).To(BeTemporally("==", base))
			Expect(*stats.LastMessage).To(BeTemporally("==", base.Add(2*time.Minute)))
		})
	})

	Describe("pass-through queries", func() {
		BeforeEach(func() {
			svc.ProcessChatRequest(ctx, "one", "session_p", "1.1.1.1")
			svc.ProcessChatRequest(ctx, "two", "session_p", "1.1.1.1")
			svc.ProcessChatRequest(ctx, "three", "session_q", "2.2.2.2")
		})

		It("lists history for a session", func() {
			turns, err := svc.GetChatHistory(ctx, "session_p")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
		})

		It("lists history within a time range", func() {
			turns, err := svc.GetChatHistoryByTimeRange(ctx, "session_p",
				time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
		})

		It("bounds recent messages", func() {
			turns, err := svc.GetRecentMessages(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
		})

		It("lists messages by client ip", func() {
			turns, err := svc.GetMessagesByClientIP(ctx, "2.2.2.2")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].UserMessage).To(Equal("three"))
		})

		It("deletes a session's history", func() {
			Expect(svc.DeleteSessionHistory(ctx, "session_p")).To(Succeed())

			turns, err := svc.GetChatHistory(ctx, "session_p")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})
})

var _ = Describe("NewSessionID", func() {
	It("starts with the prefix and has an 8 character hex suffix", func() {
		id := chat.NewSessionID()
		Expect(id).To(HavePrefix(chat.SessionIDPrefix))
		Expect(id).To(MatchRegexp(`^session_[0-9a-f]{8}$`))
	})

	It("produces different ids", func() {
		Expect(chat.NewSessionID()).NotTo(Equal(chat.NewSessionID()))
	})
})
