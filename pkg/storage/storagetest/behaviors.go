// Package storagetest holds the behavior specs every storage.Driver must pass.
package storagetest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage"
)

// DriverBehaviors registers the shared driver specs. newDriver is called once
// per spec and the returned driver is closed afterwards.
func DriverBehaviors(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	// makeTurn builds a turn offset from a fixed base time so ordering is deterministic.
	makeTurn := func(sessionID, message string, offset time.Duration) *llm.ConversationTurn {
		turn := llm.NewConversationTurn(message, "reply to "+message, sessionID)
		turn.Timestamp = base.Add(offset)
		turn.ClientIP = "10.0.0.1"
		turn.ResponseTimeMs = 100
		return turn
	}

	appendTurn := func(turn *llm.ConversationTurn) *llm.ConversationTurn {
		stored, err := driver.Append(ctx, turn)
		Expect(err).NotTo(HaveOccurred())
		return stored
	}

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("Append", func() {
		It("assigns an identifier", func() {
			stored := appendTurn(makeTurn("session_a", "hello", 0))
			Expect(stored.ID).To(BeNumerically(">", 0))
		})

		It("assigns distinct identifiers", func() {
			first := appendTurn(makeTurn("session_a", "one", 0))
			second := appendTurn(makeTurn("session_a", "two", time.Second))
			Expect(first.ID).NotTo(Equal(second.ID))
		})

		It("does not mutate the caller's turn", func() {
			turn := makeTurn("session_a", "hello", 0)
			appendTurn(turn)
			Expect(turn.ID).To(BeZero())
		})

		It("rejects nil turns", func() {
			_, err := driver.Append(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil turn"))
		})
	})

	Describe("Get", func() {
		It("round-trips every field", func() {
			turn := makeTurn("session_a", "hello", 0)
			turn.ResponseTimeMs = 321
			stored := appendTurn(turn)

			got, err := driver.Get(ctx, stored.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(stored.ID))
			Expect(got.UserMessage).To(Equal("hello"))
			Expect(got.AIResponse).To(Equal("reply to hello"))
			Expect(got.SessionID).To(Equal("session_a"))
			Expect(got.ClientIP).To(Equal("10.0.0.1"))
			Expect(got.ResponseTimeMs).To(Equal(int64(321)))
			Expect(got.Timestamp).To(BeTemporally("==", turn.Timestamp))
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := driver.Get(ctx, 9999)
			Expect(err).To(HaveOccurred())

			var notFoundErr storage.ErrNotFound
			Expect(err).To(BeAssignableToTypeOf(notFoundErr))
		})
	})

	Describe("ListBySession", func() {
		It("returns an appended turn exactly once with identical values", func() {
			stored := appendTurn(makeTurn("session_a", "hello", 0))

			turns, err := driver.ListBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].ID).To(Equal(stored.ID))
			Expect(turns[0].UserMessage).To(Equal(stored.UserMessage))
			Expect(turns[0].AIResponse).To(Equal(stored.AIResponse))
			Expect(turns[0].ClientIP).To(Equal(stored.ClientIP))
			Expect(turns[0].ResponseTimeMs).To(Equal(stored.ResponseTimeMs))
			Expect(turns[0].Timestamp).To(BeTemporally("==", stored.Timestamp))
		})

		It("orders turns by ascending timestamp", func() {
			appendTurn(makeTurn("session_a", "third", 2*time.Second))
			appendTurn(makeTurn("session_a", "first", 0))
			appendTurn(makeTurn("session_a", "second", time.Second))

			turns, err := driver.ListBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(3))
			Expect(turns[0].UserMessage).To(Equal("first"))
			Expect(turns[1].UserMessage).To(Equal("second"))
			Expect(turns[2].UserMessage).To(Equal("third"))
		})

		It("only returns turns from the requested session", func() {
			appendTurn(makeTurn("session_a", "a", 0))
			appendTurn(makeTurn("session_b", "b", 0))

			turns, err := driver.ListBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].SessionID).To(Equal("session_a"))
		})

		It("returns an empty slice for an unknown session", func() {
			turns, err := driver.ListBySession(ctx, "nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).NotTo(BeNil())
			Expect(turns).To(BeEmpty())
		})
	})

	Describe("ListBySessionInRange", func() {
		BeforeEach(func() {
			for i, msg := range []string{"t0", "t1", "t2", "t3"} {
				appendTurn(makeTurn("session_a", msg, time.Duration(i)*time.Minute))
			}
			appendTurn(makeTurn("session_b", "other", time.Minute))
		})

		It("includes both bounds", func() {
			turns, err := driver.ListBySessionInRange(ctx, "session_a", base.Add(time.Minute), base.Add(2*time.Minute))
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].UserMessage).To(Equal("t1"))
			Expect(turns[1].UserMessage).To(Equal("t2"))
		})

		It("returns nothing when the range is empty", func() {
			turns, err := driver.ListBySessionInRange(ctx, "session_a", base.Add(time.Hour), base.Add(2*time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	Describe("CountBySession", func() {
		It("matches the length of ListBySession", func() {
			appendTurn(makeTurn("session_a", "one", 0))
			appendTurn(makeTurn("session_a", "two", time.Second))
			appendTurn(makeTurn("session_b", "three", 0))

			count, err := driver.CountBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())

			turns, err := driver.ListBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(len(turns))))
			Expect(count).To(Equal(int64(2)))
		})

		It("is zero for an unknown session", func() {
			count, err := driver.CountBySession(ctx, "nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})
	})

	Describe("ListRecent", func() {
		BeforeEach(func() {
			for i := 0; i < 5; i++ {
				appendTurn(makeTurn("session_a", string(rune('a'+i)), time.Duration(i)*time.Second))
			}
		})

		It("orders by descending timestamp across sessions", func() {
			appendTurn(makeTurn("session_b", "newest", time.Hour))

			turns, err := driver.ListRecent(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(6))
			Expect(turns[0].UserMessage).To(Equal("newest"))
			Expect(turns[1].UserMessage).To(Equal("e"))
			Expect(turns[5].UserMessage).To(Equal("a"))
		})

		It("enforces the limit", func() {
			turns, err := driver.ListRecent(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].UserMessage).To(Equal("e"))
			Expect(turns[1].UserMessage).To(Equal("d"))
		})

		It("returns nothing for a non-positive limit", func() {
			turns, err := driver.ListRecent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(BeEmpty())
		})
	})

	Describe("ListByClientIP", func() {
		It("returns the client's turns newest first", func() {
			appendTurn(makeTurn("session_a", "old", 0))
			appendTurn(makeTurn("session_b", "new", time.Minute))
			other := makeTurn("session_a", "elsewhere", 2*time.Minute)
			other.ClientIP = "192.168.1.9"
			appendTurn(other)

			turns, err := driver.ListByClientIP(ctx, "10.0.0.1")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(2))
			Expect(turns[0].UserMessage).To(Equal("new"))
			Expect(turns[1].UserMessage).To(Equal("old"))
		})
	})

	Describe("DeleteBySession", func() {
		It("removes every turn in the session and leaves others", func() {
			appendTurn(makeTurn("session_a", "one", 0))
			appendTurn(makeTurn("session_a", "two", time.Second))
			appendTurn(makeTurn("session_b", "keep", 0))

			Expect(driver.DeleteBySession(ctx, "session_a")).To(Succeed())

			count, err := driver.CountBySession(ctx, "session_a")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			kept, err := driver.ListBySession(ctx, "session_b")
			Expect(err).NotTo(HaveOccurred())
			Expect(kept).To(HaveLen(1))
		})

		It("is a no-op for a session with no turns", func() {
			Expect(driver.DeleteBySession(ctx, "nope")).To(Succeed())

			count, err := driver.CountBySession(ctx, "nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("is idempotent", func() {
			appendTurn(makeTurn("session_a", "one", 0))

			Expect(driver.DeleteBySession(ctx, "session_a")).To(Succeed())
			Expect(driver.DeleteBySession(ctx, "session_a")).To(Succeed())
		})
	})
}
