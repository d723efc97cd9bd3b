package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatbot/cmd/chatbot/client"
)

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("decodes a successful reply", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/chat/send"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"aiResponse":"hi","sessionId":"session_abc","responseTimeMs":3,"status":"SUCCESS"}`))
		}))
		defer srv.Close()

		resp, err := client.New(srv.URL+"/").Send(ctx, "hello", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.AIResponse).To(Equal("hi"))
		Expect(resp.SessionID).To(Equal("session_abc"))
	})

	It("surfaces the error envelope message", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"ERROR","message":"User message cannot be empty"}`))
		}))
		defer srv.Close()

		_, err := client.New(srv.URL).Send(ctx, "", "")
		Expect(err).To(HaveOccurred())

		var serverErr *client.ServerError
		Expect(errors.As(err, &serverErr)).To(BeTrue())
		Expect(serverErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(serverErr.Message).To(Equal("User message cannot be empty"))
	})

	It("falls back to the raw body for non-JSON errors", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := client.New(srv.URL).Health(ctx)
		Expect(err).To(MatchError("server returned 502: bad gateway"))
	})
})
