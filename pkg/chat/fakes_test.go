package chat_test

import (
	"context"
	"errors"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage"
)

// fakeCompleter returns a canned reply or error and records prompts.
type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// failingDriver wraps a driver and fails every Append.
type failingDriver struct {
	storage.Driver
}

var errDiskFull = errors.New("disk full")

func (f failingDriver) Append(context.Context, *llm.ConversationTurn) (*llm.ConversationTurn, error) {
	return nil, errDiskFull
}
