package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/papercomputeco/chatbot/cmd/chatbot/chat"
	historycmder "github.com/papercomputeco/chatbot/cmd/chatbot/history"
	purgecmder "github.com/papercomputeco/chatbot/cmd/chatbot/purge"
	sendcmder "github.com/papercomputeco/chatbot/cmd/chatbot/send"
	servecmder "github.com/papercomputeco/chatbot/cmd/chatbot/serve"
	statscmder "github.com/papercomputeco/chatbot/cmd/chatbot/stats"
)

const rootLongDesc string = `chatbot is a chat backend in front of the Gemini text completion API.

Run the server with "chatbot serve", then talk to it with "chatbot send"
or "chatbot chat". Stored conversations in a local SQLite database can be
inspected with "chatbot history" and "chatbot stats" and removed with
"chatbot purge".`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chatbot",
		Short:         "Chat backend for the Gemini API",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		sendcmder.NewSendCmd(),
		chatcmder.NewChatCmd(),
		historycmder.NewHistoryCmd(),
		statscmder.NewStatsCmd(),
		purgecmder.NewPurgeCmd(),
	)

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
