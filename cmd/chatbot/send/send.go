package sendcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbot/cmd/chatbot/client"
	"github.com/papercomputeco/chatbot/cmd/chatbot/render"
)

const sendLongDesc string = `Send one message to a running chatbot server and print the reply.

Without --session a new session is started; its id is printed after the
reply so it can be passed back with --session to continue the conversation.
On a terminal the reply is rendered as markdown unless --raw is given.

Examples:
  chatbot send "What is a goroutine?"
  chatbot send --session session_1a2b3c4d "And a channel?"
  chatbot send --server http://192.168.1.42:8080 --raw hello`

const sendShortDesc string = "Send a message to a chatbot server"

type sendCommander struct {
	serverURL string
	sessionID string
	raw       bool
}

func NewSendCmd() *cobra.Command {
	cmder := &sendCommander{}

	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: sendShortDesc,
		Long:  sendLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", client.DefaultServerURL, "Chatbot server URL")
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "S", "", "Session id to continue")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the reply without markdown rendering")

	return cmd
}

func (c *sendCommander) run(ctx context.Context, cmd *cobra.Command, message string) error {
	resp, err := client.New(c.serverURL).Send(ctx, message, c.sessionID)
	if err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	out := cmd.OutOrStdout()
	tty := render.IsTerminal(out)

	if c.raw || !tty {
		fmt.Fprintln(out, resp.AIResponse)
	} else {
		rendered, err := render.Markdown(resp.AIResponse, render.Width(out), true)
		if err != nil {
			return fmt.Errorf("could not render reply: %w", err)
		}
		fmt.Fprint(out, rendered)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), render.Muted.Render(
		fmt.Sprintf("session: %s (%d ms)", resp.SessionID, resp.ResponseTimeMs),
	))

	return nil
}
