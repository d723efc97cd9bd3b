package chatcmder

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/chatbot/cmd/chatbot/client"
	"github.com/papercomputeco/chatbot/cmd/chatbot/render"
	"github.com/papercomputeco/chatbot/pkg/config"
)

const chatLongDesc string = `Start an interactive chat with a running chatbot server.

Every message is sent to the server's /chat/send endpoint within one
session. Replies are rendered as markdown. Press Esc or Ctrl+C to quit.

Examples:
  chatbot chat
  chatbot chat --server http://192.168.1.42:8080
  chatbot chat --session session_1a2b3c4d`

const chatShortDesc string = "Interactive chat with a chatbot server"

type chatCommander struct {
	serverURL string
	sessionID string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.serverURL, "server", client.DefaultServerURL, "Chatbot server URL")
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "S", "", "Session id to continue")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cl := client.New(c.serverURL)

	if _, err := cl.Health(ctx); err != nil {
		return fmt.Errorf("chatbot server at %s is not reachable: %w", c.serverURL, err)
	}

	m := newModel(ctx, cl, c.sessionID, render.IsTerminal(cmd.OutOrStdout()), config.DefaultMaxMessageLength)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}

	if fm, ok := final.(model); ok && fm.sessionID != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "session:", fm.sessionID)
	}
	return nil
}
