package chatcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/chatbot/api"
	"github.com/papercomputeco/chatbot/cmd/chatbot/render"
)

// sender is the part of client.Client the model needs.
type sender interface {
	Send(ctx context.Context, message, sessionID string) (*api.ChatResponse, error)
}

type replyMsg struct {
	resp *api.ChatResponse
}

type errMsg struct {
	err error
}

type role int

const (
	roleUser role = iota
	roleBot
	roleError
)

type entry struct {
	role role
	text string
}

// footer lines: status and input
const footerHeight = 2

type model struct {
	ctx    context.Context
	sender sender

	sessionID string
	markdown  bool

	input    textinput.Model
	viewport viewport.Model

	transcript []entry
	waiting    bool
	ready      bool
	width      int
}

func newModel(ctx context.Context, s sender, sessionID string, markdown bool, maxLength int) model {
	ti := textinput.New()
	ti.Placeholder = "Type a message and press Enter"
	ti.Prompt = "> "
	ti.CharLimit = maxLength
	ti.Focus()

	return model{
		ctx:       ctx,
		sender:    s,
		sessionID: sessionID,
		markdown:  markdown,
		input:     ti,
		viewport:  viewport.New(render.DefaultWidth, 20),
		width:     render.DefaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-footerHeight, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.waiting {
				return m, nil
			}
			m.transcript = append(m.transcript, entry{role: roleUser, text: text})
			m.input.Reset()
			m.waiting = true
			m.refresh()
			return m, m.send(text)
		}

	case replyMsg:
		m.waiting = false
		m.sessionID = msg.resp.SessionID
		m.transcript = append(m.transcript, entry{role: roleBot, text: msg.resp.AIResponse})
		m.refresh()
		return m, nil

	case errMsg:
		m.waiting = false
		m.transcript = append(m.transcript, entry{role: roleError, text: msg.err.Error()})
		m.refresh()
		return m, nil
	}

	var inputCmd, viewportCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewportCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewportCmd)
}

func (m model) View() string {
	if !m.ready {
		return "connecting..."
	}

	status := "new session"
	if m.sessionID != "" {
		status = "session " + m.sessionID
	}
	if m.waiting {
		status += " | waiting for reply..."
	}
	status += " | esc to quit"

	return m.viewport.View() + "\n" + render.Muted.Render(status) + "\n" + m.input.View()
}

// send captures the session id at dispatch time; the reply carries the
// id the server settled on.
func (m model) send(text string) tea.Cmd {
	ctx, s, sessionID := m.ctx, m.sender, m.sessionID
	return func() tea.Msg {
		resp, err := s.Send(ctx, text, sessionID)
		if err != nil {
			return errMsg{err: err}
		}
		return replyMsg{resp: resp}
	}
}

func (m *model) refresh() {
	var b strings.Builder
	for _, e := range m.transcript {
		switch e.role {
		case roleUser:
			fmt.Fprintf(&b, "%s %s\n\n", render.User.Render("You:"), e.text)
		case roleBot:
			fmt.Fprintf(&b, "%s\n%s\n", render.Bot.Render("Bot:"), m.renderReply(e.text))
		case roleError:
			fmt.Fprintf(&b, "%s\n\n", render.Error.Render("error: "+e.text))
		}
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) renderReply(text string) string {
	if !m.markdown {
		return text + "\n"
	}
	out, err := render.Markdown(text, m.width, true)
	if err != nil {
		return text + "\n"
	}
	return out
}
