// Package ui holds the interactive chat surface. The replay core is
// consumed through its public entry points only; everything here is
// presentation.
package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anomredux/gemini-replay/internal/replay"
)

// replyMsg carries the result of an in-flight chat request.
type replyMsg struct {
	resp *replay.ChatResponse
	err  error
}

type turn struct {
	role string // "user" or "assistant"
	text string
}

// Chat is a minimal line-oriented chat loop over a replay client.
type Chat struct {
	client *replay.Client
	model  string
	system string

	turns   []turn
	input   []rune
	waiting bool
	lastErr error
	width   int
}

func NewChat(client *replay.Client, model, systemPrompt string) *Chat {
	return &Chat{
		client: client,
		model:  model,
		system: systemPrompt,
		width:  80,
	}
}

func (c *Chat) Init() tea.Cmd { return nil }

func (c *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width

	case replyMsg:
		c.waiting = false
		if msg.err != nil {
			c.lastErr = msg.err
			return c, nil
		}
		c.lastErr = nil
		c.turns = append(c.turns, turn{role: "assistant", text: msg.resp.Text})

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Quits the input loop only; a request already sent keeps
			// running on the backend and its reply is dropped.
			return c, tea.Quit
		case "enter":
			if c.waiting || len(c.input) == 0 {
				return c, nil
			}
			message := string(c.input)
			c.input = nil
			cmd := c.send(message)
			c.turns = append(c.turns, turn{role: "user", text: message})
			c.waiting = true
			return c, cmd
		case "backspace":
			if len(c.input) > 0 {
				c.input = c.input[:len(c.input)-1]
			}
		default:
			switch msg.Type {
			case tea.KeyRunes:
				c.input = append(c.input, msg.Runes...)
			case tea.KeySpace:
				c.input = append(c.input, ' ')
			}
		}
	}
	return c, nil
}

// send builds the history from the turns before this message and fires
// the request. The request context is deliberately not tied to the UI:
// quitting must never abort a request mid-flight.
func (c *Chat) send(message string) tea.Cmd {
	history := make([]replay.Message, 0, len(c.turns))
	for _, t := range c.turns {
		history = append(history, replay.Message{Role: t.role, Content: t.text})
	}
	client, model, system := c.client, c.model, c.system
	return func() tea.Msg {
		resp, err := client.Chat(context.Background(), message, replay.ChatOptions{
			Model:        model,
			SystemPrompt: system,
			History:      history,
		})
		return replyMsg{resp: resp, err: err}
	}
}

func (c *Chat) View() string {
	var b strings.Builder

	b.WriteString(hintStyle.Render("chat via captured session · "+c.model+" · esc to quit") + "\n\n")

	wrap := lipgloss.NewStyle().Width(c.width)
	for _, t := range c.turns {
		label := userLabelStyle.Render("you")
		if t.role == "assistant" {
			label = modelLabelStyle.Render("model")
		}
		b.WriteString(label + "\n")
		b.WriteString(wrap.Render(bodyStyle.Render(t.text)) + "\n\n")
	}

	if c.lastErr != nil {
		b.WriteString(errorStyle.Render(c.lastErr.Error()) + "\n\n")
	}

	if c.waiting {
		b.WriteString(hintStyle.Render("waiting for reply…") + "\n")
	} else {
		b.WriteString(promptStyle.Render("> ") + string(c.input))
	}

	return b.String()
}
