// Package tui is the terminal front end of the checkout.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/model"
	"github.com/fairyhunter13/checkout/internal/view"
)

type loadedMsg struct{ err error }

// Model drives one checkout from the keyboard.
type Model struct {
	ctx    context.Context
	co     *checkout.Checkout
	src    checkout.Fetcher
	cursor int
	status string
}

// New returns a model that loads from src when the program starts.
func New(ctx context.Context, co *checkout.Checkout, src checkout.Fetcher) Model {
	return Model{ctx: ctx, co: co, src: src}
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.co.Load(m.ctx, m.src)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.status = "Press q to quit."
		}
	case tea.KeyMsg:
		rows := len(m.co.Snapshot().Products)
		switch msg.String() {
		case "ctrl+c", "q":
			m.co.Close()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < rows-1 {
				m.cursor++
			}
		case "+", "right", "l":
			m.status = m.adjust(m.co.Increment)
		case "-", "left", "h":
			m.status = m.adjust(m.co.Decrement)
		}
	}
	return m, nil
}

// adjust applies fn to the selected product and returns the status line.
func (m Model) adjust(fn func(string) (model.Product, error)) string {
	products := m.co.Snapshot().Products
	if m.cursor < 0 || m.cursor >= len(products) {
		return ""
	}
	if _, err := fn(products[m.cursor].ID); err != nil {
		return err.Error()
	}
	return ""
}

func (m Model) View() string {
	out := view.Text(view.Build(m.co.Snapshot()), m.cursor)
	if m.status != "" {
		out += "\n" + m.status + "\n"
	}
	return out + "\nControls: up/down select, +/- change quantity, q to quit\n"
}
