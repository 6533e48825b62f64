package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/checkout/internal/catalog"
	"github.com/fairyhunter13/checkout/internal/checkout"
	"github.com/fairyhunter13/checkout/internal/model"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func started(t *testing.T, src checkout.Fetcher) (Model, *checkout.Checkout) {
	t.Helper()
	co := checkout.New("tui", nil)
	m := New(context.Background(), co, src)
	assert.Contains(t, m.View(), "Loading...")
	next, _ := m.Update(m.Init()())
	return next.(Model), co
}

func send(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestModel_AdjustsSelectedRow(t *testing.T) {
	m, co := started(t, catalog.Static{
		{ID: "a", Name: "Laptop", AvailableCount: 1, Price: decimal.NewFromInt(600)},
		{ID: "b", Name: "Tablet", AvailableCount: 3, Price: decimal.NewFromInt(500)},
	})
	m = send(m, "down", "+", "+", "up", "+")
	st := co.Snapshot()
	require.Equal(t, checkout.StatusLoaded, st.Status)
	assert.Equal(t, 1, st.Products[0].OrderedQuantity)
	assert.Equal(t, 2, st.Products[1].OrderedQuantity)
	assert.Contains(t, m.View(), "Total: $1440.00")

	m = send(m, "+")
	assert.Contains(t, m.View(), "exceed available")
	m = send(m, "-", "-")
	assert.Contains(t, m.View(), "below zero")
	assert.Equal(t, 0, co.Snapshot().Products[0].OrderedQuantity)
}

func TestModel_CursorStaysInRange(t *testing.T) {
	m, _ := started(t, catalog.Static{{ID: "a", AvailableCount: 1, Price: decimal.NewFromInt(1)}})
	m = send(m, "up", "down", "down")
	assert.Equal(t, 0, m.cursor)
}

func TestModel_FailedLoad(t *testing.T) {
	m, co := started(t, catalog.SourceFunc(func(context.Context) ([]model.Product, error) {
		return nil, errors.New("no catalog")
	}))
	assert.Equal(t, checkout.StatusFailed, co.Snapshot().Status)
	assert.Contains(t, m.View(), "Failed to load products: no catalog")
	m = send(m, "+")
	assert.NotContains(t, m.View(), "not loaded")
}

func TestModel_Quit(t *testing.T) {
	m, _ := started(t, catalog.Static{})
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
