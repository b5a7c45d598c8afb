// Package catalog renders catalog snapshots for the terminal, both as a one-shot
// view and as the interactive browse program.
package catalog

import (
	"errors"
	"io"

	"github.com/bnema/assetforge-cli/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	snap   application.CatalogSnapshot
	opts   RenderOptions
	styles styles
	output string
}

func newModel(snap application.CatalogSnapshot, opts RenderOptions) model {
	return model{
		snap:   snap,
		opts:   opts,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.snap, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render lays out snap once, without a terminal.
func Render(snap application.CatalogSnapshot, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(snap, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
