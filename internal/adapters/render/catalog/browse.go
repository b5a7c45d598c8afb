package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Catalog is the part of application.CatalogSync the browse program drives.
type Catalog interface {
	Filter() domain.QueryFilter
	SetFilter(f domain.QueryFilter)
	Refresh(ctx context.Context, kinds ...domain.ViewKind) application.RefreshReport
	Snapshot() application.CatalogSnapshot
}

// SnapshotMsg delivers a catalog update to a running browse program.
type SnapshotMsg application.CatalogSnapshot

type refreshDoneMsg struct {
	report application.RefreshReport
}

const browseHelp = "type to search · tab type · shift+tab collection · ↑/↓ select · ctrl+r refresh · esc quit"

// BrowseModel is the interactive catalog view. Typing edits the search text, and
// every change goes through Catalog.SetFilter so fetching stays debounced.
type BrowseModel struct {
	ctx     context.Context
	catalog Catalog
	styles  styles
	now     func() time.Time

	input   textinput.Model
	spinner spinner.Model

	snap       application.CatalogSnapshot
	refreshing bool
	notice     string
	cursor     int
	typeIdx    int
	collIdx    int
}

func NewBrowseModel(ctx context.Context, c Catalog) BrowseModel {
	in := textinput.New()
	in.Placeholder = "search assets"
	in.Prompt = "search: "
	in.CharLimit = 120
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	f := c.Filter()
	in.SetValue(f.Search)

	m := BrowseModel{
		ctx:     ctx,
		catalog: c,
		styles:  newStyles(),
		now:     time.Now,
		input:   in,
		spinner: sp,
		snap:    c.Snapshot(),
	}
	m.typeIdx = indexOfType(f.Type)
	m.input.PromptStyle = m.styles.prompt
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.refresh())
}

func (m BrowseModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{report: m.catalog.Refresh(m.ctx)}
	}
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = application.CatalogSnapshot(msg)
		m.cursor = min(m.cursor, max(len(m.snap.Assets)-1, 0))
		return m, nil

	case refreshDoneMsg:
		m.refreshing = false
		m.notice = ""
		if err := msg.report.Err(); err != nil {
			m.notice = err.Error()
		}
		m.snap = m.catalog.Snapshot()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyCtrlR:
		m.refreshing = true
		return m, m.refresh()
	case tea.KeyTab:
		m.typeIdx = (m.typeIdx + 1) % (len(domain.AssetTypes) + 1)
		m.applyFilter()
		return m, nil
	case tea.KeyShiftTab:
		m.collIdx = (m.collIdx + 1) % (len(m.snap.Collections) + 1)
		m.applyFilter()
		return m, nil
	case tea.KeyUp:
		m.cursor = max(m.cursor-1, 0)
		return m, nil
	case tea.KeyDown:
		m.cursor = min(m.cursor+1, max(len(m.snap.Assets)-1, 0))
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m *BrowseModel) applyFilter() {
	f := domain.QueryFilter{Search: m.input.Value()}
	if m.typeIdx > 0 {
		f.Type = domain.AssetTypes[m.typeIdx-1]
	}
	if m.collIdx > 0 && m.collIdx <= len(m.snap.Collections) {
		f.CollectionID = m.snap.Collections[m.collIdx-1].ID
	}
	m.catalog.SetFilter(f)
	m.snap.Filter = f
	m.cursor = 0
}

// Pending reports whether the listing on screen lags behind the typed filter.
func (m BrowseModel) Pending() bool {
	return m.refreshing || m.snap.Filter.Key() != m.snap.AppliedFilter.Key()
}

func (m BrowseModel) View() string {
	status := m.styles.header.Render("up to date")
	if m.Pending() {
		status = m.spinner.View() + " " + m.styles.header.Render("loading")
	}

	lines := []string{
		m.input.View(),
		status,
		renderView(m.snap, RenderOptions{Selected: m.cursor, Now: m.now()}, m.styles),
	}
	if m.notice != "" {
		lines = append(lines, m.styles.warning.Render(m.notice))
	}
	lines = append(lines, m.styles.empty.Render(browseHelp))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SelectedAsset returns the highlighted asset, if the listing is not empty.
func (m BrowseModel) SelectedAsset() (domain.Asset, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Assets) {
		return domain.Asset{}, false
	}
	return m.snap.Assets[m.cursor], true
}

func indexOfType(t domain.AssetType) int {
	for i, candidate := range domain.AssetTypes {
		if strings.EqualFold(string(candidate), string(t)) {
			return i + 1
		}
	}
	return 0
}
