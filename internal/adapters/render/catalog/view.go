package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/bnema/assetforge-cli/internal/application"
	"github.com/bnema/assetforge-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const typeBarWidth = 20

type RenderOptions struct {
	// Views limits the sections rendered. Empty means stats, assets and collections.
	Views []domain.ViewKind
	// Selected highlights an asset row; negative disables the highlight.
	Selected int
	Now      time.Time
	Lang     language.Tag
}

func (o RenderOptions) includes(kind domain.ViewKind) bool {
	return len(o.Views) == 0 || slices.Contains(o.Views, kind)
}

func (o RenderOptions) printer() *message.Printer {
	if o.Lang == language.Und {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(o.Lang)
}

func renderView(snap application.CatalogSnapshot, opts RenderOptions, s styles) string {
	p := opts.printer()
	lines := []string{
		s.title.Render("Asset Forge Library"),
		s.header.Render(describeFilter(snap.AppliedFilter, snap.Collections)),
	}

	for _, kind := range domain.AllViews {
		if !opts.includes(kind) {
			continue
		}

		var body string
		switch kind {
		case domain.ViewStats:
			body = renderStats(snap, p, s)
		case domain.ViewAssets:
			body = renderAssets(snap, opts, p, s)
		case domain.ViewCollections:
			body = renderCollections(snap, p, s)
		}
		if err := snap.Errors[kind]; err != nil {
			body = lipgloss.JoinVertical(lipgloss.Left, body, errorLine(kind, err, snap.Loaded[kind], s))
		}
		lines = append(lines, s.section.Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func describeFilter(f domain.QueryFilter, collections []domain.Collection) string {
	n := f.Normalize()
	parts := make([]string, 0, 3)
	if n.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", n.Search))
	}
	if n.Type != "" {
		parts = append(parts, "type "+n.Type.Label())
	}
	if n.CollectionID != "" {
		parts = append(parts, "collection "+collectionName(n.CollectionID, collections))
	}
	if len(parts) == 0 {
		return "filter: none"
	}
	return "filter: " + strings.Join(parts, ", ")
}

func renderStats(snap application.CatalogSnapshot, p *message.Printer, s styles) string {
	title := s.sectionKey.Render("Overview")
	if !snap.Loaded[domain.ViewStats] {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("Stats not loaded."))
	}

	st := snap.Stats
	line := s.detail.Render(p.Sprintf("assets: %d  collections: %d  storage: %s",
		st.TotalAssets, st.TotalCollections, domain.FormatFileSize(st.TotalStorageBytes)))
	return lipgloss.JoinVertical(lipgloss.Left, title, line)
}

func renderAssets(snap application.CatalogSnapshot, opts RenderOptions, p *message.Printer, s styles) string {
	title := s.sectionKey.Render(p.Sprintf("Assets (%d)", len(snap.Assets)))
	if !snap.Loaded[domain.ViewAssets] {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("Assets not loaded."))
	}
	if len(snap.Assets) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("No assets match the current filter."))
	}

	lines := []string{title}
	lines = append(lines, typeBreakdown(snap.Assets, p, s)...)
	for i, a := range snap.Assets {
		lines = append(lines, assetLine(a, i == opts.Selected, snap.Collections, opts.Now, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func assetLine(a domain.Asset, selected bool, collections []domain.Collection, now time.Time, s styles) string {
	marker, name := "  ", s.assetName.Render(a.Name)
	if selected {
		marker, name = s.selected.Render("> "), s.selected.Render(a.Name)
	}

	fields := []string{
		marker + name,
		s.badge.Render("[" + a.Type.Label() + "]"),
		s.detail.Render(domain.FormatFileSize(a.FileSize)),
		s.detail.Render(fmt.Sprintf("v%d", a.Version)),
	}
	if a.CollectionID != "" {
		fields = append(fields, s.detail.Render("in "+collectionName(a.CollectionID, collections)))
	}
	if len(a.Tags) > 0 {
		fields = append(fields, s.tags.Render("#"+strings.Join(a.Tags, " #")))
	}
	if !a.CreatedAt.IsZero() {
		fields = append(fields, s.header.Render(formatCreated(a.CreatedAt, now)))
	}
	fields = append(fields, s.header.Render(string(a.ID)))

	return strings.Join(fields, " ")
}

func typeBreakdown(assets []domain.Asset, p *message.Printer, s styles) []string {
	counts := make(map[domain.AssetType]int, len(domain.AssetTypes))
	for _, a := range assets {
		counts[a.Type]++
	}

	lines := make([]string, 0, len(domain.AssetTypes))
	for _, t := range domain.AssetTypes {
		n := counts[t]
		if n == 0 {
			continue
		}
		share := 100 * float64(n) / float64(len(assets))
		label := s.detail.Render(fmt.Sprintf("%-9s", t.Label()))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			"  ", label, " ", renderShareBar(share, typeBarWidth, s), " ", s.header.Render(p.Sprintf("%d", n))))
	}
	return lines
}

func renderCollections(snap application.CatalogSnapshot, p *message.Printer, s styles) string {
	title := s.sectionKey.Render(p.Sprintf("Collections (%d)", len(snap.Collections)))
	if !snap.Loaded[domain.ViewCollections] {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("Collections not loaded."))
	}
	if len(snap.Collections) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.empty.Render("No collections yet."))
	}

	lines := []string{title}
	for _, c := range snap.Collections {
		noun := "assets"
		if c.AssetCount == 1 {
			noun = "asset"
		}
		line := fmt.Sprintf("  %s %s %s %s", swatch(c.Color), s.assetName.Render(c.Name),
			s.detail.Render(p.Sprintf("(%d %s)", c.AssetCount, noun)), s.header.Render(string(c.ID)))
		if d := strings.TrimSpace(c.Description); d != "" {
			line += " " + s.tags.Render(d)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func errorLine(kind domain.ViewKind, err error, cached bool, s styles) string {
	line := s.warning.Render(fmt.Sprintf("Failed to load %s: %v", kind, errorCause(err)))
	if cached {
		line += " " + s.warning.Render("[stale]")
	}
	return line
}

// errorCause drops the "load <kind>:" prefix already carried by the line.
func errorCause(err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err
	}
	return err
}

func renderShareBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatCreated(created, now time.Time) string {
	if now.IsZero() {
		return created.Format("02 Jan 2006")
	}

	age := now.Sub(created)
	switch {
	case age < 0:
		return created.Format("02 Jan 2006")
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return plural(int(age.Minutes()), "minute") + " ago"
	case age < 24*time.Hour:
		return plural(int(age.Hours()), "hour") + " ago"
	case age < 7*24*time.Hour:
		return plural(int(age.Hours()/24), "day") + " ago"
	default:
		return created.Format("02 Jan 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func collectionName(id domain.CollectionID, collections []domain.Collection) string {
	for _, c := range collections {
		if c.ID == id {
			return c.Name
		}
	}
	return string(id)
}
