// ABOUTME: KPI pane rendering the dashboard's aggregate mapping counters
// ABOUTME: Lays out metric blocks in rows above the mapping grid

package kpi

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mappingdesk/skumap/internal/client"
	"github.com/mappingdesk/skumap/internal/tui/icons"
	"github.com/mappingdesk/skumap/internal/tui/styles"
	"github.com/mappingdesk/skumap/internal/tui/widgets"
)

// Pane displays the KPI counters from the dashboard payload
type Pane struct {
	snapshot *client.KpiSnapshot
	width    int
}

// New creates an empty KPI pane
func New(width int) *Pane {
	return &Pane{width: width}
}

// Update replaces the displayed snapshot
func (p *Pane) Update(snapshot *client.KpiSnapshot) {
	p.snapshot = snapshot
}

// SetWidth updates the pane width
func (p *Pane) SetWidth(width int) {
	p.width = width
}

type metric struct {
	icon  icons.Icon
	title string
	value int
	label string
}

// View renders the KPI blocks
func (p *Pane) View() string {
	if p.snapshot == nil {
		return styles.Subtitle.Render("Loading KPIs...")
	}

	s := p.snapshot
	metrics := []metric{
		{icons.Warning, "Unmapped", s.NullIMSKU, "null Linnworks SKU"},
		{icons.SKU, "Linnworks", s.UniqueIMSKU, "unique SKUs"},
		{icons.SKU, "Marketplace", s.UniqueMarketplaceSKU, "unique SKUs"},
		{icons.Chart, "Regions", s.UniqueRegions, "unique regions"},
		{icons.Warning, "Titles", s.LinTitleToBeMapped, "titles to map"},
		{icons.Warning, "Categories", s.LinCategoryToBeMapped, "categories to map"},
		{icons.Warning, "No parent", s.NullParentSKU, "null parent SKU"},
		{icons.SKU, "Parents", s.UniqueParentSKU, "unique parent SKUs"},
		{icons.Critical, "Abandoned", s.UniqueIMSKUAbandonedItems, "SKUs w/ abandoned"},
	}

	config := widgets.DefaultMetricBlockConfig()
	perRow := p.width / (config.Width + 1)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for start := 0; start < len(metrics); start += perRow {
		end := start + perRow
		if end > len(metrics) {
			end = len(metrics)
		}

		var blocks []string
		for _, m := range metrics[start:end] {
			blocks = append(blocks, widgets.CountBlock(m.icon, m.title, m.value, m.label, config))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
