// ABOUTME: Progress bar widgets for upload and loading displays
// ABOUTME: Renders simple and labeled bars with lipgloss coloring

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBarConfig holds configuration for the progress bar
type ProgressBarConfig struct {
	Width      int
	FillColor  lipgloss.Color
	DoneColor  lipgloss.Color
	EmptyColor lipgloss.Color
}

// DefaultProgressBarConfig returns sensible defaults
func DefaultProgressBarConfig() ProgressBarConfig {
	return ProgressBarConfig{
		Width:      20,
		FillColor:  lipgloss.Color("#3B82F6"), // Blue while in flight
		DoneColor:  lipgloss.Color("#10B981"), // Green at completion
		EmptyColor: lipgloss.Color("#374151"), // Dark gray
	}
}

// ProgressBar renders a colored progress bar
func ProgressBar(percent float64, config ProgressBarConfig) string {
	if config.Width <= 0 {
		config.Width = 20
	}

	// Clamp percent
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(config.Width))
	if filled > config.Width {
		filled = config.Width
	}

	fillColor := config.FillColor
	if percent >= 100 {
		fillColor = config.DoneColor
	}

	var bar strings.Builder
	bar.WriteString("[")

	fillStyle := lipgloss.NewStyle().Foreground(fillColor)
	emptyStyle := lipgloss.NewStyle().Foreground(config.EmptyColor)

	for i := 0; i < config.Width; i++ {
		if i < filled {
			bar.WriteString(fillStyle.Render("█"))
		} else {
			bar.WriteString(emptyStyle.Render("░"))
		}
	}

	bar.WriteString("]")
	return bar.String()
}

// ProgressBarWithLabel renders the bar with a trailing percentage
func ProgressBarWithLabel(percent float64, config ProgressBarConfig) string {
	bar := ProgressBar(percent, config)

	color := config.FillColor
	if percent >= 100 {
		color = config.DoneColor
	}

	percentStr := fmt.Sprintf("%3.0f%%", percent)
	return fmt.Sprintf("%s %s", bar, lipgloss.NewStyle().Foreground(color).Render(percentStr))
}

// CompactProgressBar renders a minimal progress bar for tight spaces
func CompactProgressBar(percent float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 10
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	empty := width - filled

	filledStr := strings.Repeat("▓", filled)
	emptyStr := strings.Repeat("░", empty)

	return lipgloss.NewStyle().Foreground(color).Render(filledStr) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#374151")).Render(emptyStr)
}
