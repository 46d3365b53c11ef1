package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/types"
)

func TestThemeFor(t *testing.T) {
	assert.True(t, ThemeFor("dark").IsDark)
	assert.False(t, ThemeFor("light").IsDark)
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "")
	assert.False(t, DetectTheme().IsDark)
}

func TestTable_View(t *testing.T) {
	tbl := NewTable("Products", "Name", "Price")
	tbl.AddRow("Widget", "$19.99")
	tbl.AddRow("Gadget", "$5.00")

	out := tbl.View(DefaultStyles())
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "Widget")
	assert.Contains(t, out, "$5.00")
}

func TestTable_EmptyMessage(t *testing.T) {
	tbl := NewTable("Orders", "Order #", "Status")
	tbl.Empty = "No orders yet."

	out := tbl.View(DefaultStyles())
	assert.Contains(t, out, "No orders yet.")
	assert.NotContains(t, out, "Order #")
}

func TestTable_EmptyWithoutMessage(t *testing.T) {
	tbl := NewTable("Orders", "Order #")
	assert.Equal(t, "", tbl.View(DefaultStyles()))
}

func TestRenderProgress_ActiveStep(t *testing.T) {
	out := RenderProgress(DefaultStyles(), types.StatusShipped)
	for _, label := range types.ProgressSteps {
		assert.Contains(t, out, label)
	}
	assert.Contains(t, out, "◉")
}

func TestRenderProgress_TerminalException(t *testing.T) {
	out := RenderProgress(DefaultStyles(), types.StatusCancelled)
	assert.Contains(t, out, "CANCELLED")
	for _, label := range types.ProgressSteps {
		if !strings.Contains(out, label) {
			continue
		}
		t.Fatalf("progress track rendered for cancelled order: %q", out)
	}
}

func TestStatusStyle_CoversAllStatuses(t *testing.T) {
	styles := DefaultStyles()
	for _, status := range types.AllStatuses {
		// Rendering must not panic and must include the label.
		out := styles.StatusStyle(status).Render(status.Label())
		assert.Contains(t, out, status.Label())
	}
}
