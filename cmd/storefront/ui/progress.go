package ui

import (
	"strings"

	"storefront/internal/types"
)

// RenderProgress draws the fulfillment progress track for an order.
// Cancelled, returned and refunded orders get a single status line
// instead of the track, since they left the normal flow.
func RenderProgress(styles Styles, status types.OrderStatus) string {
	current, ok := status.ProgressStep()
	if !ok {
		if status.TerminalException() {
			return styles.Error.Render("✗ " + status.Label())
		}
		return styles.Muted.Render(status.Label())
	}

	var track strings.Builder
	var labels strings.Builder
	for i, label := range types.ProgressSteps {
		var marker string
		switch {
		case i < current:
			marker = styles.Success.Render("●")
		case i == current:
			marker = styles.Prompt.Render("◉")
		default:
			marker = styles.Muted.Render("○")
		}
		track.WriteString(marker)

		labelStyle := styles.Muted
		if i == current {
			labelStyle = styles.Bold
		}
		labels.WriteString(labelStyle.Render(label))

		if i < len(types.ProgressSteps)-1 {
			connector := "────"
			if i < current {
				track.WriteString(styles.Success.Render(connector))
			} else {
				track.WriteString(styles.Muted.Render(connector))
			}
			labels.WriteString("  ")
		}
	}

	return track.String() + "\n" + labels.String()
}
