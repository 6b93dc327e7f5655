// Package shell is the display's outer surface: the HTTP API order terminals
// post to, and the websocket feed browsers render from.
package shell

import "github.com/scvi-aria/deko/internal/domain"

// IdleStatus invites customers to order while nothing is playing.
const IdleStatus = "Scan to order"

// StatusText is the status line the UI shows under the display.
func StatusText(stage domain.Stage, label string) string {
	if stage == domain.StageIdle {
		return IdleStatus
	}
	return label
}
