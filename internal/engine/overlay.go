package engine

import (
	"github.com/scvi-aria/deko/internal/canvas"
	"github.com/scvi-aria/deko/internal/domain"
)

const (
	labelColor canvas.Color = 0x7C3AED
	orderColor canvas.Color = 0x666666
)

// idleCaption sits under the QR code on the idle screen.
const idleCaption = "Scan to view our menu"

// drawOverlay writes the stage label and order line above the scene. On the
// idle screen it adds the menu QR placeholder when a website is configured.
func (e *Engine) drawOverlay(c *canvas.Canvas) {
	w, h := e.size.Width, e.size.Height
	stage := e.machine.stage

	c.Text(e.stages.Get(stage).Label, w/2, 20, 28).Fill(labelColor).Strong()

	line := ""
	if e.machine.current != nil && stage != domain.StageIdle {
		line = e.machine.current.Summary()
	}
	c.Text(line, w/2, 55, 20).Fill(orderColor)

	if stage != domain.StageIdle || e.branding.WebsiteURL == "" {
		return
	}
	const qrSize = 120
	x, y := w-qrSize-40, h-qrSize-80
	c.QRPlaceholder(x, y, qrSize, e.branding.WebsiteURL, e.branding.Color)
	c.Text(e.branding.ShopName, x+qrSize/2, y+qrSize+10, 18).Fill(e.branding.Color).Strong()
	c.Text(idleCaption, x+qrSize/2, y+qrSize+34, 14).Fill(orderColor)
}
