package canvas

import "unicode/utf16"

// qrModules is the module count of a version-1 QR symbol.
const qrModules = 21

// QRPlaceholder draws a QR-like pattern for url at (x, y) with the given side
// length. It is purely decorative: finder squares and timing lines are in the
// right places, the data area is pseudo-random noise seeded from url, and no
// scanner will decode it.
func (c *Canvas) QRPlaceholder(x, y, size float64, url string, color Color) {
	cell := size / qrModules

	c.Rect(x-4, y-4, size+8, size+8).Fill(0xFFFFFF)

	finder := func(fx, fy float64) {
		c.Rect(fx, fy, cell*7, cell*7).Fill(color)
		c.Rect(fx+cell, fy+cell, cell*5, cell*5).Fill(0xFFFFFF)
		c.Rect(fx+cell*2, fy+cell*2, cell*3, cell*3).Fill(color)
	}
	finder(x, y)
	finder(x+cell*(qrModules-7), y)
	finder(x, y+cell*(qrModules-7))

	seed := int64(stringHash(url))
	if seed < 0 {
		seed = -seed
	}
	for row := 0; row < qrModules; row++ {
		for col := 0; col < qrModules; col++ {
			if inFinder(row, col) {
				continue
			}
			if row == 6 || col == 6 {
				if (row+col)%2 == 0 {
					c.Rect(x+float64(col)*cell, y+float64(row)*cell, cell, cell).Fill(color)
				}
				continue
			}
			seed = nextModuleSeed(seed)
			if seed%3 != 0 {
				c.Rect(x+float64(col)*cell, y+float64(row)*cell, cell*0.95, cell*0.95).Fill(color)
			}
		}
	}
}

// nextModuleSeed steps the data-area LCG. The multiply is done in float64 and
// rounded before masking, so patterns match those drawn by browser displays
// for the same URL.
func nextModuleSeed(seed int64) int64 {
	v := float64(float64(seed)*1103515245) + 12345
	return int64(v) & 0x7fffffff
}

func inFinder(row, col int) bool {
	const edge = qrModules - 8
	return (row < 8 && col < 8) || (row < 8 && col >= edge) || (row >= edge && col < 8)
}

// stringHash is the classic 31-multiplier hash over UTF-16 code units with
// 32-bit wraparound.
func stringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h<<5 - h + int32(u)
	}
	return h
}
