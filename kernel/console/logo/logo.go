// Package logo draws a small boot-splash image onto a console.Framebuffer.
// The Image type mirrors the struct tools/makelogo generates from a
// PNG/JPEG/GIF asset (a palette plus an index per pixel); Default is a
// hand-authored placeholder in that same shape, standing in for a real
// asset no one has run makelogo against yet.
package logo

import "nova/kernel/console"

// Align is the horizontal alignment makelogo bakes into a generated Image.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Image is a small indexed-color bitmap: Data holds one palette index per
// pixel, row-major, Width*Height entries long.
type Image struct {
	Width, Height    int
	Align            Align
	TransparentIndex int
	Palette          []console.Color
	Data             []uint8
}

// Default is a 8x8 placeholder mark (a hollow diamond) in the two-color
// palette every Framebuffer already uses for text, so it reads cleanly on
// both the BGR and RGB framebuffer layouts Draw is given.
var Default = Image{
	Width: 8, Height: 8,
	Align:            AlignCenter,
	TransparentIndex: 0,
	Palette: []console.Color{
		{R: 0, G: 0, B: 0},
		{R: 0xC0, G: 0xC0, B: 0xC0},
	},
	Data: []uint8{
		0, 0, 0, 1, 1, 0, 0, 0,
		0, 0, 1, 0, 0, 1, 0, 0,
		0, 1, 0, 0, 0, 0, 1, 0,
		1, 0, 0, 0, 0, 0, 0, 1,
		1, 0, 0, 0, 0, 0, 0, 1,
		0, 1, 0, 0, 0, 0, 1, 0,
		0, 0, 1, 0, 0, 1, 0, 0,
		0, 0, 0, 1, 1, 0, 0, 0,
	},
}

// Draw renders img onto fb with its top-left corner at (x, y), skipping
// pixels at TransparentIndex so the framebuffer's existing background shows
// through.
func Draw(fb *console.Framebuffer, img *Image, x, y uint32) {
	for row := 0; row < img.Height; row++ {
		for col := 0; col < img.Width; col++ {
			idx := img.Data[row*img.Width+col]
			if int(idx) == img.TransparentIndex {
				continue
			}
			c := img.Palette[idx]
			fb.SetPixel(x+uint32(col), y+uint32(row), c.R, c.G, c.B)
		}
	}
}
