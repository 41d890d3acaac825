package console

const (
	glyphSize = 8 // glyphs are 8x8 pixel cells
	tabWidth  = 4
)

// GlyphSource supplies the bitmap for one byte value: one byte per row,
// most-significant bit leftmost, matching the classic 8x8 bitmap font
// layout. The bitmap font itself is an external collaborator this package
// does not specify, the same "dynamic dispatch → one-method capability"
// seam paging.FrameSource uses for intermediate page-table frames.
type GlyphSource interface {
	Glyph(ch byte) [8]byte
}

// Color is an RGB triple; callers build one with RGB().
type Color struct{ R, G, B uint8 }

// RGB constructs a Color.
func RGB(r, g, b uint8) Color { return Color{r, g, b} }

var (
	defaultFg = RGB(0xC0, 0xC0, 0xC0)
	defaultBg = RGB(0, 0, 0)
)

// Writer draws bytes onto a Framebuffer through a GlyphSource as they are
// written, with no line buffer, playing the role of the teacher's Vt terminal: it tracks a cursor in
// character cells and handles CR, LF, backspace, and tab the same way Vt
// does, just rasterizing glyphs into pixels instead of writing into an EGA
// character/attribute cell.
type Writer struct {
	fb     *Framebuffer
	glyphs GlyphSource

	cols, rows uint32
	curX, curY uint32
	fg, bg     Color
}

// NewWriter attaches a Writer to fb, using glyphs for rasterization. The
// terminal's character grid is derived from the framebuffer's pixel
// dimensions divided by the fixed glyph cell size, mirroring
// Vt.AttachTo picking up its attached console's Dimensions().
func NewWriter(fb *Framebuffer, glyphs GlyphSource) *Writer {
	w, h := fb.Dimensions()
	wr := &Writer{
		fb:     fb,
		glyphs: glyphs,
		cols:   w / glyphSize,
		rows:   h / glyphSize,
		fg:     defaultFg,
		bg:     defaultBg,
	}
	return wr
}

// SetColors changes the foreground/background used for subsequently
// written glyphs.
func (w *Writer) SetColors(fg, bg Color) {
	w.fg, w.bg = fg, bg
}

// Clear blanks the whole terminal and resets the cursor to the origin.
func (w *Writer) Clear() {
	w.fb.Clear(w.bg.R, w.bg.G, w.bg.B)
	w.curX, w.curY = 0, 0
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	for _, b := range p {
		w.WriteByte(b)
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter, and is also the Sink kernel/kfmt's
// Printf writes through.
func (w *Writer) WriteByte(b byte) error {
	switch b {
	case '\r':
		w.cr()
	case '\n':
		w.cr()
		w.lf()
	case '\b':
		if w.curX > 0 {
			w.curX--
			w.drawCell(' ')
		}
	case '\t':
		for i := 0; i < tabWidth; i++ {
			w.drawCell(' ')
			w.advance()
		}
	default:
		w.drawCell(b)
		w.advance()
	}
	return nil
}

func (w *Writer) drawCell(ch byte) {
	glyph := w.glyphs.Glyph(ch)
	ox, oy := w.curX*glyphSize, w.curY*glyphSize
	for row := uint32(0); row < glyphSize; row++ {
		bits := glyph[row]
		for col := uint32(0); col < glyphSize; col++ {
			if bits&(0x80>>col) != 0 {
				w.fb.SetPixel(ox+col, oy+row, w.fg.R, w.fg.G, w.fg.B)
			} else {
				w.fb.SetPixel(ox+col, oy+row, w.bg.R, w.bg.G, w.bg.B)
			}
		}
	}
}

func (w *Writer) advance() {
	w.curX++
	if w.curX == w.cols {
		w.cr()
		w.lf()
	}
}

func (w *Writer) cr() { w.curX = 0 }

func (w *Writer) lf() {
	if w.curY+1 < w.rows {
		w.curY++
		return
	}
	w.fb.scrollUp(glyphSize, w.bg.R, w.bg.G, w.bg.B)
}
