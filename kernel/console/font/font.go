// Package font supplies console.GlyphSource implementations. The pack this
// kernel was built from carries no bitmap font asset (the teacher's
// tools/makelogo bakes PNG/GIF logos into Go source the same way a
// "makefont" tool would bake a font, but no such asset exists here), so
// Placeholder stands in: every printable byte renders as an outlined box
// sized and positioned the same as a real glyph would be, which is enough
// for bring-up diagnostics until a loaded bitmap font replaces it.
package font

// Placeholder is a zero-value-usable console.GlyphSource that renders every
// printable byte as an 8x8 outlined box and every other byte (including
// space) blank.
type Placeholder struct{}

var box = [8]byte{
	0x00,
	0x7e,
	0x42,
	0x42,
	0x42,
	0x42,
	0x7e,
	0x00,
}

// Glyph implements console.GlyphSource.
func (Placeholder) Glyph(ch byte) [8]byte {
	if ch <= ' ' || ch > 0x7e {
		return [8]byte{}
	}
	return box
}
