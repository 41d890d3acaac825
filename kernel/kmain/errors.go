package kmain

// NoGlyphSourceError is reported when Kmain runs without a bitmap font
// having been installed via SetGlyphSource, a linking mistake rather than
// a runtime condition.
type NoGlyphSourceError struct{}

func (e *NoGlyphSourceError) Error() string {
	return "kmain: no glyph source installed; call SetGlyphSource before Kmain"
}
