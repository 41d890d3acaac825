package logo

import (
	"testing"
	"unsafe"

	"nova/kernel/console"
)

func newTestFramebuffer(t *testing.T, width, height uint32) *console.Framebuffer {
	t.Helper()
	size := uint64(width) * uint64(height) * 4
	buf := make([]byte, size)
	t.Cleanup(func() { _ = buf })
	base := uint64(uintptr(unsafe.Pointer(&buf[0])))
	return console.NewFramebuffer(base, size, width, height, width, false)
}

func TestDraw_SkipsTransparentPixels(t *testing.T) {
	fb := newTestFramebuffer(t, 8, 8)
	fb.Clear(9, 9, 9)

	Draw(fb, &Default, 0, 0)

	// Default's top-left pixel is TransparentIndex (0); the background
	// Clear wrote must still show through there.
	want := uint32(9)<<16 | uint32(9)<<8 | uint32(9)
	if got := fb.PixelAt(0, 0); got != want {
		t.Fatalf("got pixel %#x at transparent corner, want background %#x", got, want)
	}
}

func TestDraw_OpaquePixelMatchesPalette(t *testing.T) {
	fb := newTestFramebuffer(t, 8, 8)

	img := Image{
		Width: 2, Height: 1,
		TransparentIndex: 0,
		Palette: []console.Color{
			{R: 0, G: 0, B: 0},
			{R: 0x10, G: 0x20, B: 0x30},
		},
		Data: []uint8{0, 1},
	}
	Draw(fb, &img, 0, 0)

	got := fb.PixelAt(1, 0)
	want := uint32(0x30)<<16 | uint32(0x20)<<8 | uint32(0x10)
	if got != want {
		t.Fatalf("got pixel %#x, want %#x", got, want)
	}
}
