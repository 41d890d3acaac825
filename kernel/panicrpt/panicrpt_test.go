package panicrpt

import (
	"bytes"
	"errors"
	"testing"

	"nova/internal/kfmt"
)

type bufSink struct{ bytes.Buffer }

func (b *bufSink) WriteByte(c byte) error        { return b.Buffer.WriteByte(c) }
func (b *bufSink) Write(p []byte) (int, error)   { return b.Buffer.Write(p) }

func TestReport_HaltsAndPrints(t *testing.T) {
	var sink bufSink
	kfmt.SetOutput(&sink)
	defer kfmt.SetOutput(nil)

	halted := false
	orig := haltFn
	haltFn = func() { halted = true }
	defer func() { haltFn = orig }()

	Report(errors.New("disk on fire"))

	if !halted {
		t.Fatalf("expected haltFn to be called")
	}
	if !bytes.Contains(sink.Bytes(), []byte("disk on fire")) {
		t.Fatalf("expected report to contain the error message, got %q", sink.String())
	}
}

func TestReport_NilError(t *testing.T) {
	var sink bufSink
	kfmt.SetOutput(&sink)
	defer kfmt.SetOutput(nil)

	orig := haltFn
	haltFn = func() {}
	defer func() { haltFn = orig }()

	Report(nil) // must not panic
}
