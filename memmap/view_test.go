package memmap

import (
	"testing"
	"unsafe"

	"nova/abi"
)

// descriptorBuffer lays out descriptors back-to-back with zero padding,
// mimicking a firmware buffer whose stride equals unsafe.Sizeof(descriptor).
func descriptorBuffer(t *testing.T, descs ...abi.MemoryDescriptor) *abi.MemoryMap {
	t.Helper()
	stride := uint32(unsafe.Sizeof(abi.MemoryDescriptor{}))
	buf := make([]abi.MemoryDescriptor, len(descs))
	copy(buf, descs)
	// Keep buf alive for the duration of the test by stashing it on the
	// testing.T via Cleanup's closure capture.
	t.Cleanup(func() { _ = buf })

	return &abi.MemoryMap{
		DescriptorsPhys: uint64(uintptr(unsafe.Pointer(&buf[0]))),
		MapSize:         uint64(stride) * uint64(len(descs)),
		EntrySize:       stride,
		EntryVersion:    1,
		EntryCount:      uint32(len(descs)),
	}
}

func TestView_IterateOrder(t *testing.T) {
	m := descriptorBuffer(t,
		abi.MemoryDescriptor{Type: abi.DescriptorLoaderCode, PhysicalStart: 0x1000, NumberOfPages: 1},
		abi.MemoryDescriptor{Type: abi.DescriptorConventional, PhysicalStart: 0x2000, NumberOfPages: 4},
	)
	v := NewView(m)

	var types []abi.DescriptorType
	v.Iterate(func(d *abi.MemoryDescriptor) bool {
		types = append(types, d.Type)
		return true
	})

	if len(types) != 2 || types[0] != abi.DescriptorLoaderCode || types[1] != abi.DescriptorConventional {
		t.Fatalf("unexpected iteration order: %v", types)
	}
}

func TestView_DescriptorRange(t *testing.T) {
	d := abi.MemoryDescriptor{PhysicalStart: 0x1000, NumberOfPages: 2}
	start, end, ok := DescriptorRange(&d)
	if !ok || start != 0x1000 || end != 0x1000+2*abi.FrameSize {
		t.Fatalf("got (%x, %x, %v)", start, end, ok)
	}
}

func TestView_FindContaining_FirstMatchWins(t *testing.T) {
	m := descriptorBuffer(t,
		abi.MemoryDescriptor{Type: abi.DescriptorConventional, PhysicalStart: 0x1000, NumberOfPages: 1},
		abi.MemoryDescriptor{Type: abi.DescriptorLoaderData, PhysicalStart: 0x1000, NumberOfPages: 1},
	)
	v := NewView(m)

	found := v.FindContaining(0x1000)
	if found == nil || found.Type != abi.DescriptorConventional {
		t.Fatalf("expected first descriptor to win, got %+v", found)
	}

	if v.FindContaining(0x5000) != nil {
		t.Fatalf("expected no match outside any descriptor range")
	}
}
