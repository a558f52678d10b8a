package capability

import (
	"errors"
	"strings"
	"testing"
)

func testRegistry() *Registry {
	return NewRegistry(map[Capability]Status{
		CapAVIFEncode:        {Available: true, Path: "/usr/bin/avifenc", Version: "1.0.4"},
		CapBackgroundRemoval: {Reason: "rembg не найден в PATH"},
		CapSVGTrace:          {Available: true, Version: "builtin"},
	})
}

func TestRequire(t *testing.T) {
	reg := testRegistry()

	if err := reg.Require(CapAVIFEncode); err != nil {
		t.Errorf("Require(available) = %v, want nil", err)
	}

	err := reg.Require(CapBackgroundRemoval)
	if !errors.Is(err, ErrMissingCapability) {
		t.Errorf("Require(missing) = %v, want ErrMissingCapability", err)
	}
	if err != nil && !strings.Contains(err.Error(), "rembg") {
		t.Errorf("Require(missing) message %q should carry the reason", err)
	}
}

func TestRequireUnknownStatus(t *testing.T) {
	reg := NewRegistry(nil)

	err := reg.Require(CapAVIFEncode)
	if !errors.Is(err, ErrMissingCapability) {
		t.Errorf("Require() on empty registry = %v, want ErrMissingCapability", err)
	}
}

func TestHasGet(t *testing.T) {
	reg := testRegistry()

	if !reg.Has(CapSVGTrace) {
		t.Error("Has(CapSVGTrace) = false, want true")
	}
	if reg.Has(CapBackgroundRemoval) {
		t.Error("Has(CapBackgroundRemoval) = true, want false")
	}
	if got := reg.Get(CapAVIFEncode).Path; got != "/usr/bin/avifenc" {
		t.Errorf("Get(CapAVIFEncode).Path = %q", got)
	}
}

func TestAllOrder(t *testing.T) {
	entries := testRegistry().All()

	want := []Capability{CapAVIFEncode, CapBackgroundRemoval, CapSVGTrace}
	if len(entries) != len(want) {
		t.Fatalf("All() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Capability != want[i] {
			t.Errorf("All()[%d] = %s, want %s", i, e.Capability, want[i])
		}
	}
}

func TestNewRegistryCopies(t *testing.T) {
	statuses := map[Capability]Status{CapSVGTrace: {Available: true}}
	reg := NewRegistry(statuses)

	statuses[CapSVGTrace] = Status{Available: false}
	if !reg.Has(CapSVGTrace) {
		t.Error("NewRegistry() should copy the statuses map")
	}
}

func TestCapabilityString(t *testing.T) {
	tests := []struct {
		cap  Capability
		want string
	}{
		{CapAVIFEncode, "avif-encode"},
		{CapBackgroundRemoval, "background-removal"},
		{CapSVGTrace, "svg-trace"},
		{Capability(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.cap.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
