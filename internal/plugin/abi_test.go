package plugin

import (
	"testing"

	"github.com/pozitronik/dj-viz-go/internal/visual"
)

func TestPluginMetadataStringsTrimAtNullTerminator(t *testing.T) {
	var m PluginMetadata
	copy(m.Name[:], "spiral\x00garbage")
	copy(m.Version[:], "1.2.3\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")

	if got := m.NameString(); got != "spiral" {
		t.Fatalf("NameString() = %q, want %q", got, "spiral")
	}
	if got := m.VersionString(); got != "1.2.3" {
		t.Fatalf("VersionString() = %q, want %q", got, "1.2.3")
	}
}

func TestPluginMetadataStringHandlesNoTerminator(t *testing.T) {
	var m PluginMetadata
	full := make([]byte, len(m.Name))
	for i := range full {
		full[i] = 'x'
	}
	copy(m.Name[:], full)

	if got := m.NameString(); got != string(full) {
		t.Fatalf("NameString() = %q, want full buffer", got)
	}
}

func TestLoaderToleratesMissingDirectory(t *testing.T) {
	reg := visual.NewRegistry()
	loader := NewLoader("/nonexistent/path/for/plugin/scan", reg)
	if loader.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 for a missing plugins directory", loader.Count())
	}
}

func TestLibExtensionIsNonEmpty(t *testing.T) {
	if libExtension() == "" {
		t.Fatal("libExtension() returned empty string")
	}
}
