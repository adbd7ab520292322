// Package plugin implements discovery, ABI verification, and hot-reload
// of dynamically-loaded visualizer shared libraries.
package plugin

// ABIVersion is the current contract version. A plugin's abi_version()
// symbol must return exactly this value; any change to the layout of
// the types below must increment it.
const ABIVersion uint32 = 1

const (
	numBands     = 8
	spectrumSize = 1024
)

// AudioAnalysisFFI is the C-layout mirror of features.Analysis crossing
// the plugin boundary. Only POD fields: fixed arrays, fixed-width
// integers, floats — no pointers into host memory.
type AudioAnalysisFFI struct {
	Bands           [numBands]float32
	BandsNormalized [numBands]float32
	Energy          float32
	Bass            float32
	Mids            float32
	Treble          float32
	SpectralCentroid float32
	DominantBand     int32
	KickDetected     int32 // 0/1
	KickConfidence   float32
	BPM              float32
	TransitionDetected int32
	PunchDetected      int32
	BreakDetected      int32
	Spectrum           [spectrumSize]float32
}

// RectFFI mirrors visual.Rect across the boundary.
type RectFFI struct {
	X, Y, W, H float32
}

// ColorFFI is a C-layout RGBA color, used by every DrawFFI primitive.
type ColorFFI struct {
	R, G, B, A float32
}

// DrawFFI is an opaque drawing-surface handle plus a vtable of
// primitive operations, passed to a plugin's draw entry point. The host
// implements each function pointer; the plugin only ever calls through
// them, never touching host memory directly. The eight primitives
// mirror original_source/crates/dj-viz-api/src/draw.rs's DrawFFI
// field-for-field (rect, ellipse, line, background, tri, quad,
// polyline, polygon); that file has no text primitive, so none is
// exposed here — see DESIGN.md.
type DrawFFI struct {
	Handle     uintptr
	Rect       uintptr // func(handle uintptr, x,y,w,h float32, r,g,b,a float32)
	Ellipse    uintptr // func(handle uintptr, x,y,w,h float32, r,g,b,a float32)
	Line       uintptr // func(handle uintptr, x1,y1,x2,y2,stroke float32, r,g,b,a float32)
	Background uintptr // func(handle uintptr, r,g,b,a float32)
	Tri        uintptr // func(handle uintptr, x1,y1,x2,y2,x3,y3 float32, r,g,b,a float32)
	Quad       uintptr // func(handle uintptr, x1,y1,x2,y2,x3,y3,x4,y4 float32, r,g,b,a float32)
	Polyline   uintptr // func(handle uintptr, points *float32, pointCount int32, stroke float32, r,g,b,a float32); points is x,y interleaved
	Polygon    uintptr // func(handle uintptr, points *float32, pointCount int32, r,g,b,a float32); points is x,y interleaved
}

// PluginMetadata is returned by a plugin's plugin_metadata() symbol.
type PluginMetadata struct {
	Name       [64]byte
	Version    [16]byte
	LabelCount uint32
	Labels     [4][32]byte
}

// NameString trims the metadata's fixed-size name field to a Go string.
func (m PluginMetadata) NameString() string { return cStr(m.Name[:]) }

// VersionString trims the metadata's fixed-size version field.
func (m PluginMetadata) VersionString() string { return cStr(m.Version[:]) }

func cStr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
