// Package layerstack defines the contract between layerforge and the host
// application's layer tree. The host owns every node, source, and parameter
// dictionary; layerforge only reads and mutates them through the interfaces
// declared here. Nothing in this package creates or destroys nodes.
//
// Two implementations exist: the real host adapter (out of tree, lives in
// the host plugin shim) and memstack, the in-memory document-backed
// implementation used by the CLI and by tests.
package layerstack

import "fmt"

// NodeType identifies the shape of a node in the layer tree. The set is
// closed: the host does not grow new node types at runtime.
type NodeType int

const (
	NodeTypeUnknown NodeType = iota
	// NodeTypeGroup owns a visibility flag and an ordered list of sub-layers.
	NodeTypeGroup
	// NodeTypeFill is a fill layer bound to one or more content sources.
	NodeTypeFill
	// NodeTypePaint is a hand-painted layer. It carries effects but no
	// transformable source of its own.
	NodeTypePaint
	// NodeTypeFillEffect is a fill attached to a layer's content or mask slot.
	NodeTypeFillEffect
	// NodeTypeFilterEffect is a filter (blur, warp, ...) attached to a slot.
	NodeTypeFilterEffect
	// NodeTypeGeneratorEffect is a mask generator (AO, curvature, ...).
	NodeTypeGeneratorEffect
)

var nodeTypeNames = map[NodeType]string{
	NodeTypeUnknown:         "Unknown",
	NodeTypeGroup:           "GroupLayer",
	NodeTypeFill:            "FillLayer",
	NodeTypePaint:           "PaintLayer",
	NodeTypeFillEffect:      "FillEffect",
	NodeTypeFilterEffect:    "FilterEffect",
	NodeTypeGeneratorEffect: "GeneratorEffect",
}

// String returns the host-facing name of the node type.
func (t NodeType) String() string {
	if s, ok := nodeTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// IsEffect reports whether the node type attaches to a content or mask slot
// rather than living in the layer stack directly.
func (t NodeType) IsEffect() bool {
	return t == NodeTypeFillEffect || t == NodeTypeFilterEffect || t == NodeTypeGeneratorEffect
}

// SourceMode describes how a node binds content sources to its channels.
type SourceMode int

const (
	// SourceModeSingle binds one implicit source (no mode flag on the host side).
	SourceModeSingle SourceMode = iota
	// SourceModeMaterial shares one source across all channels.
	SourceModeMaterial
	// SourceModeSplit binds a distinct source per active channel.
	SourceModeSplit
)

func (m SourceMode) String() string {
	switch m {
	case SourceModeMaterial:
		return "Material"
	case SourceModeSplit:
		return "Split"
	default:
		return "Single"
	}
}

// ProjectionMode describes how a fill source is mapped onto geometry.
type ProjectionMode int

const (
	ProjectionUnknown ProjectionMode = iota
	ProjectionUV
	ProjectionTriplanar
	ProjectionPlanar
	ProjectionSpherical
	ProjectionCylindrical
	ProjectionWarp
)

var projectionNames = map[ProjectionMode]string{
	ProjectionUnknown:     "Unknown",
	ProjectionUV:          "UV",
	ProjectionTriplanar:   "Triplanar",
	ProjectionPlanar:      "Planar",
	ProjectionSpherical:   "Spherical",
	ProjectionCylindrical: "Cylindrical",
	ProjectionWarp:        "Warp",
}

func (m ProjectionMode) String() string {
	if s, ok := projectionNames[m]; ok {
		return s
	}
	return fmt.Sprintf("ProjectionMode(%d)", int(m))
}

// Projection is the UV transform state of a fill node. Scale is the per-axis
// UV tiling factor, Rotation is in degrees and stays within [0, 360) on the
// host side.
type Projection struct {
	Mode     ProjectionMode
	Scale    [2]float64
	Rotation float64
}

// Node is an opaque handle onto one node of the host's layer tree.
//
// Child accessors return nil slices when the collection is empty or the node
// type cannot carry it (e.g. SubLayers on a fill layer). Source accessors
// return an error when the host cannot produce the source; callers translate
// that into a rejection or failure, never a crash.
type Node interface {
	Type() NodeType
	Name() string
	Visible() bool

	// SubLayers returns the ordered children of a group node, topmost first.
	SubLayers() []Node
	// ContentEffects returns the effects attached to the node's content slot.
	ContentEffects() []Node
	// MaskEffects returns the effects attached to the node's mask slot.
	MaskEffects() []Node

	SourceMode() SourceMode
	// ActiveChannels lists the channels carrying a source in Split mode.
	ActiveChannels() []string
	// Source returns the implicit source of a Single-mode node.
	Source() (Source, error)
	// ChannelSource returns the source bound to one channel of a Split node.
	ChannelSource(channel string) (Source, error)
	// MaterialSource returns the shared source of a Material-mode node.
	MaterialSource() (Source, error)

	ProjectionMode() ProjectionMode
	// Projection reads the node's full UV transform state.
	Projection() (Projection, error)
	// SetProjection writes the UV transform state back to the host. The host
	// may clamp values; callers re-read to confirm what was accepted.
	SetProjection(Projection) error
}
