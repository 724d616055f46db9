package layerstack

// SourceKind identifies the concrete content type behind a source handle.
type SourceKind int

const (
	SourceKindUnknown SourceKind = iota
	// SourceKindSubstance is a procedural substance with a parameter set.
	SourceKindSubstance
	// SourceKindUniformColor is a flat color with no spatial mapping.
	SourceKindUniformColor
	// SourceKindImage is a bitmap resource.
	SourceKindImage
	// SourceKindAnchor references another layer's output. Anchors are never
	// transformed; the referenced layer carries the geometry.
	SourceKindAnchor
)

func (k SourceKind) String() string {
	switch k {
	case SourceKindSubstance:
		return "Substance"
	case SourceKindUniformColor:
		return "UniformColor"
	case SourceKindImage:
		return "Image"
	case SourceKindAnchor:
		return "Anchor"
	default:
		return "Unknown"
	}
}

// ResourceID names the shelf resource a source was instantiated from.
// Name is the resource identifier path (e.g. "blur/blur"); Context names the
// shelf it came from — a Context containing "project" marks a baked project
// resource.
type ResourceID struct {
	Name    string
	Context string
}

// SeedParam is the parameter key substances expose for their random seed.
const SeedParam = "$randomseed"

// Source is an opaque handle onto the content bound to a node channel.
//
// Parameters returns a copy of the parameter dictionary; mutations go through
// SetParameters, which writes only the keys present in the given map. The
// host may silently clamp or refuse individual values, so a mutation is only
// confirmed by re-reading.
type Source interface {
	Kind() SourceKind
	// Resource returns the shelf resource identity, if the source has one.
	// Uniform colors and anchors typically do not.
	Resource() (ResourceID, bool)

	Parameters() (Params, error)
	SetParameters(Params) error

	// ImageInputs lists the named image-input slots of a substance source.
	ImageInputs() []string
	// InputSource returns the source plugged into one image-input slot.
	InputSource(name string) (Source, error)
}
