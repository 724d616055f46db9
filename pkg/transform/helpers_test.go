package transform

import (
	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
)

// Test fixtures built on the in-memory stack implementation.

func substanceSource(resName string, params layerstack.Params) *memstack.Source {
	return &memstack.Source{
		SourceKind: layerstack.SourceKindSubstance,
		ResourceID: layerstack.ResourceID{Name: resName, Context: "starter_assets"},
		HasRes:     true,
		Params:     params,
	}
}

func uniformSource() *memstack.Source {
	return &memstack.Source{SourceKind: layerstack.SourceKindUniformColor}
}

func anchorSource() *memstack.Source {
	return &memstack.Source{SourceKind: layerstack.SourceKindAnchor}
}

func fillNode(name string, src *memstack.Source) *memstack.Node {
	return &memstack.Node{
		NodeType: layerstack.NodeTypeFill,
		NodeName: name,
		Single:   src,
		ProjMode: layerstack.ProjectionUV,
		Proj:     layerstack.Projection{Scale: [2]float64{1, 1}},
	}
}

func effectNode(name string, typ layerstack.NodeType, src *memstack.Source) *memstack.Node {
	return &memstack.Node{
		NodeType: typ,
		NodeName: name,
		Single:   src,
		ProjMode: layerstack.ProjectionUV,
		Proj:     layerstack.Projection{Scale: [2]float64{1, 1}},
	}
}

func splitFill(name string, channels []string, sources map[string]*memstack.Source) *memstack.Node {
	return &memstack.Node{
		NodeType:   layerstack.NodeTypeFill,
		NodeName:   name,
		Mode:       layerstack.SourceModeSplit,
		Channels:   channels,
		PerChannel: sources,
		ProjMode:   layerstack.ProjectionUV,
		Proj:       layerstack.Projection{Scale: [2]float64{1, 1}},
	}
}

func groupNode(name string, children ...*memstack.Node) *memstack.Node {
	return &memstack.Node{
		NodeType: layerstack.NodeTypeGroup,
		NodeName: name,
		Children: children,
	}
}

func projectOf(roots ...*memstack.Node) *memstack.Project {
	return &memstack.Project{Sets: []*memstack.TextureSet{{
		SetName:   "Body",
		SetStacks: []*memstack.Stack{{Roots: roots}},
	}}}
}

func blurEffect(name string, intensity float64) *memstack.Node {
	return effectNode(name, layerstack.NodeTypeFilterEffect,
		substanceSource("blur/blur", layerstack.Params{
			"intensity": layerstack.FloatValue(intensity),
		}))
}
