package memstack

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

func TestSource_SetParametersClamps(t *testing.T) {
	src := &Source{
		SourceKind: layerstack.SourceKindSubstance,
		Params:     layerstack.Params{"intensity": layerstack.FloatValue(4.0)},
		Clamps:     map[string][2]float64{"intensity": {0, 2}},
	}

	if err := src.SetParameters(layerstack.Params{"intensity": layerstack.FloatValue(8.0)}); err != nil {
		t.Fatalf("SetParameters() error: %v", err)
	}

	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(2.0); !got.Equal(want) {
		t.Errorf("clamped intensity = %v, want %v", got, want)
	}
}

func TestSource_FailWrites(t *testing.T) {
	src := &Source{
		SourceKind: layerstack.SourceKindSubstance,
		Params:     layerstack.Params{"scale": layerstack.IntValue(2)},
		FailWrites: true,
	}
	if err := src.SetParameters(layerstack.Params{"scale": layerstack.IntValue(4)}); err == nil {
		t.Fatal("SetParameters() succeeded on a FailWrites source")
	}
	params, _ := src.Parameters()
	if got, want := params["scale"], layerstack.IntValue(2); !got.Equal(want) {
		t.Errorf("failed write mutated the source: got %v, want %v", got, want)
	}
}

func TestNode_SetProjectionNormalizesRotation(t *testing.T) {
	n := &Node{NodeType: layerstack.NodeTypeFill, ProjMode: layerstack.ProjectionUV}

	if err := n.SetProjection(layerstack.Projection{Scale: [2]float64{1, 1}, Rotation: 380}); err != nil {
		t.Fatalf("SetProjection() error: %v", err)
	}
	if got, _ := n.Projection(); got.Rotation != 20 {
		t.Errorf("rotation = %g, want 20", got.Rotation)
	}

	if err := n.SetProjection(layerstack.Projection{Scale: [2]float64{1, 1}, Rotation: -90}); err != nil {
		t.Fatalf("SetProjection() error: %v", err)
	}
	if got, _ := n.Projection(); got.Rotation != 270 {
		t.Errorf("rotation = %g, want 270", got.Rotation)
	}
}

func TestScopedModification_RollsBackOnError(t *testing.T) {
	src := &Source{
		SourceKind: layerstack.SourceKindSubstance,
		Params:     layerstack.Params{"scale": layerstack.IntValue(2)},
	}
	node := &Node{
		NodeType: layerstack.NodeTypeFill,
		NodeName: "base",
		Single:   src,
		ProjMode: layerstack.ProjectionUV,
		Proj:     layerstack.Projection{Scale: [2]float64{1, 1}},
	}
	p := &Project{Sets: []*TextureSet{{
		SetName:   "Body",
		SetStacks: []*Stack{{Roots: []*Node{node}}},
	}}}

	boom := errors.New("boom")
	err := p.ScopedModification("edit", func() error {
		if err := src.SetParameters(layerstack.Params{"scale": layerstack.IntValue(99)}); err != nil {
			return err
		}
		node.Proj.Scale = [2]float64{5, 5}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("ScopedModification() error = %v, want boom", err)
	}

	params, _ := src.Parameters()
	if got, want := params["scale"], layerstack.IntValue(2); !got.Equal(want) {
		t.Errorf("parameter after rollback = %v, want %v", got, want)
	}
	if node.Proj.Scale != [2]float64{1, 1} {
		t.Errorf("projection after rollback = %v, want {1 1}", node.Proj.Scale)
	}
}

func TestScopedModification_KeepsChangesOnSuccess(t *testing.T) {
	src := &Source{
		SourceKind: layerstack.SourceKindSubstance,
		Params:     layerstack.Params{"scale": layerstack.IntValue(2)},
	}
	p := &Project{Sets: []*TextureSet{{
		SetName: "Body",
		SetStacks: []*Stack{{Roots: []*Node{{
			NodeType: layerstack.NodeTypeFill,
			NodeName: "base",
			Single:   src,
		}}}},
	}}}

	err := p.ScopedModification("edit", func() error {
		return src.SetParameters(layerstack.Params{"scale": layerstack.IntValue(4)})
	})
	if err != nil {
		t.Fatalf("ScopedModification() error: %v", err)
	}
	params, _ := src.Parameters()
	if got, want := params["scale"], layerstack.IntValue(4); !got.Equal(want) {
		t.Errorf("parameter after commit = %v, want %v", got, want)
	}
}

const sampleDocument = `
texture_sets:
  - name: Body
    stacks:
      - layers:
          - name: Details
            type: group
            visible: false
            layers:
              - name: Noise
                type: fill
                source:
                  kind: substance
                  resource:
                    name: starter_kit/3d_perlin_noise
                  params:
                    scale: 4
          - name: Base
            type: fill
            uv:
              scale: [2, 2]
              rotation: 45
            source:
              kind: substance
              resource:
                name: paint/basic
            mask_effects:
              - name: blur
                type: filter_effect
                source:
                  kind: substance
                  resource:
                    name: blur/blur
                  params:
                    intensity: 4.0
`

func TestDocument_LoadAndShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.yaml")
	writeFile(t, path, sampleDocument)

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	sets := p.TextureSets()
	if len(sets) != 1 || sets[0].Name() != "Body" {
		t.Fatalf("texture sets = %v, want one named Body", sets)
	}
	roots := sets[0].Stacks()[0].RootNodes()
	if len(roots) != 2 {
		t.Fatalf("root count = %d, want 2", len(roots))
	}
	if roots[0].Visible() {
		t.Error("hidden group loaded as visible")
	}
	base := roots[1]
	proj, _ := base.Projection()
	if proj.Scale != [2]float64{2, 2} || proj.Rotation != 45 {
		t.Errorf("projection = %+v, want scale (2,2) rotation 45", proj)
	}
	if got := len(base.MaskEffects()); got != 1 {
		t.Fatalf("mask effects = %d, want 1", got)
	}
	src, err := base.MaskEffects()[0].Source()
	if err != nil {
		t.Fatalf("effect Source() error: %v", err)
	}
	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(4.0); !got.Equal(want) {
		t.Errorf("intensity = %v, want %v", got, want)
	}
}

func TestDocument_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yaml")
	out := filepath.Join(dir, "out.yaml")
	writeFile(t, in, sampleDocument)

	p, err := Load(in)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := Save(p, out); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	p2, err := Load(out)
	if err != nil {
		t.Fatalf("Load() after Save() error: %v", err)
	}

	if diff := cmp.Diff(ToDocument(p), ToDocument(p2)); diff != "" {
		t.Errorf("document round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestDocument_UnknownTypeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, `
texture_sets:
  - name: Body
    stacks:
      - layers:
          - name: weird
            type: hologram
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load() succeeded on unknown node type")
	}
}
