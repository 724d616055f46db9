package transform

import (
	"testing"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
)

func TestRun_ValidatesArguments(t *testing.T) {
	p := projectOf(fillNode("base", substanceSource("paint/basic", nil)))

	tests := []struct {
		name string
		args Args
		code errors.Code
	}{
		{"zero scale", Args{Scale: 0}, errors.ErrCodeInvalidScale},
		{"negative scale", Args{Scale: -2}, errors.ErrCodeInvalidScale},
		{"rotation out of range", Args{Scale: 1, Rotation: 270}, errors.ErrCodeInvalidRotation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(p, tt.args, DefaultRules(), nil)
			if !errors.Is(err, tt.code) {
				t.Errorf("Run() error code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestRun_AdvisoryConditions(t *testing.T) {
	t.Run("nil project", func(t *testing.T) {
		_, err := Run(nil, Args{Scale: 2}, DefaultRules(), nil)
		if !errors.Is(err, errors.ErrCodeNoProject) || !errors.IsAdvisory(err) {
			t.Errorf("Run() error = %v, want advisory NO_PROJECT", err)
		}
	})
	t.Run("no texture sets", func(t *testing.T) {
		_, err := Run(&memstack.Project{}, Args{Scale: 2}, DefaultRules(), nil)
		if !errors.Is(err, errors.ErrCodeNoTextureSets) || !errors.IsAdvisory(err) {
			t.Errorf("Run() error = %v, want advisory NO_TEXTURE_SETS", err)
		}
	})
	t.Run("unknown selection", func(t *testing.T) {
		p := projectOf(fillNode("base", substanceSource("paint/basic", nil)))
		_, err := Run(p, Args{Scale: 2}, DefaultRules(), map[string]bool{"Legs": true})
		if !errors.Is(err, errors.ErrCodeNoSelection) {
			t.Errorf("Run() error code = %v, want NO_SELECTION", errors.GetCode(err))
		}
	})
}

func TestRun_HiddenGroupScenario(t *testing.T) {
	// A hidden group with children plus one visible fill: the run yields
	// exactly two entries, one rejection for the whole hidden subtree and one
	// success for the fill.
	hidden := groupNode("Details",
		fillNode("noise", substanceSource("paint/basic", nil)),
		fillNode("grime", substanceSource("paint/basic", nil)))
	hidden.Hidden = true
	base := fillNode("base", substanceSource("paint/basic", nil))

	report, err := Run(projectOf(hidden, base), Args{Scale: 2.0}, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Len() != 2 {
		t.Fatalf("entries = %d, want 2", report.Len())
	}
	if e, _ := report.Get("Body / Details"); e.Result.Kind != ResultRejected {
		t.Errorf("hidden group = %q, want rejected", e.Result.Kind)
	}
	if e, _ := report.Get("Body / base"); e.Result.Kind != ResultSuccess {
		t.Errorf("visible fill = %q, want success", e.Result.Kind)
	}
}

func TestRun_BlurScenario(t *testing.T) {
	// Fill with a blur mask, scale 2.0: the fill's UV doubles and the blur
	// intensity halves from 4.0 to 2.0.
	blur := blurEffect("blur", 4.0)
	base := fillNode("base", substanceSource("paint/basic", nil))
	base.Mask = []*memstack.Node{blur}

	report, err := Run(projectOf(base), Args{Scale: 2.0}, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Len() != 2 {
		t.Fatalf("entries = %d, want 2", report.Len())
	}

	proj, _ := base.Projection()
	if proj.Scale != [2]float64{2, 2} {
		t.Errorf("fill scale = %v, want (2, 2)", proj.Scale)
	}
	src, _ := blur.Source()
	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(2.0); !got.Equal(want) {
		t.Errorf("blur intensity = %v, want %v", got, want)
	}
	if stats := report.Stats(); stats.Success != 2 {
		t.Errorf("stats = %+v, want 2 successes", stats)
	}
}

func TestRun_SelectionFiltersSets(t *testing.T) {
	p := &memstack.Project{Sets: []*memstack.TextureSet{
		{
			SetName: "Body",
			SetStacks: []*memstack.Stack{{Roots: []*memstack.Node{
				fillNode("base", substanceSource("paint/basic", nil)),
			}}},
		},
		{
			SetName: "Head",
			SetStacks: []*memstack.Stack{{Roots: []*memstack.Node{
				fillNode("skin", substanceSource("paint/basic", nil)),
			}}},
		},
	}}

	report, err := Run(p, Args{Scale: 2.0}, DefaultRules(), map[string]bool{"Head": true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if report.Len() != 1 {
		t.Fatalf("entries = %d, want 1", report.Len())
	}
	if _, ok := report.Get("Head / skin"); !ok {
		t.Error("selected set missing from the report")
	}
}

func TestRun_MultipleStacksGetIndexedPaths(t *testing.T) {
	p := &memstack.Project{Sets: []*memstack.TextureSet{{
		SetName: "Body",
		SetStacks: []*memstack.Stack{
			{Roots: []*memstack.Node{fillNode("base", substanceSource("paint/basic", nil))}},
			{Roots: []*memstack.Node{fillNode("base", substanceSource("paint/basic", nil))}},
		},
	}}}

	report, err := Run(p, Args{Scale: 2.0}, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, ok := report.Get("Body / Stack 1 / base"); !ok {
		t.Errorf("keys = %v, want Stack-indexed paths", entryKeys(report))
	}
	if _, ok := report.Get("Body / Stack 2 / base"); !ok {
		t.Errorf("keys = %v, want Stack-indexed paths", entryKeys(report))
	}
}

func TestRun_IdentityArgsLeaveDocumentUntouched(t *testing.T) {
	blur := blurEffect("blur", 4.0)
	base := fillNode("base", substanceSource("paint/basic", nil))
	base.Mask = []*memstack.Node{blur}

	report, err := Run(projectOf(base), Args{Scale: 1.0, Rotation: 0}, DefaultRules(), nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stats := report.Stats(); stats.NoChange != 2 || stats.Success != 0 {
		t.Errorf("stats = %+v, want 2 no_change", stats)
	}
	src, _ := blur.Source()
	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(4.0); !got.Equal(want) {
		t.Errorf("intensity = %v, want %v (untouched)", got, want)
	}
}
