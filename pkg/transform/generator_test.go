package transform

import (
	"strings"
	"testing"

	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
)

func maskEditorGenerator() *memstack.Node {
	return effectNode("Mask Editor", layerstack.NodeTypeGeneratorEffect,
		substanceSource("generators/mask_editor", layerstack.Params{
			"Global Scale":       layerstack.FloatValue(1.0),
			"AO Intensity":       layerstack.FloatValue(0.5),
			"Curvature Contrast": layerstack.FloatValue(0.3),
			"Position Offset":    layerstack.FloatValue(0.0),
		}))
}

func TestGeneratorHandler_Validate(t *testing.T) {
	h := NewGeneratorHandler(DefaultRules())

	tests := []struct {
		name string
		node layerstack.Node
		want ValidationStatus
	}{
		{"mask editor accepted", maskEditorGenerator(), ValidationAccepted},
		{"fill skipped", fillNode("base", substanceSource("paint/basic", nil)), ValidationSkipped},
		{
			"unknown generator rejected",
			effectNode("gen", layerstack.NodeTypeGeneratorEffect,
				substanceSource("generators/custom", layerstack.Params{
					"Threshold": layerstack.FloatValue(0.5),
				})),
			ValidationRejected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Validate(tt.node).Status; got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeneratorHandler_ClosestMissNamed(t *testing.T) {
	h := NewGeneratorHandler(DefaultRules())
	// Three of four Mask Editor keywords present; "position" is missing.
	node := effectNode("gen", layerstack.NodeTypeGeneratorEffect,
		substanceSource("generators/mask_editor_custom", layerstack.Params{
			"Global Scale":       layerstack.FloatValue(1.0),
			"AO Intensity":       layerstack.FloatValue(0.5),
			"Curvature Contrast": layerstack.FloatValue(0.3),
		}))

	v := h.Validate(node)
	if v.Status != ValidationRejected {
		t.Fatalf("Validate() = %v, want rejected", v.Status)
	}
	if !strings.Contains(v.Message, "Mask Editor") || !strings.Contains(v.Message, "position") {
		t.Errorf("message %q does not name the suspected template and missing keyword", v.Message)
	}
}

func TestGeneratorHandler_ScalesScaleParamsOnly(t *testing.T) {
	h := NewGeneratorHandler(DefaultRules())
	node := maskEditorGenerator()

	p := h.Process(node, Args{Scale: 2.0})
	if p.Status != ProcessSuccess {
		t.Fatalf("Process() = %v (%s), want success", p.Status, p.Message)
	}

	src, _ := node.Source()
	params, _ := src.Parameters()
	if got, want := params["Global Scale"], layerstack.FloatValue(2.0); !got.Equal(want) {
		t.Errorf("Global Scale = %v, want %v", got, want)
	}
	if got, want := params["AO Intensity"], layerstack.FloatValue(0.5); !got.Equal(want) {
		t.Errorf("AO Intensity = %v, want %v (untouched)", got, want)
	}
}

func TestGeneratorHandler_IdentityScaleIsNoChange(t *testing.T) {
	h := NewGeneratorHandler(DefaultRules())
	if got := h.Process(maskEditorGenerator(), Args{Scale: 1.0}).Status; got != ProcessNoChange {
		t.Errorf("Process(scale 1) = %v, want no_change", got)
	}
}
