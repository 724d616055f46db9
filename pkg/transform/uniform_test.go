package transform

import (
	"testing"

	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/layerstack/memstack"
)

func TestUniformColorHandler_Validate(t *testing.T) {
	h := NewUniformColorHandler()

	mixed := splitFill("split", []string{"BaseColor", "Height"}, map[string]*memstack.Source{
		"BaseColor": uniformSource(),
		"Height":    substanceSource("paint/basic", nil),
	})
	allUniform := splitFill("split", []string{"BaseColor", "Height"}, map[string]*memstack.Source{
		"BaseColor": uniformSource(),
		"Height":    uniformSource(),
	})

	tests := []struct {
		name string
		node layerstack.Node
		want ValidationStatus
	}{
		{"uniform fill accepted", fillNode("flat", uniformSource()), ValidationAccepted},
		{"substance fill skipped", fillNode("tex", substanceSource("paint/basic", nil)), ValidationSkipped},
		{"mixed split skipped", mixed, ValidationSkipped},
		{"all-uniform split accepted", allUniform, ValidationAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Validate(tt.node).Status; got != tt.want {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUniformColorHandler_ProcessIsDeliberateNoop(t *testing.T) {
	h := NewUniformColorHandler()
	node := fillNode("flat", uniformSource())

	if got := h.Process(node, Args{Scale: 1.0}).Status; got != ProcessNoChange {
		t.Errorf("Process(identity) = %v, want no_change", got)
	}
	if got := h.Process(node, Args{Scale: 2.0}).Status; got != ProcessSuccess {
		t.Errorf("Process(scale 2) = %v, want success (deliberate no-op)", got)
	}
}

func TestGradientHandler_InterceptsFixedGradients(t *testing.T) {
	h := NewGradientHandler(DefaultRules())
	node := effectNode("grad", layerstack.NodeTypeFillEffect,
		substanceSource("gradient_linear_1/gradient_linear_1", nil))

	if got := h.Validate(node).Status; got != ValidationAccepted {
		t.Fatalf("Validate() = %v, want accepted", got)
	}

	p := h.Process(node, Args{Scale: 2.0})
	if p.Status != ProcessSuccess {
		t.Fatalf("Process() = %v, want success", p.Status)
	}
	// The gradient itself must not be touched.
	src, _ := node.Source()
	params, _ := src.Parameters()
	if len(params) != 0 {
		t.Errorf("gradient parameters mutated: %v", params)
	}
}

func TestGradientHandler_SkipsOtherResources(t *testing.T) {
	h := NewGradientHandler(DefaultRules())
	node := effectNode("fx", layerstack.NodeTypeFillEffect,
		substanceSource("paint/basic", nil))
	if got := h.Validate(node).Status; got != ValidationSkipped {
		t.Errorf("Validate() = %v, want skipped", got)
	}
}
