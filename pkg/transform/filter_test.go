package transform

import (
	"strings"
	"testing"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

func TestFilterHandler_Validate(t *testing.T) {
	h := NewFilterHandler(DefaultRules())

	tests := []struct {
		name string
		node layerstack.Node
		want ValidationStatus
	}{
		{
			"blur with intensity accepted",
			blurEffect("blur", 4.0),
			ValidationAccepted,
		},
		{
			"fill layer skipped",
			fillNode("base", substanceSource("paint/basic", nil)),
			ValidationSkipped,
		},
		{
			"unsupported filter rejected",
			effectNode("sharpen", layerstack.NodeTypeFilterEffect,
				substanceSource("sharpen/sharpen", layerstack.Params{
					"intensity": layerstack.FloatValue(1),
				})),
			ValidationRejected,
		},
		{
			"missing parameter rejected",
			effectNode("warp", layerstack.NodeTypeFilterEffect,
				substanceSource("warp/warp", layerstack.Params{
					"intensity": layerstack.FloatValue(1),
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

func TestFilterHandler_MissingParamNamed(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := effectNode("warp", layerstack.NodeTypeFilterEffect,
		substanceSource("warp/warp", layerstack.Params{
			"intensity": layerstack.FloatValue(1),
		}))
	v := h.Validate(node)
	if v.Status != ValidationRejected {
		t.Fatalf("Validate() = %v, want rejected", v.Status)
	}
	if !strings.Contains(v.Message, "noise_scale") {
		t.Errorf("message %q does not name the missing parameter", v.Message)
	}
}

func TestFilterHandler_InverseScale(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := blurEffect("blur", 4.0)

	p := h.Process(node, Args{Scale: 2.0})
	if p.Status != ProcessSuccess {
		t.Fatalf("Process() = %v (%s), want success", p.Status, p.Message)
	}

	src, _ := node.Source()
	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(2.0); !got.Equal(want) {
		t.Errorf("intensity = %v, want %v", got, want)
	}
}

func TestFilterHandler_DirectAndInverseMixed(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := effectNode("warp", layerstack.NodeTypeFilterEffect,
		substanceSource("warp/warp", layerstack.Params{
			"intensity":   layerstack.FloatValue(4.0),
			"noise_scale": layerstack.FloatValue(3.0),
		}))

	p := h.Process(node, Args{Scale: 2.0})
	if p.Status != ProcessSuccess {
		t.Fatalf("Process() = %v (%s), want success", p.Status, p.Message)
	}

	src, _ := node.Source()
	params, _ := src.Parameters()
	if got, want := params["intensity"], layerstack.FloatValue(2.0); !got.Equal(want) {
		t.Errorf("intensity = %v, want %v (inverse)", got, want)
	}
	if got, want := params["noise_scale"], layerstack.FloatValue(6.0); !got.Equal(want) {
		t.Errorf("noise_scale = %v, want %v (direct)", got, want)
	}
}

func TestFilterHandler_IdentityScaleIsNoChange(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	if got := h.Process(blurEffect("blur", 4.0), Args{Scale: 1.0}).Status; got != ProcessNoChange {
		t.Errorf("Process(scale 1) = %v, want no_change", got)
	}
}

func TestFilterHandler_ClampedHostReportsActual(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := blurEffect("blur", 4.0)
	node.Single.Clamps = map[string][2]float64{"intensity": {0, 5}}

	// 4.0 * (1/0.5) = 8.0, host clamps to 5.0; the re-read value wins.
	p := h.Process(node, Args{Scale: 0.5})
	if p.Status != ProcessSuccess {
		t.Fatalf("Process() = %v (%s), want success", p.Status, p.Message)
	}
	if !strings.Contains(p.Message, "=> 5") {
		t.Errorf("message %q does not report the clamped value", p.Message)
	}
}

func TestFilterHandler_FullyClampedIsNoChange(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := blurEffect("blur", 4.0)
	// The host pins intensity to exactly its current value.
	node.Single.Clamps = map[string][2]float64{"intensity": {4, 4}}

	if got := h.Process(node, Args{Scale: 2.0}).Status; got != ProcessNoChange {
		t.Errorf("Process() with a pinned parameter = %v, want no_change", got)
	}
}

func TestFilterHandler_WriteFailure(t *testing.T) {
	h := NewFilterHandler(DefaultRules())
	node := blurEffect("blur", 4.0)
	node.Single.FailWrites = true

	if got := h.Process(node, Args{Scale: 2.0}).Status; got != ProcessFailure {
		t.Errorf("Process() on a refusing source = %v, want failure", got)
	}
}
