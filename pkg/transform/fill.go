package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// FillHandler is the general case: fill layers and fill effects whose
// content maps through the node's own UV transform. It multiplies the UV
// tiling vector and shifts the rotation; the sources themselves are not
// touched.
//
// It sits near the end of the chain so the specialised handlers (brick,
// 3D procedural, gradient, uniform color) get first claim on their
// categories.
type FillHandler struct {
	rules *Rules
}

// NewFillHandler creates the handler bound to its rule tables.
func NewFillHandler(rules *Rules) *FillHandler {
	return &FillHandler{rules: rules}
}

func (h *FillHandler) Name() string { return "FillHandler" }

func (h *FillHandler) Validate(n layerstack.Node) Validation {
	if !isFillType(n.Type()) {
		return Skipf("node type %s is not a fill", n.Type())
	}

	switch mode := n.ProjectionMode(); mode {
	case layerstack.ProjectionUV, layerstack.ProjectionTriplanar:
	default:
		return Rejectf("projection mode %s does not respond to UV transforms", mode)
	}

	if n.SourceMode() == layerstack.SourceModeMaterial {
		src, err := n.MaterialSource()
		if err != nil {
			return Rejectf("error reading material source: %v", err)
		}
		if src.Kind() == layerstack.SourceKindAnchor {
			return Reject("anchor references are transformed through their target layer")
		}
		return Accept()
	}

	sources, err := nodeSources(n)
	if err != nil {
		return Rejectf("error reading node sources: %v", err)
	}
	if len(sources) == 0 {
		return Skip("split node has no active sources")
	}
	results := make([]Validation, len(sources))
	for i, cs := range sources {
		results[i] = h.validateSource(cs.src)
	}
	return combineChannels(results)
}

// validateSource rejects the source categories whose geometry does not live
// in the node's UV transform. Scaling the transform under them would move
// content that is pinned to the mesh or to another layer.
func (h *FillHandler) validateSource(src layerstack.Source) Validation {
	if src.Kind() == layerstack.SourceKindAnchor {
		return Reject("anchor references are transformed through their target layer")
	}
	if isProjectResource(src) {
		res, _ := src.Resource()
		return Rejectf("baked project resource %s is mesh-locked", res.Name)
	}
	if h.looksVolumetric(src) {
		res, _ := src.Resource()
		return Rejectf("resource %s looks like a 3D texture the earlier handler did not claim", res.Name)
	}
	return Accept()
}

// looksVolumetric catches sources named like a 3D procedural that also carry
// a size parameter. Such a source slipped past the 3D handler only because
// one of its siblings on the same node disqualified the node as a whole.
func (h *FillHandler) looksVolumetric(src layerstack.Source) bool {
	res, ok := src.Resource()
	if !ok {
		return false
	}
	if !strings.Contains(strings.ToLower(res.Name), "3d") {
		return false
	}
	params, err := src.Parameters()
	if err != nil {
		return false
	}
	return hasAnyParam(params, h.rules.ProceduralParams)
}

func (h *FillHandler) Process(n layerstack.Node, args Args) Process {
	if args.identity() {
		return NoChange()
	}

	old, err := n.Projection()
	if err != nil {
		return Failf("error reading projection: %v", err)
	}

	next := old
	next.Scale[0] = old.Scale[0] * args.Scale
	next.Scale[1] = old.Scale[1] * args.Scale
	next.Rotation = normalizeDegrees(old.Rotation + float64(args.Rotation))

	if err := n.SetProjection(next); err != nil {
		return Failf("error writing projection: %v", err)
	}

	got, err := n.Projection()
	if err != nil {
		return Failf("error confirming projection: %v", err)
	}

	var changes []string
	if !nearlyEqual(got.Scale[0], old.Scale[0]) || !nearlyEqual(got.Scale[1], old.Scale[1]) {
		changes = append(changes, fmt.Sprintf("scale (%g, %g) => (%g, %g)",
			old.Scale[0], old.Scale[1], got.Scale[0], got.Scale[1]))
	}
	if !nearlyEqual(got.Rotation, old.Rotation) {
		changes = append(changes, fmt.Sprintf("rotation %g => %g", old.Rotation, got.Rotation))
	}
	if len(changes) == 0 {
		return NoChange()
	}
	return Changed("UV transform " + strings.Join(changes, ", "))
}

// normalizeDegrees maps an angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
