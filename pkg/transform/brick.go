package transform

import (
	"fmt"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// BrickHandler adjusts the tile count of brick-pattern generator fill
// effects so the bricks keep their apparent size after a UV scale.
//
// Only the integer-pair brick count needs compensation: bevel, gap and
// middle-size parameters are expressed relative to one brick and follow
// automatically. Rotation does not apply to brick generators.
//
// Split-mode nodes are skipped; the stock brick generators are only ever
// used as single-source fill effects.
type BrickHandler struct {
	rules *Rules
}

// NewBrickHandler creates the handler bound to its rule tables.
func NewBrickHandler(rules *Rules) *BrickHandler {
	return &BrickHandler{rules: rules}
}

func (h *BrickHandler) Name() string { return "BrickHandler" }

func (h *BrickHandler) Validate(n layerstack.Node) Validation {
	if n.Type() != layerstack.NodeTypeFillEffect {
		return Skipf("node type %s is not a brick generator fill effect", n.Type())
	}
	switch n.SourceMode() {
	case layerstack.SourceModeMaterial:
		return Skip("material source mode cannot be a brick generator")
	case layerstack.SourceModeSplit:
		return Skip("split-mode nodes are not supported for brick generators")
	}

	src, err := n.Source()
	if err != nil {
		return Rejectf("error reading node source: %v", err)
	}
	res, ok := src.Resource()
	if !ok {
		return Skip("source has no resource identity")
	}
	if !containsResource(h.rules.BrickResources, res.Name) {
		return Skipf("resource %s is not a supported brick generator", res.Name)
	}
	params, err := src.Parameters()
	if err != nil {
		return Rejectf("error reading source parameters: %v", err)
	}
	if _, ok := params[BrickCountParam]; !ok {
		return Skipf("brick generator lacks the %s parameter", BrickCountParam)
	}
	return Accept()
}

func (h *BrickHandler) Process(n layerstack.Node, args Args) Process {
	if args.Scale == 1.0 {
		return NoChange()
	}

	src, err := n.Source()
	if err != nil {
		return Failf("error reading node source: %v", err)
	}
	params, err := src.Parameters()
	if err != nil {
		return Failf("error reading source parameters: %v", err)
	}

	old := params[BrickCountParam]
	scaled, ok := old.ScalePairClamped(args.Scale)
	if !ok {
		return Failf("parameter %s has unexpected shape %s", BrickCountParam, old.Kind())
	}
	if scaled.Equal(old) {
		return NoChange()
	}

	if err := src.SetParameters(layerstack.Params{BrickCountParam: scaled}); err != nil {
		return Failf("error writing brick count: %v", err)
	}

	// Re-read to confirm the host accepted the new count.
	actual, err := src.Parameters()
	if err != nil {
		return Failf("error confirming brick count: %v", err)
	}
	got := actual[BrickCountParam]
	if got.Equal(old) {
		return NoChange()
	}
	return Changed(fmt.Sprintf("brick count %s: %s => %s", BrickCountParam, old, got))
}
