package transform

import (
	"fmt"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// GradientHandler intercepts fill effects bound to a fixed gradient from the
// exact allow-list. Fixed gradients map to geometry, not to UV space, so
// they are accepted and deliberately left untouched: intercepting them here
// keeps the plain fill handler from scaling them by accident.
type GradientHandler struct {
	rules *Rules
}

// NewGradientHandler creates the handler bound to its rule tables.
func NewGradientHandler(rules *Rules) *GradientHandler {
	return &GradientHandler{rules: rules}
}

func (h *GradientHandler) Name() string { return "GradientHandler" }

func (h *GradientHandler) Validate(n layerstack.Node) Validation {
	if n.Type() != layerstack.NodeTypeFillEffect {
		return Skipf("node type %s is not a gradient fill effect", n.Type())
	}
	switch n.SourceMode() {
	case layerstack.SourceModeMaterial:
		return Skip("material source mode cannot be a gradient")
	case layerstack.SourceModeSplit:
		return Skip("split-mode nodes are not supported for gradients")
	}

	src, err := n.Source()
	if err != nil {
		return Rejectf("error reading node source: %v", err)
	}
	res, ok := src.Resource()
	if !ok {
		return Skip("source has no resource identity")
	}
	if !containsResource(h.rules.GradientResources, res.Name) {
		return Skipf("resource %s is not in the fixed gradient allow-list", res.Name)
	}
	return Accept()
}

func (h *GradientHandler) Process(n layerstack.Node, args Args) Process {
	if args.identity() {
		return NoChange()
	}
	src, err := n.Source()
	if err != nil {
		return Failf("error reading node source: %v", err)
	}
	res, _ := src.Resource()
	return Changed(fmt.Sprintf("fixed gradient %s is geometry-relative; left unchanged", res.Name))
}
