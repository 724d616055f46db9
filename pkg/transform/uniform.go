package transform

import (
	"fmt"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// UniformColorHandler intercepts fill layers and fill effects whose sources
// are all flat colors. A uniform color has no spatial mapping, so there is
// nothing to scale or rotate; the handler accepts such nodes and records a
// deliberate no-op.
type UniformColorHandler struct{}

// NewUniformColorHandler creates the handler.
func NewUniformColorHandler() *UniformColorHandler {
	return &UniformColorHandler{}
}

func (h *UniformColorHandler) Name() string { return "UniformColorHandler" }

func (h *UniformColorHandler) Validate(n layerstack.Node) Validation {
	if !isFillType(n.Type()) {
		return Skipf("node type %s is not a fill", n.Type())
	}
	if n.SourceMode() == layerstack.SourceModeMaterial {
		return Skip("material source mode cannot be a uniform color")
	}

	sources, err := nodeSources(n)
	if err != nil {
		return Skipf("error reading node sources: %v", err)
	}
	if len(sources) == 0 {
		return Skip("split node has no active sources")
	}
	for _, cs := range sources {
		if cs.src.Kind() != layerstack.SourceKindUniformColor {
			if n.SourceMode() == layerstack.SourceModeSplit {
				return Skip("some split channels are not uniform color")
			}
			return Skip("source is not a uniform color")
		}
	}
	return Accept()
}

func (h *UniformColorHandler) Process(n layerstack.Node, args Args) Process {
	if args.identity() {
		return NoChange()
	}
	if n.SourceMode() == layerstack.SourceModeSplit {
		return Changed(fmt.Sprintf("uniform color on %d channels; nothing to adjust", len(n.ActiveChannels())))
	}
	return Changed("uniform color source; nothing to adjust")
}
