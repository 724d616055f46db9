package transform

import (
	"fmt"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// Dispatcher runs a node through the ordered handler chain and folds the
// outcome into one DispatchResult.
//
// Order matters: the specialised fill handlers must come before the general
// FillHandler or they never see their nodes. A rejection anywhere in the
// chain is terminal; only a skip passes the node along.
type Dispatcher struct {
	handlers []Handler
}

// NewDispatcher builds the standard chain over one shared rule set.
func NewDispatcher(rules *Rules) *Dispatcher {
	return &Dispatcher{
		handlers: []Handler{
			NewBrickHandler(rules),
			NewFill3DHandler(rules),
			NewGradientHandler(rules),
			NewUniformColorHandler(),
			NewFilterHandler(rules),
			NewFillHandler(rules),
			NewGeneratorHandler(rules),
		},
	}
}

// Handlers returns the chain in dispatch order.
func (d *Dispatcher) Handlers() []Handler { return d.handlers }

// Dispatch classifies the node against the chain and, on acceptance, applies
// the transform. A panic inside a handler is converted into a failure result
// so one broken node cannot abort the surrounding traversal.
func (d *Dispatcher) Dispatch(n layerstack.Node, args Args) (result DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			result = DispatchResult{
				OK:      false,
				Kind:    ResultFailed,
				Handler: result.Handler,
				Title:   "handler panic",
				Detail:  fmt.Sprintf("%v", r),
			}
		}
	}()

	for _, h := range d.handlers {
		result.Handler = h.Name()
		v := h.Validate(n)
		switch v.Status {
		case ValidationSkipped:
			continue
		case ValidationRejected:
			return DispatchResult{
				OK:      false,
				Kind:    ResultRejected,
				Handler: h.Name(),
				Title:   "rejected",
				Detail:  v.Message,
			}
		}

		p := h.Process(n, args)
		switch p.Status {
		case ProcessSuccess:
			return DispatchResult{
				OK:      true,
				Kind:    ResultSuccess,
				Handler: h.Name(),
				Title:   "updated",
				Detail:  p.Message,
			}
		case ProcessNoChange:
			return DispatchResult{
				OK:      true,
				Kind:    ResultNoChange,
				Handler: h.Name(),
				Title:   "no change",
				Detail:  p.Message,
			}
		default:
			return DispatchResult{
				OK:      false,
				Kind:    ResultFailed,
				Handler: h.Name(),
				Title:   "failed",
				Detail:  p.Message,
			}
		}
	}

	return DispatchResult{
		OK:     false,
		Kind:   ResultSkipped,
		Title:  "skipped",
		Detail: "no applicable handler",
	}
}
