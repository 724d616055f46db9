package transform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// FilterHandler compensates filter effect parameters for a UV scale so the
// filtered result keeps the same apparent size in world space. Each
// supported filter resource carries a per-parameter strategy table: blur
// intensity scales inversely with magnification, warp/noise frequency scales
// directly.
//
// Rotation compensation for filters is deliberately unimplemented: no
// supported filter exposes a rotation-like parameter with verified
// semantics.
type FilterHandler struct {
	rules *Rules
}

// NewFilterHandler creates the handler bound to its rule tables.
func NewFilterHandler(rules *Rules) *FilterHandler {
	return &FilterHandler{rules: rules}
}

func (h *FilterHandler) Name() string { return "FilterHandler" }

func (h *FilterHandler) Validate(n layerstack.Node) Validation {
	if n.Type() != layerstack.NodeTypeFilterEffect {
		return Skipf("node type %s is not a filter effect", n.Type())
	}

	src, err := n.Source()
	if err != nil {
		return Rejectf("filter has no readable source: %v", err)
	}
	res, ok := src.Resource()
	if !ok {
		return Reject("filter source has no resource identity")
	}
	resName := strings.ToLower(res.Name)
	strategies, ok := h.rules.FilterStrategies[resName]
	if !ok {
		return Rejectf("unsupported filter resource: %s", resName)
	}

	params, err := src.Parameters()
	if err != nil {
		return Rejectf("error reading filter parameters: %v", err)
	}
	var missing []string
	for name := range strategies {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Rejectf("resource %s is missing expected parameters: %s", resName, strings.Join(missing, ", "))
	}
	return Accept()
}

func (h *FilterHandler) Process(n layerstack.Node, args Args) Process {
	if args.Scale == 1.0 {
		return NoChange()
	}

	src, err := n.Source()
	if err != nil {
		return Failf("error reading filter source: %v", err)
	}
	res, _ := src.Resource()
	strategies := h.rules.FilterStrategies[strings.ToLower(res.Name)]

	params, err := src.Parameters()
	if err != nil {
		return Failf("error reading filter parameters: %v", err)
	}

	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)

	updates := layerstack.Params{}
	old := layerstack.Params{}
	for _, name := range names {
		factor := args.Scale
		if strategies[name] == ScaleInverse {
			factor = 1.0 / args.Scale
		}
		next, ok := scaleFilterValue(params[name], factor)
		if !ok {
			return Failf("parameter %s has unexpected shape %s", name, params[name].Kind())
		}
		if next.Equal(params[name]) {
			continue
		}
		old[name] = params[name]
		updates[name] = next
	}
	if len(updates) == 0 {
		return NoChange()
	}

	if err := src.SetParameters(updates); err != nil {
		return Failf("error writing filter parameters: %v", err)
	}

	actual, err := src.Parameters()
	if err != nil {
		return Failf("error confirming filter parameters: %v", err)
	}
	var changes []string
	for _, name := range names {
		before, wasUpdated := old[name]
		if !wasUpdated || actual[name].Equal(before) {
			continue
		}
		changes = append(changes, fmt.Sprintf("%s: %s => %s", name, before, actual[name]))
	}
	if len(changes) == 0 {
		return NoChange()
	}
	return Changed(fmt.Sprintf("updated %s parameters: %s", res.Name, strings.Join(changes, "; ")))
}

// scaleFilterValue multiplies a numeric scalar by factor without the
// procedural floor clamps: filter intensities may legitimately approach zero.
func scaleFilterValue(v layerstack.Value, factor float64) (layerstack.Value, bool) {
	if f, ok := v.Float(); ok {
		return layerstack.FloatValue(f * factor), true
	}
	if i, ok := v.Int(); ok {
		return layerstack.IntValue(int64(math.Round(float64(i) * factor))), true
	}
	return v, false
}
