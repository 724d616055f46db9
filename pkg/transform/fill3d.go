package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// Fill3DHandler adjusts the size parameters of 3D volumetric procedural
// sources (3D Perlin, Worley, Voronoi, ...) bound to fill layers and fill
// effects. Volumetric sources sample space directly, so their size lives in
// a named parameter rather than the UV transform.
//
// Per source, only the first parameter matching the priority list is
// adjusted: a size expressed under more than one key must not be scaled
// twice. Rotation does not apply to volumetric sources.
type Fill3DHandler struct {
	rules *Rules
}

// NewFill3DHandler creates the handler bound to its rule tables.
func NewFill3DHandler(rules *Rules) *Fill3DHandler {
	return &Fill3DHandler{rules: rules}
}

func (h *Fill3DHandler) Name() string { return "Fill3DHandler" }

func (h *Fill3DHandler) Validate(n layerstack.Node) Validation {
	if !isFillType(n.Type()) {
		return Skipf("node type %s is not a fill carrying a 3D texture", n.Type())
	}
	if n.SourceMode() == layerstack.SourceModeMaterial {
		return Skip("material source mode cannot be a 3D texture")
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

func (h *Fill3DHandler) validateSource(src layerstack.Source) Validation {
	res, ok := src.Resource()
	if !ok {
		return Skip("source has no resource identity")
	}
	params, err := src.Parameters()
	if err != nil {
		return Skip("source lacks the expected parameter interface")
	}
	if !hasAnyParam(params, h.rules.ProceduralParams) {
		return Skip("source does not match the 3D texture parameter signature")
	}
	if !matchesAnyTemplate(res.Name, h.rules.Procedural3D) {
		return Skip("source does not match the 3D texture parameter signature")
	}
	return Accept()
}

// scaleTarget records one parameter slated for adjustment on one source.
type scaleTarget struct {
	channel string
	src     layerstack.Source
	key     string
	old     layerstack.Value
}

func (h *Fill3DHandler) Process(n layerstack.Node, args Args) Process {
	if args.Scale == 1.0 {
		return NoChange()
	}

	sources, err := nodeSources(n)
	if err != nil {
		return Failf("error reading node sources: %v", err)
	}

	// Pass 1: pick the first matching size parameter per source.
	var targets []scaleTarget
	for _, cs := range sources {
		params, err := cs.src.Parameters()
		if err != nil {
			continue
		}
		key, old, found := firstScalableParam(params, h.rules.ProceduralParams)
		if found {
			targets = append(targets, scaleTarget{channel: cs.channel, src: cs.src, key: key, old: old})
		}
	}
	if len(targets) == 0 {
		return NoChange()
	}

	// Pass 2: apply, writing only the chosen key per source.
	for _, t := range targets {
		scaled, ok := t.old.ScaleClamped(args.Scale)
		if !ok {
			continue
		}
		if err := t.src.SetParameters(layerstack.Params{t.key: scaled}); err != nil {
			return Failf("error writing parameter %s: %v", t.key, err)
		}
	}

	// Pass 3: re-read and report only the parameters the host actually moved.
	var changes []string
	for _, t := range targets {
		actual, err := t.src.Parameters()
		if err != nil {
			return Failf("error confirming parameter %s: %v", t.key, err)
		}
		got := actual[t.key]
		if got.Equal(t.old) {
			continue
		}
		prefix := ""
		if t.channel != "" {
			prefix = fmt.Sprintf("channel %s ", t.channel)
		}
		changes = append(changes, fmt.Sprintf("%sparameter %s: %s => %s", prefix, t.key, t.old, got))
	}
	if len(changes) == 0 {
		return NoChange()
	}
	return Changed(strings.Join(changes, "; "))
}

// firstScalableParam scans the priority list and returns the first numeric
// scalar parameter whose key contains the priority name as a substring.
// Keys are scanned in sorted order so ties resolve deterministically.
func firstScalableParam(params layerstack.Params, priority []string) (string, layerstack.Value, bool) {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, want := range priority {
		for _, key := range keys {
			if strings.Contains(strings.ToLower(key), want) && params[key].IsNumericScalar() {
				return key, params[key], true
			}
		}
	}
	return "", layerstack.Value{}, false
}
