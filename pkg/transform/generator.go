package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// GeneratorHandler adjusts the scale parameters of mask generators
// (Mask Editor, Metal Edge Wear, ...). Generators are matched fuzzily
// against keyword templates because studios ship renamed or tweaked copies
// of the stock generators; a generator matching no template is rejected
// with the closest near-miss named so an author can extend the rules file.
//
// Rotation does not apply: generators derive orientation from baked mesh
// maps, not from a UV transform.
type GeneratorHandler struct {
	rules *Rules
}

// NewGeneratorHandler creates the handler bound to its rule tables.
func NewGeneratorHandler(rules *Rules) *GeneratorHandler {
	return &GeneratorHandler{rules: rules}
}

func (h *GeneratorHandler) Name() string { return "GeneratorHandler" }

func (h *GeneratorHandler) Validate(n layerstack.Node) Validation {
	if n.Type() != layerstack.NodeTypeGeneratorEffect {
		return Skipf("node type %s is not a generator", n.Type())
	}

	src, err := n.Source()
	if err != nil {
		return Rejectf("generator has no readable source: %v", err)
	}
	params, err := src.Parameters()
	if err != nil {
		return Rejectf("error reading generator parameters: %v", err)
	}

	keys := lowerKeys(params)

	// Templates are ordered; the first full match wins. A partial match is
	// remembered as the closest miss for the rejection message.
	bestMissing := -1
	bestName := ""
	for _, tpl := range h.rules.GeneratorTemplates {
		missing := missingKeywords(keys, tpl.Keywords)
		if len(missing) == 0 {
			return Accept()
		}
		if len(missing) < len(tpl.Keywords) {
			if bestMissing == -1 || len(missing) < bestMissing {
				bestMissing = len(missing)
				bestName = fmt.Sprintf("%s-style generator suspected, missing parameters: %s",
					tpl.Name, strings.Join(missing, ", "))
			}
		}
	}
	if bestMissing != -1 {
		return Reject(bestName)
	}
	return Reject("generator matches no known parameter template")
}

func (h *GeneratorHandler) Process(n layerstack.Node, args Args) Process {
	if args.Scale == 1.0 {
		return NoChange()
	}

	src, err := n.Source()
	if err != nil {
		return Failf("error reading generator source: %v", err)
	}
	params, err := src.Parameters()
	if err != nil {
		return Failf("error reading generator parameters: %v", err)
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updates := layerstack.Params{}
	old := layerstack.Params{}
	for _, key := range keys {
		if !strings.Contains(strings.ToLower(key), "scale") {
			continue
		}
		v := params[key]
		scaled, ok := v.ScaleClamped(args.Scale)
		if !ok || scaled.Equal(v) {
			continue
		}
		old[key] = v
		updates[key] = scaled
	}
	if len(updates) == 0 {
		return NoChange()
	}

	if err := src.SetParameters(updates); err != nil {
		return Failf("error writing generator parameters: %v", err)
	}

	actual, err := src.Parameters()
	if err != nil {
		return Failf("error confirming generator parameters: %v", err)
	}
	var changes []string
	for _, key := range keys {
		before, wasUpdated := old[key]
		if !wasUpdated || actual[key].Equal(before) {
			continue
		}
		changes = append(changes, fmt.Sprintf("%s: %s => %s", key, before, actual[key]))
	}
	if len(changes) == 0 {
		return NoChange()
	}
	return Changed("generator parameters " + strings.Join(changes, "; "))
}

// lowerKeys returns the parameter names lowercased for keyword matching.
func lowerKeys(params layerstack.Params) []string {
	out := make([]string, 0, len(params))
	for key := range params {
		out = append(out, strings.ToLower(key))
	}
	return out
}

// missingKeywords returns the template keywords with no parameter name
// containing them as a substring.
func missingKeywords(keys []string, keywords []string) []string {
	var missing []string
	for _, kw := range keywords {
		found := false
		for _, key := range keys {
			if strings.Contains(key, kw) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, kw)
		}
	}
	return missing
}
