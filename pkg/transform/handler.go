package transform

import (
	"math"
	"strings"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// Args carries the user-chosen transform parameters into every handler.
type Args struct {
	// Scale is the UV scale multiplier, strictly positive.
	Scale float64
	// Rotation is the rotation offset in whole degrees, within [-180, 180].
	Rotation int
}

// identity reports whether the args amount to a no-op. Accepted nodes still
// produce a record, but its outcome is no_change rather than success.
func (a Args) identity() bool {
	return a.Scale == 1.0 && a.Rotation == 0
}

// Handler is a stateless strategy for one node/source category.
//
// Validate classifies the node without touching it; Process performs the
// mutation and re-reads the host state to confirm it before reporting
// success. Handlers never mutate the shared Rules tables.
type Handler interface {
	Name() string
	Validate(n layerstack.Node) Validation
	Process(n layerstack.Node, args Args) Process
}

// channelSource pairs a source with the split channel it is bound to.
// channel is empty for single and material sources.
type channelSource struct {
	channel string
	src     layerstack.Source
}

// nodeSources resolves the node's source list according to its source mode.
func nodeSources(n layerstack.Node) ([]channelSource, error) {
	switch n.SourceMode() {
	case layerstack.SourceModeMaterial:
		src, err := n.MaterialSource()
		if err != nil {
			return nil, err
		}
		return []channelSource{{src: src}}, nil
	case layerstack.SourceModeSplit:
		channels := n.ActiveChannels()
		out := make([]channelSource, 0, len(channels))
		for _, ch := range channels {
			src, err := n.ChannelSource(ch)
			if err != nil {
				return nil, err
			}
			out = append(out, channelSource{channel: ch, src: src})
		}
		return out, nil
	default:
		src, err := n.Source()
		if err != nil {
			return nil, err
		}
		return []channelSource{{src: src}}, nil
	}
}

// combineChannels folds per-channel validations into one node-level outcome.
// Any rejected channel rejects the whole node (reasons concatenated); else
// any skipped channel skips it; only when every channel accepts does the
// node accept.
func combineChannels(results []Validation) Validation {
	var rejected, skipped []string
	for _, res := range results {
		switch res.Status {
		case ValidationRejected:
			rejected = append(rejected, res.Message)
		case ValidationSkipped:
			skipped = append(skipped, res.Message)
		}
	}
	if len(rejected) > 0 {
		return Reject(strings.Join(rejected, "; "))
	}
	if len(skipped) > 0 {
		return Skip(strings.Join(skipped, "; "))
	}
	return Accept()
}

// isFillType reports whether the node is a fill layer or fill effect.
func isFillType(t layerstack.NodeType) bool {
	return t == layerstack.NodeTypeFill || t == layerstack.NodeTypeFillEffect
}

// isProjectResource reports whether the source was instantiated from a baked
// project resource (typically a bake result, never a tileable texture).
func isProjectResource(src layerstack.Source) bool {
	res, ok := src.Resource()
	return ok && strings.Contains(strings.ToLower(res.Context), "project")
}

// matchesAnyTemplate reports whether name contains every keyword of at least
// one template.
func matchesAnyTemplate(name string, templates []KeywordTemplate) bool {
	name = strings.ToLower(name)
	for _, tpl := range templates {
		if containsAllKeywords(name, tpl.Keywords) {
			return true
		}
	}
	return false
}

func containsAllKeywords(name string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(name, kw) {
			return false
		}
	}
	return true
}

// hasAnyParam reports whether the dictionary contains any of the given keys
// verbatim.
func hasAnyParam(params layerstack.Params, keys []string) bool {
	for _, key := range keys {
		if _, ok := params[key]; ok {
			return true
		}
	}
	return false
}

// nearlyEqual compares floats within the tolerance used when confirming a
// written projection against the re-read state.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
