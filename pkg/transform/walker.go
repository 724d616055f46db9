package transform

import (
	"fmt"

	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/observe"
)

// Walker drives a pre-order depth-first traversal over a layer stack,
// dispatching every visited node and recording exactly one report entry per
// node.
//
// Hidden groups produce a single rejected entry and their entire subtree,
// effects included, is left unvisited. Visible groups recurse into their
// sub-layers first and then into their own effect slots. Non-group nodes are
// dispatched before their effects.
type Walker struct {
	dispatcher *Dispatcher
	args       Args
}

// NewWalker creates a walker over the given dispatcher and run arguments.
func NewWalker(d *Dispatcher, args Args) *Walker {
	return &Walker{dispatcher: d, args: args}
}

// WalkStack traverses one stack's root layers under the given base path,
// appending to the report. Per-node failures are recorded and never abort
// the traversal.
func (w *Walker) WalkStack(stack layerstack.Stack, base Path, report *Report) {
	w.walkSiblings(stack.RootNodes(), base, report)
}

// walkSiblings visits an ordered sibling list, disambiguating duplicate
// names before descending so every entry key stays unique.
func (w *Walker) walkSiblings(nodes []layerstack.Node, base Path, report *Report) {
	nameCounts := map[string]int{}
	for _, n := range nodes {
		nameCounts[n.Name()]++
	}
	seen := map[string]int{}
	for _, n := range nodes {
		name := n.Name()
		segment := name
		if nameCounts[name] > 1 {
			seen[name]++
			segment = fmt.Sprintf("%s #%d", name, seen[name])
		}
		w.walkNode(n, base.Child(segment), report)
	}
}

func (w *Walker) walkNode(n layerstack.Node, path Path, report *Report) {
	observe.Walk().OnNodeVisited(path, n.Type().String())

	if n.Type() == layerstack.NodeTypeGroup {
		if !n.Visible() {
			// One entry for the whole subtree; nothing under it is visited.
			result := DispatchResult{
				OK:     false,
				Kind:   ResultRejected,
				Title:  "rejected",
				Detail: "group is hidden; subtree not visited",
			}
			report.Add(path, n.Type().String(), result)
			observe.Walk().OnDispatch(path, result.Handler, result.OK, result.Title)
			return
		}
		w.walkSiblings(n.SubLayers(), path, report)
		w.walkEffects(n, path, report)
		return
	}

	result := w.dispatcher.Dispatch(n, w.args)
	report.Add(path, n.Type().String(), result)
	observe.Walk().OnDispatch(path, result.Handler, result.OK, result.Title)

	w.walkEffects(n, path, report)
}

// walkEffects visits the content and mask effect slots of a node. Effect
// path segments carry their slot and one-based position so two effects with
// the same display name stay distinct.
func (w *Walker) walkEffects(n layerstack.Node, path Path, report *Report) {
	for i, e := range n.ContentEffects() {
		segment := fmt.Sprintf("%s (effect %d)", e.Name(), i+1)
		w.walkNode(e, path.Child(segment), report)
	}
	for i, e := range n.MaskEffects() {
		segment := fmt.Sprintf("%s (mask %d)", e.Name(), i+1)
		w.walkNode(e, path.Child(segment), report)
	}
}
