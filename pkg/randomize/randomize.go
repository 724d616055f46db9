// Package randomize collects every seed-bearing procedural source in a
// project and writes one shared random seed to all of them, so correlated
// noise across layers re-rolls together.
package randomize

import (
	"math/rand/v2"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/observe"
)

// Result summarises one seed run.
type Result struct {
	// Seed is the shared 16-bit seed written to every collected source.
	Seed uint16
	// SuccessCount is the number of sources the seed was confirmed on.
	SuccessCount int
	// FailedCount is the number of sources the host refused to update.
	FailedCount int
}

// Total returns the number of collected sources.
func (r Result) Total() int { return r.SuccessCount + r.FailedCount }

// NewSeed draws a fresh 16-bit seed. The host stores substance seeds as
// 16-bit values; wider seeds are silently truncated, so generation stays in
// range from the start.
func NewSeed() uint16 {
	return uint16(rand.Uint32())
}

// Collect walks the project's layer trees and returns every substance source
// exposing a seed parameter, including sources plugged into other sources'
// image-input slots. Hidden layers are collected too: a hidden layer's seed
// still matters the moment it is re-enabled.
func Collect(project layerstack.Project) []layerstack.Source {
	var out []layerstack.Source
	for _, ts := range project.TextureSets() {
		for _, stack := range ts.Stacks() {
			for _, n := range stack.RootNodes() {
				out = collectNode(n, out)
			}
		}
	}
	return out
}

func collectNode(n layerstack.Node, out []layerstack.Source) []layerstack.Source {
	switch n.Type() {
	case layerstack.NodeTypeGroup:
		for _, child := range n.SubLayers() {
			out = collectNode(child, out)
		}
	case layerstack.NodeTypeFill,
		layerstack.NodeTypeFillEffect,
		layerstack.NodeTypeFilterEffect,
		layerstack.NodeTypeGeneratorEffect:
		out = collectSources(n, out)
	}
	for _, e := range n.ContentEffects() {
		out = collectNode(e, out)
	}
	for _, e := range n.MaskEffects() {
		out = collectNode(e, out)
	}
	return out
}

func collectSources(n layerstack.Node, out []layerstack.Source) []layerstack.Source {
	switch n.SourceMode() {
	case layerstack.SourceModeMaterial:
		if src, err := n.MaterialSource(); err == nil {
			out = collectSource(src, out)
		}
	case layerstack.SourceModeSplit:
		for _, ch := range n.ActiveChannels() {
			if src, err := n.ChannelSource(ch); err == nil {
				out = collectSource(src, out)
			}
		}
	default:
		if src, err := n.Source(); err == nil {
			out = collectSource(src, out)
		}
	}
	return out
}

// collectSource keeps the source if it carries a seed, then looks one level
// into its image-input slots: substances are routinely plugged into other
// substances' inputs and carry their own seed.
func collectSource(src layerstack.Source, out []layerstack.Source) []layerstack.Source {
	if hasSeed(src) {
		observe.Seed().OnSourceCollected(false)
		out = append(out, src)
	}
	for _, slot := range src.ImageInputs() {
		nested, err := src.InputSource(slot)
		if err != nil || nested == nil {
			continue
		}
		if hasSeed(nested) {
			observe.Seed().OnSourceCollected(true)
			out = append(out, nested)
		}
	}
	return out
}

func hasSeed(src layerstack.Source) bool {
	if src.Kind() != layerstack.SourceKindSubstance {
		return false
	}
	params, err := src.Parameters()
	if err != nil {
		return false
	}
	_, ok := params[layerstack.SeedParam]
	return ok
}

// Apply writes the seed to every source and confirms each write by
// re-reading. Individual refusals are counted, never fatal.
func Apply(sources []layerstack.Source, seed uint16) Result {
	res := Result{Seed: seed}
	want := layerstack.IntValue(int64(seed))
	for _, src := range sources {
		if err := src.SetParameters(layerstack.Params{layerstack.SeedParam: want}); err != nil {
			res.FailedCount++
			continue
		}
		params, err := src.Parameters()
		if err != nil || !params[layerstack.SeedParam].Equal(want) {
			res.FailedCount++
			continue
		}
		res.SuccessCount++
	}
	observe.Seed().OnSeedApplied(seed, res.SuccessCount, res.FailedCount)
	return res
}

// Run collects, draws a seed, and applies it inside one scoped modification
// so the whole re-roll is a single undo step.
func Run(project layerstack.Project) (Result, error) {
	if project == nil {
		return Result{}, errors.New(errors.ErrCodeNoProject, "no project is open")
	}
	sources := Collect(project)
	if len(sources) == 0 {
		return Result{}, errors.New(errors.ErrCodeNoSeedSources, "the project has no seed-bearing sources")
	}

	seed := NewSeed()
	var res Result
	err := project.ScopedModification("Randomize seeds", func() error {
		res = Apply(sources, seed)
		return nil
	})
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "scoped modification failed")
	}
	return res, nil
}
