// Package memstack is an in-memory implementation of the layerstack
// contract. It backs the CLI (operating on exported layer-stack documents)
// and the test suites, and mimics the host behaviors the core must survive:
// silent parameter clamping, per-source write failures, and atomic rollback
// of a modification scope.
package memstack

import (
	"fmt"
	"sort"

	"github.com/hctsai/layerforge/pkg/layerstack"
)

// Source is an in-memory content source.
type Source struct {
	SourceKind layerstack.SourceKind
	ResourceID layerstack.ResourceID
	HasRes     bool
	Params     layerstack.Params

	// Clamps constrains numeric scalar parameters on write, simulating a
	// host that silently snaps values into range. Keyed by parameter name.
	Clamps map[string][2]float64

	// FailWrites makes every SetParameters call fail, simulating a locked
	// or stale host resource.
	FailWrites bool

	// Inputs are the named image-input slots, in slot order.
	Inputs []InputSlot
}

// InputSlot binds a nested source to a named image input.
type InputSlot struct {
	Name   string
	Source *Source
}

var _ layerstack.Source = (*Source)(nil)

func (s *Source) Kind() layerstack.SourceKind { return s.SourceKind }

func (s *Source) Resource() (layerstack.ResourceID, bool) {
	return s.ResourceID, s.HasRes
}

func (s *Source) Parameters() (layerstack.Params, error) {
	return s.Params.Clone(), nil
}

func (s *Source) SetParameters(p layerstack.Params) error {
	if s.FailWrites {
		return fmt.Errorf("source %q refused parameter write", s.ResourceID.Name)
	}
	if s.Params == nil {
		s.Params = layerstack.Params{}
	}
	for k, v := range p {
		s.Params[k] = s.clamp(k, v)
	}
	return nil
}

// clamp snaps numeric scalars into the configured range, like a host
// enforcing parameter bounds without reporting it.
func (s *Source) clamp(key string, v layerstack.Value) layerstack.Value {
	bounds, ok := s.Clamps[key]
	if !ok {
		return v
	}
	if f, isFloat := v.Float(); isFloat {
		if f < bounds[0] {
			return layerstack.FloatValue(bounds[0])
		}
		if f > bounds[1] {
			return layerstack.FloatValue(bounds[1])
		}
		return v
	}
	if i, isInt := v.Int(); isInt {
		if float64(i) < bounds[0] {
			return layerstack.IntValue(int64(bounds[0]))
		}
		if float64(i) > bounds[1] {
			return layerstack.IntValue(int64(bounds[1]))
		}
	}
	return v
}

func (s *Source) ImageInputs() []string {
	names := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		names[i] = in.Name
	}
	return names
}

func (s *Source) InputSource(name string) (layerstack.Source, error) {
	for _, in := range s.Inputs {
		if in.Name == name {
			return in.Source, nil
		}
	}
	return nil, fmt.Errorf("no image input %q", name)
}

func (s *Source) snapshot() layerstack.Params {
	return s.Params.Clone()
}

// Node is an in-memory layer-tree node.
type Node struct {
	NodeType layerstack.NodeType
	NodeName string
	Hidden   bool

	Children []*Node // sub-layers of a group, topmost first
	Content  []*Node // content-slot effects
	Mask     []*Node // mask-slot effects

	Mode     layerstack.SourceMode
	Channels []string // active channels in Split mode, in stack order

	Single     *Source
	Material   *Source
	PerChannel map[string]*Source

	ProjMode layerstack.ProjectionMode
	Proj     layerstack.Projection
}

var _ layerstack.Node = (*Node)(nil)

func (n *Node) Type() layerstack.NodeType { return n.NodeType }
func (n *Node) Name() string              { return n.NodeName }
func (n *Node) Visible() bool             { return !n.Hidden }

func (n *Node) SubLayers() []layerstack.Node      { return wrapNodes(n.Children) }
func (n *Node) ContentEffects() []layerstack.Node { return wrapNodes(n.Content) }
func (n *Node) MaskEffects() []layerstack.Node    { return wrapNodes(n.Mask) }

func wrapNodes(ns []*Node) []layerstack.Node {
	if len(ns) == 0 {
		return nil
	}
	out := make([]layerstack.Node, len(ns))
	for i, c := range ns {
		out[i] = c
	}
	return out
}

func (n *Node) SourceMode() layerstack.SourceMode { return n.Mode }

func (n *Node) ActiveChannels() []string { return n.Channels }

func (n *Node) Source() (layerstack.Source, error) {
	if n.Single == nil {
		return nil, fmt.Errorf("node %q has no source", n.NodeName)
	}
	return n.Single, nil
}

func (n *Node) ChannelSource(channel string) (layerstack.Source, error) {
	src, ok := n.PerChannel[channel]
	if !ok || src == nil {
		return nil, fmt.Errorf("node %q has no source on channel %q", n.NodeName, channel)
	}
	return src, nil
}

func (n *Node) MaterialSource() (layerstack.Source, error) {
	if n.Material == nil {
		return nil, fmt.Errorf("node %q has no material source", n.NodeName)
	}
	return n.Material, nil
}

func (n *Node) ProjectionMode() layerstack.ProjectionMode { return n.ProjMode }

func (n *Node) Projection() (layerstack.Projection, error) {
	p := n.Proj
	p.Mode = n.ProjMode
	return p, nil
}

func (n *Node) SetProjection(p layerstack.Projection) error {
	// Rotation is stored normalized to [0, 360), matching the host.
	for p.Rotation < 0 {
		p.Rotation += 360
	}
	for p.Rotation >= 360 {
		p.Rotation -= 360
	}
	n.Proj = p
	return nil
}

// Stack is an ordered list of root nodes.
type Stack struct {
	Roots []*Node
}

var _ layerstack.Stack = (*Stack)(nil)

func (s *Stack) RootNodes() []layerstack.Node { return wrapNodes(s.Roots) }

// TextureSet is a named group of stacks.
type TextureSet struct {
	SetName   string
	SetStacks []*Stack
}

var _ layerstack.TextureSet = (*TextureSet)(nil)

func (t *TextureSet) Name() string { return t.SetName }

func (t *TextureSet) Stacks() []layerstack.Stack {
	out := make([]layerstack.Stack, len(t.SetStacks))
	for i, s := range t.SetStacks {
		out[i] = s
	}
	return out
}

// Project is an in-memory project document.
type Project struct {
	Sets []*TextureSet
}

var _ layerstack.Project = (*Project)(nil)

func (p *Project) TextureSets() []layerstack.TextureSet {
	out := make([]layerstack.TextureSet, len(p.Sets))
	for i, s := range p.Sets {
		out[i] = s
	}
	return out
}

// ScopedModification snapshots every mutable piece of state, runs fn, and
// restores the snapshot when fn fails. This mirrors the host's atomic
// undo-scope: a failed run leaves the document untouched.
func (p *Project) ScopedModification(label string, fn func() error) error {
	_ = label // the in-memory project keeps no undo history
	snap := p.snapshot()
	if err := fn(); err != nil {
		p.restore(snap)
		return err
	}
	return nil
}

type sourceState struct {
	src    *Source
	params layerstack.Params
}

type nodeState struct {
	node *Node
	proj layerstack.Projection
}

type projectSnapshot struct {
	sources []sourceState
	nodes   []nodeState
}

func (p *Project) snapshot() projectSnapshot {
	var snap projectSnapshot
	seen := map[*Source]bool{}
	var visitSource func(s *Source)
	visitSource = func(s *Source) {
		if s == nil || seen[s] {
			return
		}
		seen[s] = true
		snap.sources = append(snap.sources, sourceState{src: s, params: s.snapshot()})
		for _, in := range s.Inputs {
			visitSource(in.Source)
		}
	}
	var visitNode func(n *Node)
	visitNode = func(n *Node) {
		snap.nodes = append(snap.nodes, nodeState{node: n, proj: n.Proj})
		visitSource(n.Single)
		visitSource(n.Material)
		for _, name := range sortedKeys(n.PerChannel) {
			visitSource(n.PerChannel[name])
		}
		for _, c := range n.Children {
			visitNode(c)
		}
		for _, c := range n.Content {
			visitNode(c)
		}
		for _, c := range n.Mask {
			visitNode(c)
		}
	}
	for _, set := range p.Sets {
		for _, stack := range set.SetStacks {
			for _, root := range stack.Roots {
				visitNode(root)
			}
		}
	}
	return snap
}

func (p *Project) restore(snap projectSnapshot) {
	for _, s := range snap.sources {
		s.src.Params = s.params
	}
	for _, n := range snap.nodes {
		n.node.Proj = n.proj
	}
}

func sortedKeys(m map[string]*Source) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
