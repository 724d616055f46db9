package memstack

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack"
)

// Document is the YAML serialization of a project's layer stacks. It is the
// exchange format between the host export shim and the layerforge CLI:
// load → transform/randomize → save produces an edited document the shim
// applies back to the host project.
type Document struct {
	TextureSets []TextureSetDoc `yaml:"texture_sets"`
}

// TextureSetDoc is one texture set and its stacks.
type TextureSetDoc struct {
	Name   string     `yaml:"name"`
	Stacks []StackDoc `yaml:"stacks"`
}

// StackDoc is one ordered list of root layers.
type StackDoc struct {
	Layers []NodeDoc `yaml:"layers"`
}

// NodeDoc is one layer-tree node. Visible defaults to true when omitted.
type NodeDoc struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Visible *bool  `yaml:"visible,omitempty"`

	Layers         []NodeDoc `yaml:"layers,omitempty"`
	ContentEffects []NodeDoc `yaml:"content_effects,omitempty"`
	MaskEffects    []NodeDoc `yaml:"mask_effects,omitempty"`

	Projection string     `yaml:"projection,omitempty"`
	UV         *UVDoc     `yaml:"uv,omitempty"`
	SourceMode string     `yaml:"source_mode,omitempty"`
	Source     *SourceDoc `yaml:"source,omitempty"`
	Material   *SourceDoc `yaml:"material,omitempty"`
	// Channels maps channel name to source for Split-mode nodes.
	Channels map[string]*SourceDoc `yaml:"channels,omitempty"`
}

// UVDoc is the serialized UV transform of a fill node.
type UVDoc struct {
	Scale    [2]float64 `yaml:"scale"`
	Rotation float64    `yaml:"rotation"`
}

// SourceDoc is one serialized content source.
type SourceDoc struct {
	Kind     string                `yaml:"kind"`
	Resource *ResourceDoc          `yaml:"resource,omitempty"`
	Params   map[string]any        `yaml:"params,omitempty"`
	Clamps   map[string][2]float64 `yaml:"clamps,omitempty"`
	// FailWrites marks the source as refusing parameter writes; used to
	// rehearse host failures in documents and tests.
	FailWrites bool                  `yaml:"fail_writes,omitempty"`
	Inputs     map[string]*SourceDoc `yaml:"inputs,omitempty"`
}

// ResourceDoc names the shelf resource behind a source.
type ResourceDoc struct {
	Name    string `yaml:"name"`
	Context string `yaml:"context,omitempty"`
}

var nodeTypeByDoc = map[string]layerstack.NodeType{
	"group":            layerstack.NodeTypeGroup,
	"fill":             layerstack.NodeTypeFill,
	"paint":            layerstack.NodeTypePaint,
	"fill_effect":      layerstack.NodeTypeFillEffect,
	"filter_effect":    layerstack.NodeTypeFilterEffect,
	"generator_effect": layerstack.NodeTypeGeneratorEffect,
}

var projectionByDoc = map[string]layerstack.ProjectionMode{
	"":            layerstack.ProjectionUV,
	"uv":          layerstack.ProjectionUV,
	"triplanar":   layerstack.ProjectionTriplanar,
	"planar":      layerstack.ProjectionPlanar,
	"spherical":   layerstack.ProjectionSpherical,
	"cylindrical": layerstack.ProjectionCylindrical,
	"warp":        layerstack.ProjectionWarp,
}

var sourceKindByDoc = map[string]layerstack.SourceKind{
	"substance":     layerstack.SourceKindSubstance,
	"uniform_color": layerstack.SourceKindUniformColor,
	"image":         layerstack.SourceKindImage,
	"anchor":        layerstack.SourceKindAnchor,
}

// Load reads a layer-stack document from disk and builds a Project.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "read %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse %s", path)
	}
	return FromDocument(doc)
}

// Save writes the project back out as a layer-stack document.
func Save(p *Project, path string) error {
	data, err := yaml.Marshal(ToDocument(p))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal document")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// FromDocument builds an in-memory project from its serialized form.
func FromDocument(doc Document) (*Project, error) {
	p := &Project{}
	for _, setDoc := range doc.TextureSets {
		set := &TextureSet{SetName: setDoc.Name}
		for _, stackDoc := range setDoc.Stacks {
			stack := &Stack{}
			for _, nd := range stackDoc.Layers {
				n, err := buildNode(nd, setDoc.Name)
				if err != nil {
					return nil, err
				}
				stack.Roots = append(stack.Roots, n)
			}
			set.SetStacks = append(set.SetStacks, stack)
		}
		p.Sets = append(p.Sets, set)
	}
	return p, nil
}

func buildNode(nd NodeDoc, setName string) (*Node, error) {
	typ, ok := nodeTypeByDoc[strings.ToLower(nd.Type)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"texture set %q: layer %q has unknown type %q", setName, nd.Name, nd.Type)
	}
	proj, ok := projectionByDoc[strings.ToLower(nd.Projection)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"texture set %q: layer %q has unknown projection %q", setName, nd.Name, nd.Projection)
	}

	n := &Node{
		NodeType: typ,
		NodeName: nd.Name,
		Hidden:   nd.Visible != nil && !*nd.Visible,
		ProjMode: proj,
	}
	if nd.UV != nil {
		n.Proj = layerstack.Projection{Mode: proj, Scale: nd.UV.Scale, Rotation: nd.UV.Rotation}
	} else {
		n.Proj = layerstack.Projection{Mode: proj, Scale: [2]float64{1, 1}}
	}

	switch strings.ToLower(nd.SourceMode) {
	case "", "single":
		n.Mode = layerstack.SourceModeSingle
	case "material":
		n.Mode = layerstack.SourceModeMaterial
	case "split":
		n.Mode = layerstack.SourceModeSplit
	default:
		return nil, errors.New(errors.ErrCodeInvalidDocument,
			"texture set %q: layer %q has unknown source mode %q", setName, nd.Name, nd.SourceMode)
	}

	var err error
	if nd.Source != nil {
		if n.Single, err = buildSource(nd.Source); err != nil {
			return nil, wrapNodeErr(setName, nd.Name, err)
		}
	}
	if nd.Material != nil {
		if n.Material, err = buildSource(nd.Material); err != nil {
			return nil, wrapNodeErr(setName, nd.Name, err)
		}
	}
	if len(nd.Channels) > 0 {
		n.PerChannel = make(map[string]*Source, len(nd.Channels))
		for _, ch := range sortedDocKeys(nd.Channels) {
			src, err := buildSource(nd.Channels[ch])
			if err != nil {
				return nil, wrapNodeErr(setName, nd.Name, err)
			}
			n.PerChannel[ch] = src
			n.Channels = append(n.Channels, ch)
		}
	}

	for _, child := range nd.Layers {
		c, err := buildNode(child, setName)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	for _, fx := range nd.ContentEffects {
		c, err := buildNode(fx, setName)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, c)
	}
	for _, fx := range nd.MaskEffects {
		c, err := buildNode(fx, setName)
		if err != nil {
			return nil, err
		}
		n.Mask = append(n.Mask, c)
	}
	return n, nil
}

func buildSource(sd *SourceDoc) (*Source, error) {
	kind, ok := sourceKindByDoc[strings.ToLower(sd.Kind)]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q", sd.Kind)
	}
	src := &Source{
		SourceKind: kind,
		FailWrites: sd.FailWrites,
		Clamps:     sd.Clamps,
	}
	if sd.Resource != nil {
		src.ResourceID = layerstack.ResourceID{Name: sd.Resource.Name, Context: sd.Resource.Context}
		src.HasRes = true
	}
	if len(sd.Params) > 0 {
		src.Params = make(layerstack.Params, len(sd.Params))
		for k, raw := range sd.Params {
			v, err := layerstack.FromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", k, err)
			}
			src.Params[k] = v
		}
	}
	for _, name := range sortedDocKeys(sd.Inputs) {
		nested, err := buildSource(sd.Inputs[name])
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		src.Inputs = append(src.Inputs, InputSlot{Name: name, Source: nested})
	}
	return src, nil
}

func wrapNodeErr(setName, nodeName string, err error) error {
	return errors.Wrap(errors.ErrCodeInvalidDocument, err,
		"texture set %q: layer %q", setName, nodeName)
}

// ToDocument serializes the project back to its document form.
func ToDocument(p *Project) Document {
	var doc Document
	for _, set := range p.Sets {
		setDoc := TextureSetDoc{Name: set.SetName}
		for _, stack := range set.SetStacks {
			stackDoc := StackDoc{}
			for _, root := range stack.Roots {
				stackDoc.Layers = append(stackDoc.Layers, nodeToDoc(root))
			}
			setDoc.Stacks = append(setDoc.Stacks, stackDoc)
		}
		doc.TextureSets = append(doc.TextureSets, setDoc)
	}
	return doc
}

func nodeToDoc(n *Node) NodeDoc {
	nd := NodeDoc{
		Name: n.NodeName,
		Type: docNodeType(n.NodeType),
	}
	if n.Hidden {
		visible := false
		nd.Visible = &visible
	}
	if n.ProjMode != layerstack.ProjectionUV {
		nd.Projection = docProjection(n.ProjMode)
	}
	if n.Proj.Scale != [2]float64{1, 1} || n.Proj.Rotation != 0 {
		nd.UV = &UVDoc{Scale: n.Proj.Scale, Rotation: n.Proj.Rotation}
	}
	switch n.Mode {
	case layerstack.SourceModeMaterial:
		nd.SourceMode = "material"
	case layerstack.SourceModeSplit:
		nd.SourceMode = "split"
	}
	if n.Single != nil {
		nd.Source = sourceToDoc(n.Single)
	}
	if n.Material != nil {
		nd.Material = sourceToDoc(n.Material)
	}
	if len(n.PerChannel) > 0 {
		nd.Channels = make(map[string]*SourceDoc, len(n.PerChannel))
		for ch, src := range n.PerChannel {
			nd.Channels[ch] = sourceToDoc(src)
		}
	}
	for _, c := range n.Children {
		nd.Layers = append(nd.Layers, nodeToDoc(c))
	}
	for _, c := range n.Content {
		nd.ContentEffects = append(nd.ContentEffects, nodeToDoc(c))
	}
	for _, c := range n.Mask {
		nd.MaskEffects = append(nd.MaskEffects, nodeToDoc(c))
	}
	return nd
}

func sourceToDoc(s *Source) *SourceDoc {
	sd := &SourceDoc{
		Kind:       docSourceKind(s.SourceKind),
		Clamps:     s.Clamps,
		FailWrites: s.FailWrites,
	}
	if s.HasRes {
		sd.Resource = &ResourceDoc{Name: s.ResourceID.Name, Context: s.ResourceID.Context}
	}
	if len(s.Params) > 0 {
		sd.Params = make(map[string]any, len(s.Params))
		for k, v := range s.Params {
			sd.Params[k] = v.ToAny()
		}
	}
	if len(s.Inputs) > 0 {
		sd.Inputs = make(map[string]*SourceDoc, len(s.Inputs))
		for _, in := range s.Inputs {
			sd.Inputs[in.Name] = sourceToDoc(in.Source)
		}
	}
	return sd
}

func docNodeType(t layerstack.NodeType) string {
	for doc, typ := range nodeTypeByDoc {
		if typ == t {
			return doc
		}
	}
	return "fill"
}

func docProjection(m layerstack.ProjectionMode) string {
	for doc, mode := range projectionByDoc {
		if mode == m && doc != "" {
			return doc
		}
	}
	return "uv"
}

func docSourceKind(k layerstack.SourceKind) string {
	for doc, kind := range sourceKindByDoc {
		if kind == k {
			return doc
		}
	}
	return "substance"
}

func sortedDocKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
