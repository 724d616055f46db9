package transform

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hctsai/layerforge/pkg/errors"
)

// ScaleStrategy selects how a filter parameter responds to a scale factor.
type ScaleStrategy string

const (
	// ScaleInverse multiplies by 1/scale. Used for intensities and blur
	// radii: the blurred feature keeps constant apparent size in world
	// space when the texture is magnified.
	ScaleInverse ScaleStrategy = "inverse"
	// ScaleDirect multiplies by scale. Used for noise and warp frequencies.
	ScaleDirect ScaleStrategy = "direct"
)

// KeywordTemplate names a set of keywords that must all appear (as
// substrings) for a source to match the template.
type KeywordTemplate struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Rules is the immutable strategy data the dispatcher and handlers consult.
// It is built once (DefaultRules, optionally overlaid by LoadRules) and
// never mutated afterwards; handlers only read it.
type Rules struct {
	// ProceduralParams is the priority-ordered list of parameter names a
	// volumetric procedural source may express its size in. Handlers adjust
	// only the first match per source to avoid double-scaling a size
	// expressed under more than one key.
	ProceduralParams []string

	// Procedural3D identifies 3D volumetric procedural sources by resource
	// name keywords.
	Procedural3D []KeywordTemplate

	// BrickResources is the exact allow-list of brick generator resource
	// identifiers (lowercase).
	BrickResources []string

	// GradientResources is the exact allow-list of fixed gradient resource
	// identifiers (lowercase). Matching sources are accepted but never
	// mutated: gradients are geometry-relative, not texture-relative.
	GradientResources []string

	// FilterStrategies maps filter resource identifier (lowercase) to the
	// per-parameter scale strategy table. Validation requires every listed
	// parameter to be present on the source.
	FilterStrategies map[string]map[string]ScaleStrategy

	// GeneratorTemplates classifies mask/AO generator sources by required
	// parameter-name keywords, in match-priority order.
	GeneratorTemplates []KeywordTemplate
}

// BrickCountParam is the integer-pair parameter a brick generator expresses
// its tile count in.
const BrickCountParam = "Bricks"

// DefaultRules returns the built-in strategy tables. The resource lists and
// parameter tables were probed by hand against the host application's stock
// shelf.
func DefaultRules() *Rules {
	return &Rules{
		ProceduralParams: []string{"scale", "tile", "tiling", "pattern_scale"},
		Procedural3D: []KeywordTemplate{
			{Name: "3D Perlin Noise", Keywords: []string{"3d", "perlin", "noise"}},
			{Name: "3D Worley Noise", Keywords: []string{"3d", "worley", "noise"}},
			{Name: "3D Voronoi", Keywords: []string{"3d", "voronoi"}},
			{Name: "3D Ridged Noise", Keywords: []string{"3d", "ridged", "noise"}},
			{Name: "3D Simplex Noise", Keywords: []string{"3d", "simplex", "noise"}},
		},
		BrickResources: []string{
			"brick_generator/ratio_brick_generator",
		},
		GradientResources: []string{
			"noise_dirt_gradient/ratio_dirt_gradient",
			"gradient_circular/gradient_circular",
			"gradient_dot/gradient_dot",
			"gradient_linear_3/gradient_linear_3",
			"gradient_linear_2/gradient_linear_2",
			"gradient_linear_1/gradient_linear_1",
		},
		FilterStrategies: map[string]map[string]ScaleStrategy{
			"blur/blur": {
				"intensity": ScaleInverse,
			},
			"warp/warp": {
				"intensity":   ScaleInverse,
				"noise_scale": ScaleDirect,
			},
			"blur_slope/blur_slope": {
				"intensity":   ScaleInverse,
				"noise_scale": ScaleDirect,
			},
		},
		GeneratorTemplates: []KeywordTemplate{
			{Name: "Mask Editor", Keywords: []string{"scale", "ao", "curvature", "position"}},
			// Also matches the newer Dirt and Metal Edge Wear generators.
			{Name: "Mask Builder", Keywords: []string{"scale", "ao", "curvature", "grunge"}},
			// Compatibility with the legacy Metal Edge Wear generator.
			{Name: "Metal Edge Wear", Keywords: []string{"scale", "curvature", "wear"}},
		},
	}
}

// rulesDoc is the TOML overlay format. Sections left out of the file keep
// their built-in defaults.
type rulesDoc struct {
	ProceduralParams   []string                           `toml:"procedural_params"`
	Procedural3D       []KeywordTemplate                  `toml:"procedural_3d"`
	BrickResources     []string                           `toml:"brick_resources"`
	GradientResources  []string                           `toml:"gradient_resources"`
	FilterStrategies   map[string]map[string]ScaleStrategy `toml:"filter_strategies"`
	GeneratorTemplates []KeywordTemplate                  `toml:"generator_templates"`
}

// LoadRules reads a TOML rules file and overlays it onto the defaults, so a
// studio can extend the allow-lists and strategy tables without recompiling.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "read %s", path)
	}
	var doc rulesDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRules, err, "parse %s", path)
	}

	rules := DefaultRules()
	if len(doc.ProceduralParams) > 0 {
		rules.ProceduralParams = doc.ProceduralParams
	}
	if len(doc.Procedural3D) > 0 {
		rules.Procedural3D = doc.Procedural3D
	}
	if len(doc.BrickResources) > 0 {
		rules.BrickResources = lowerAll(doc.BrickResources)
	}
	if len(doc.GradientResources) > 0 {
		rules.GradientResources = lowerAll(doc.GradientResources)
	}
	if len(doc.FilterStrategies) > 0 {
		table := make(map[string]map[string]ScaleStrategy, len(doc.FilterStrategies))
		for res, params := range doc.FilterStrategies {
			for name, strategy := range params {
				if strategy != ScaleInverse && strategy != ScaleDirect {
					return nil, errors.New(errors.ErrCodeInvalidRules,
						"filter %q parameter %q: unknown strategy %q", res, name, strategy)
				}
			}
			table[strings.ToLower(res)] = params
		}
		rules.FilterStrategies = table
	}
	if len(doc.GeneratorTemplates) > 0 {
		rules.GeneratorTemplates = doc.GeneratorTemplates
	}
	return rules, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsResource(list []string, name string) bool {
	name = strings.ToLower(name)
	for _, res := range list {
		if res == name {
			return true
		}
	}
	return false
}
