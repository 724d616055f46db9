package transform

import (
	"fmt"
	"time"

	"github.com/hctsai/layerforge/pkg/errors"
	"github.com/hctsai/layerforge/pkg/layerstack"
	"github.com/hctsai/layerforge/pkg/observe"
)

// Run applies the transform to every selected texture set of the project and
// returns the per-node report.
//
// selected maps texture-set names to inclusion; a nil map selects every set.
// Argument and selection problems surface as errors before any node is
// touched. The whole run executes inside one scoped modification, so the
// host records a single undo step for it.
func Run(project layerstack.Project, args Args, rules *Rules, selected map[string]bool) (*Report, error) {
	if project == nil {
		return nil, errors.New(errors.ErrCodeNoProject, "no project is open")
	}
	if err := errors.ValidateScale(args.Scale); err != nil {
		return nil, err
	}
	if err := errors.ValidateRotation(args.Rotation); err != nil {
		return nil, err
	}

	sets := project.TextureSets()
	if len(sets) == 0 {
		return nil, errors.New(errors.ErrCodeNoTextureSets, "the project has no texture sets")
	}
	if selected != nil {
		available := make([]string, len(sets))
		for i, ts := range sets {
			available[i] = ts.Name()
		}
		if err := errors.ValidateSelection(selected, available); err != nil {
			return nil, err
		}
	}

	report := NewReport(args)
	walker := NewWalker(NewDispatcher(rules), args)
	start := time.Now()

	err := project.ScopedModification("Adjust layer tiling", func() error {
		for _, ts := range sets {
			if selected != nil && !selected[ts.Name()] {
				continue
			}
			stacks := ts.Stacks()
			for i, stack := range stacks {
				base := Path{ts.Name()}
				if len(stacks) > 1 {
					base = base.Child(fmt.Sprintf("Stack %d", i+1))
				}
				walker.WalkStack(stack, base, report)
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "scoped modification failed")
	}

	observe.Walk().OnWalkComplete(report.Len(), time.Since(start))
	return report, nil
}
