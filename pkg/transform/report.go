package transform

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hctsai/layerforge/pkg/errors"
)

// Path is the hierarchical address of one node within a texture set's stack,
// from the texture set name down to the node. Segments for effect slots look
// like "mask (effect 2)"; duplicate sibling names are disambiguated with a
// " #N" suffix before descending.
type Path []string

// Child returns a new path extended by one segment. The receiver's backing
// array is never shared with the result.
func (p Path) Child(segment string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = segment
	return out
}

// Key renders the path as the report's unique entry key.
func (p Path) Key() string {
	return strings.Join(p, " / ")
}

// Entry is one per-node record in a report.
type Entry struct {
	Path     Path           `json:"path"`
	NodeType string         `json:"node_type"`
	Result   DispatchResult `json:"result"`
}

// Key returns the entry's unique report key.
func (e Entry) Key() string { return e.Path.Key() }

// Stats aggregates a report's entries by outcome kind.
type Stats struct {
	Success      int `json:"success"`
	NoChange     int `json:"no_change"`
	SkipOrReject int `json:"skip_or_reject"`
	Failed       int `json:"failed"`
}

// Total returns the number of counted entries.
func (s Stats) Total() int {
	return s.Success + s.NoChange + s.SkipOrReject + s.Failed
}

// Report collects the per-node outcomes of one transform run. Entries keep
// insertion order, which is the pre-order traversal order of the tree, and
// are unique by path key.
type Report struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Scale     float64   `json:"scale"`
	Rotation  int       `json:"rotation"`

	entries []Entry
	index   map[string]int
}

// NewReport creates an empty report for a run with the given arguments.
func NewReport(args Args) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Scale:     args.Scale,
		Rotation:  args.Rotation,
		index:     map[string]int{},
	}
}

// Add appends one entry. Every visited node maps to exactly one entry, so a
// duplicate key means the traversal itself is broken; Add panics rather than
// silently overwriting the earlier record.
func (r *Report) Add(path Path, nodeType string, result DispatchResult) {
	key := path.Key()
	if _, dup := r.index[key]; dup {
		panic(fmt.Sprintf("duplicate report entry for path %q", key))
	}
	if r.index == nil {
		r.index = map[string]int{}
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Path: path, NodeType: nodeType, Result: result})
}

// Entries returns the entries in traversal order.
func (r *Report) Entries() []Entry { return r.entries }

// Len returns the number of entries.
func (r *Report) Len() int { return len(r.entries) }

// Get looks an entry up by its path key.
func (r *Report) Get(key string) (Entry, bool) {
	i, ok := r.index[key]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Stats counts the entries by outcome kind.
func (r *Report) Stats() Stats {
	var s Stats
	for _, e := range r.entries {
		switch e.Result.Kind {
		case ResultSuccess:
			s.Success++
		case ResultNoChange:
			s.NoChange++
		case ResultFailed:
			s.Failed++
		default:
			s.SkipOrReject++
		}
	}
	return s
}

// Markdown renders the report as a log document: a statistics block, the
// successful items, and the failed items. Skipped and rejected entries are
// counted but not listed; the tree render covers them.
func (r *Report) Markdown() string {
	var b strings.Builder
	stats := r.Stats()

	fmt.Fprintf(&b, "# Transform run %s\n\n", r.RunID)
	fmt.Fprintf(&b, "- Date: %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Scale: %g\n", r.Scale)
	fmt.Fprintf(&b, "- Rotation: %d\n\n", r.Rotation)

	b.WriteString("## Statistics\n\n")
	fmt.Fprintf(&b, "| Outcome | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Success | %d |\n", stats.Success)
	fmt.Fprintf(&b, "| No change | %d |\n", stats.NoChange)
	fmt.Fprintf(&b, "| Skipped or rejected | %d |\n", stats.SkipOrReject)
	fmt.Fprintf(&b, "| Failed | %d |\n", stats.Failed)
	fmt.Fprintf(&b, "| Total | %d |\n\n", stats.Total())

	b.WriteString("## Successful items\n\n")
	wrote := false
	for _, e := range r.entries {
		if e.Result.Kind != ResultSuccess {
			continue
		}
		fmt.Fprintf(&b, "- `%s`: %s\n", e.Key(), e.Result.Detail)
		wrote = true
	}
	if !wrote {
		b.WriteString("(none)\n")
	}

	b.WriteString("\n## Failed items\n\n")
	wrote = false
	for _, e := range r.entries {
		if e.Result.Kind != ResultFailed {
			continue
		}
		fmt.Fprintf(&b, "- `%s`: %s\n", e.Key(), e.Result.Detail)
		wrote = true
	}
	if !wrote {
		b.WriteString("(none)\n")
	}
	return b.String()
}

// reportDoc is the JSON persistence shape; the in-memory index is rebuilt on
// load.
type reportDoc struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Scale     float64   `json:"scale"`
	Rotation  int       `json:"rotation"`
	Entries   []Entry   `json:"entries"`
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(reportDoc{
		RunID:     r.RunID,
		CreatedAt: r.CreatedAt,
		Scale:     r.Scale,
		Rotation:  r.Rotation,
		Entries:   r.entries,
	})
}

// UnmarshalJSON implements json.Unmarshaler and rebuilds the key index.
func (r *Report) UnmarshalJSON(data []byte) error {
	var doc reportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.RunID = doc.RunID
	r.CreatedAt = doc.CreatedAt
	r.Scale = doc.Scale
	r.Rotation = doc.Rotation
	r.entries = doc.Entries
	r.index = make(map[string]int, len(doc.Entries))
	for i, e := range doc.Entries {
		key := e.Key()
		if _, dup := r.index[key]; dup {
			return errors.New(errors.ErrCodeInvalidReport, "report has duplicate entry path %q", key)
		}
		r.index[key] = i
	}
	return nil
}

// SaveReport writes the report as indented JSON.
func SaveReport(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidReport, err, "encode report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidReport, err, "write report %s", path)
	}
	return nil
}

// LoadReport reads a report saved by SaveReport.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "read report %s", path)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "decode report %s", path)
	}
	return &r, nil
}

// FailedKeys returns the path keys of the failed entries, sorted, for
// stable log output.
func (r *Report) FailedKeys() []string {
	var keys []string
	for _, e := range r.entries {
		if e.Result.Kind == ResultFailed {
			keys = append(keys, e.Key())
		}
	}
	sort.Strings(keys)
	return keys
}
