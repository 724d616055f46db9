package observe

import (
	"testing"
	"time"
)

type recordingWalkHooks struct {
	visited  int
	complete int
}

func (r *recordingWalkHooks) OnNodeVisited([]string, string)            { r.visited++ }
func (r *recordingWalkHooks) OnDispatch([]string, string, bool, string) {}
func (r *recordingWalkHooks) OnWalkComplete(int, time.Duration)         { r.complete++ }

func TestSetWalkHooks(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingWalkHooks{}
	SetWalkHooks(rec)

	Walk().OnNodeVisited([]string{"Body", "base"}, "FillLayer")
	Walk().OnWalkComplete(1, time.Millisecond)

	if rec.visited != 1 || rec.complete != 1 {
		t.Errorf("recorded = %d/%d, want 1/1", rec.visited, rec.complete)
	}
}

func TestSetWalkHooks_NilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)

	rec := &recordingWalkHooks{}
	SetWalkHooks(rec)
	SetWalkHooks(nil)

	Walk().OnNodeVisited(nil, "")
	if rec.visited != 1 {
		t.Error("nil registration replaced the active hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingWalkHooks{}
	SetWalkHooks(rec)
	Reset()

	Walk().OnNodeVisited(nil, "")
	if rec.visited != 0 {
		t.Error("Reset() kept the custom hooks")
	}
}

func TestDefaultHooksAreNoops(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	// Must not panic.
	Walk().OnDispatch([]string{"a"}, "h", true, "updated")
	Seed().OnSourceCollected(true)
	Seed().OnSeedApplied(42, 1, 0)
}
