package cli

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logWalkHooks traces traversal events to the debug log. Registered only
// under --verbose; the default hooks are no-ops.
type logWalkHooks struct {
	logger *log.Logger
}

func (h *logWalkHooks) OnNodeVisited(path []string, nodeType string) {
	h.logger.Debug("visit", "path", strings.Join(path, " / "), "type", nodeType)
}

func (h *logWalkHooks) OnDispatch(path []string, handler string, ok bool, title string) {
	h.logger.Debug("dispatch",
		"path", strings.Join(path, " / "),
		"handler", handler,
		"ok", ok,
		"outcome", title,
	)
}

func (h *logWalkHooks) OnWalkComplete(entries int, duration time.Duration) {
	h.logger.Debug("walk complete", "entries", entries, "elapsed", duration.Round(time.Millisecond))
}

// logSeedHooks traces seed collection and application to the debug log.
type logSeedHooks struct {
	logger *log.Logger
}

func (h *logSeedHooks) OnSourceCollected(nested bool) {
	h.logger.Debug("seed source collected", "nested", nested)
}

func (h *logSeedHooks) OnSeedApplied(seed uint16, success, failed int) {
	h.logger.Debug("seed applied", "seed", seed, "success", success, "failed", failed)
}
