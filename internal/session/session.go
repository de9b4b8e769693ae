// package session determines which server-side session a completed job belongs to.
package session

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// Strategy names how a session id was obtained.
type Strategy string

const (
	Explicit Strategy = "explicit"
	Path     Strategy = "path"
)

// Resolution is the session a completed job belongs to.
type Resolution struct {
	SessionID string
	Strategy  Strategy
}

// Resolver extracts session ids from completion events.
//
// The explicit session_id is always preferred. When it is missing the id is recovered from the
// artifact path; every such fallback is logged and counted so its frequency can be tracked.
//
// Ids that are not canonical UUIDs are accepted but logged and counted as irregular.
type Resolver struct {
	pattern   *regexp.Regexp
	logger    *log.Logger
	fallbacks atomic.Int64
	irregular atomic.Int64
}

// NewResolver creates a resolver for artifacts named artifactName (e.g. storyboard.pdf).
func NewResolver(artifactName string, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	expr := fmt.Sprintf(`(?i)([a-f0-9-]+)[/\\]%s$`, regexp.QuoteMeta(artifactName))
	return &Resolver{pattern: regexp.MustCompile(expr), logger: logger}
}

// Resolve returns the session of a completed job or [shared.ErrSessionUnresolved].
func (r *Resolver) Resolve(ev models.Complete) (Resolution, error) {
	if id := strings.TrimSpace(ev.SessionID); id != "" {
		return r.checkShape(Resolution{SessionID: id, Strategy: Explicit}), nil
	}

	if m := r.pattern.FindStringSubmatch(strings.TrimSpace(ev.StoryboardPath)); m != nil {
		n := r.fallbacks.Add(1)
		r.logger.Warn("session id missing from completion event, recovered from artifact path",
			"strategy", Path, "session", m[1], "path", ev.StoryboardPath, "fallbacks", n)
		return r.checkShape(Resolution{SessionID: m[1], Strategy: Path}), nil
	}

	r.logger.Error("unable to determine session id", "path", ev.StoryboardPath)
	return Resolution{}, fmt.Errorf("%w: storyboard path %q", shared.ErrSessionUnresolved, ev.StoryboardPath)
}

func (r *Resolver) checkShape(res Resolution) Resolution {
	if !shared.IsUUID(res.SessionID) {
		n := r.irregular.Add(1)
		r.logger.Warn("session id is not a UUID", "strategy", res.Strategy, "session", res.SessionID, "irregular", n)
	}
	return res
}

// IrregularCount returns how many resolved session ids were not canonical UUIDs.
func (r *Resolver) IrregularCount() int64 {
	return r.irregular.Load()
}

// FallbackCount returns how many times the path fallback was used.
func (r *Resolver) FallbackCount() int64 {
	return r.fallbacks.Load()
}
