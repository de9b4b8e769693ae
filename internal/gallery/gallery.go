// package gallery holds the frame cards of a completed storyboard and the user's frame selection.
package gallery

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// CacheBustParam is the query parameter appended to refreshed artifact paths.
const CacheBustParam = "t"

// FramePath returns the server path of frame n of a session.
func FramePath(outputRoot, sessionID string, n int) string {
	return "/" + path.Join(strings.Trim(outputRoot, "/"), sessionID, fmt.Sprintf("frame_%03d.png", n))
}

// ArtifactPath returns the server path of a session's storyboard document.
func ArtifactPath(outputRoot, sessionID, artifactName string) string {
	return "/" + path.Join(strings.Trim(outputRoot, "/"), sessionID, artifactName)
}

// WithCacheBust appends a cache-busting token to p, replacing any previous token.
func WithCacheBust(p string, now time.Time) string {
	if i := strings.Index(p, "?"+CacheBustParam+"="); i >= 0 {
		p = p[:i]
	}
	return fmt.Sprintf("%s?%s=%d", p, CacheBustParam, now.UnixMilli())
}

// Gallery is the set of frame cards of the current storyboard with at most one selected card.
//
// All methods are safe for concurrent use.
type Gallery struct {
	outputRoot   string
	artifactName string
	now          func() time.Time

	mu        sync.Mutex
	sessionID string
	cards     []models.FrameCard
	selected  int
	artifact  string
}

// New creates an empty gallery for artifacts stored under outputRoot.
func New(outputRoot, artifactName string) *Gallery {
	return &Gallery{outputRoot: outputRoot, artifactName: artifactName, now: time.Now}
}

// SetClock replaces the time source used for cache-busting tokens.
func (g *Gallery) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

// Populate replaces all cards with totalFrames cards for sessionID and clears the selection.
func (g *Gallery) Populate(totalFrames int, sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessionID = sessionID
	g.selected = 0
	g.cards = make([]models.FrameCard, 0, max(totalFrames, 0))
	for n := 1; n <= totalFrames; n++ {
		g.cards = append(g.cards, models.FrameCard{FrameNumber: n, ImagePath: FramePath(g.outputRoot, sessionID, n)})
	}
	g.artifact = ArtifactPath(g.outputRoot, sessionID, g.artifactName)
}

// Reset destroys all cards and clears the selection.
func (g *Gallery) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionID = ""
	g.cards = nil
	g.selected = 0
	g.artifact = ""
}

// Select toggles the selection of frame n. Selecting a card deselects every other card.
// It returns the selected frame number afterwards, 0 for none.
func (g *Gallery) Select(n int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, err := g.find(n)
	if err != nil {
		return g.selected, err
	}
	if g.selected == n {
		g.cards[i].Selected = false
		g.selected = 0
		return 0, nil
	}
	g.selectIndex(i)
	return n, nil
}

// Focus selects frame n without toggling.
func (g *Gallery) Focus(n int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, err := g.find(n)
	if err != nil {
		return err
	}
	g.selectIndex(i)
	return nil
}

// ClearSelection deselects every card.
func (g *Gallery) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cards {
		g.cards[i].Selected = false
	}
	g.selected = 0
}

// Selected returns the selected frame number, or 0 when nothing is selected.
func (g *Gallery) Selected() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// RefreshImage appends a fresh cache-busting token to frame n's image path and returns it.
func (g *Gallery) RefreshImage(n int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i, err := g.find(n)
	if err != nil {
		return "", err
	}
	g.cards[i].ImagePath = WithCacheBust(g.cards[i].ImagePath, g.now())
	return g.cards[i].ImagePath, nil
}

// RefreshArtifactLink appends a fresh cache-busting token to the storyboard document link.
func (g *Gallery) RefreshArtifactLink() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.artifact == "" {
		return ""
	}
	g.artifact = WithCacheBust(g.artifact, g.now())
	return g.artifact
}

// Cards returns a copy of the current cards in frame order.
func (g *Gallery) Cards() []models.FrameCard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.cards)
}

// Card returns a copy of frame n's card.
func (g *Gallery) Card(n int) (models.FrameCard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, err := g.find(n)
	if err != nil {
		return models.FrameCard{}, err
	}
	return g.cards[i], nil
}

// ArtifactLink returns the current storyboard document link, or "" when the gallery is empty.
func (g *Gallery) ArtifactLink() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.artifact
}

// SessionID returns the session the cards belong to.
func (g *Gallery) SessionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sessionID
}

// Len returns the number of cards.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cards)
}

func (g *Gallery) find(n int) (int, error) {
	i := n - 1
	if i < 0 || i >= len(g.cards) {
		return -1, fmt.Errorf("%w: frame %d", shared.ErrFrameNotFound, n)
	}
	return i, nil
}

func (g *Gallery) selectIndex(i int) {
	for j := range g.cards {
		g.cards[j].Selected = j == i
	}
	g.selected = g.cards[i].FrameNumber
}
