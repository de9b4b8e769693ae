package gallery

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/paprika/internal/shared"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func countSelected(g *Gallery) int {
	n := 0
	for _, c := range g.Cards() {
		if c.Selected {
			n++
		}
	}
	return n
}

func TestPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"frame", FramePath("output", "abc", 1), "/output/abc/frame_001.png"},
		{"frame three digits", FramePath("output", "abc", 12), "/output/abc/frame_012.png"},
		{"frame slashes trimmed", FramePath("/output/", "abc", 3), "/output/abc/frame_003.png"},
		{"artifact", ArtifactPath("output", "abc", "storyboard.pdf"), "/output/abc/storyboard.pdf"},
		{"cache bust", WithCacheBust("/output/abc/frame_001.png", time.UnixMilli(42)), "/output/abc/frame_001.png?t=42"},
		{"cache bust replaces", WithCacheBust("/output/abc/frame_001.png?t=42", time.UnixMilli(43)), "/output/abc/frame_001.png?t=43"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestGallery(t *testing.T) {
	t.Run("Populate", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(4, "abc")

		cards := g.Cards()
		if len(cards) != 4 {
			t.Fatalf("expected 4 cards, got %d", len(cards))
		}
		for i, c := range cards {
			if c.FrameNumber != i+1 || c.Selected {
				t.Errorf("card %d malformed: %+v", i, c)
			}
		}
		if cards[3].ImagePath != "/output/abc/frame_004.png" {
			t.Errorf("unexpected image path %q", cards[3].ImagePath)
		}
		if g.ArtifactLink() != "/output/abc/storyboard.pdf" {
			t.Errorf("unexpected artifact link %q", g.ArtifactLink())
		}
		if g.SessionID() != "abc" {
			t.Errorf("SessionID() = %q", g.SessionID())
		}
	})

	t.Run("Populate Replaces Cards And Selection", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(4, "abc")
		_, _ = g.Select(2)
		g.Populate(2, "def")

		if g.Len() != 2 || g.Selected() != 0 || countSelected(g) != 0 {
			t.Errorf("expected fresh gallery, got %+v selected=%d", g.Cards(), g.Selected())
		}
	})

	t.Run("Populate Zero Frames", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(0, "abc")
		if g.Len() != 0 {
			t.Errorf("expected no cards, got %d", g.Len())
		}
	})

	t.Run("Select Toggles With Single Selection", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(3, "abc")

		if n, err := g.Select(2); err != nil || n != 2 {
			t.Fatalf("Select(2) = %d, %v", n, err)
		}
		if n, _ := g.Select(3); n != 3 || g.Selected() != 3 || countSelected(g) != 1 {
			t.Errorf("selecting another card should move the selection, selected=%d count=%d", g.Selected(), countSelected(g))
		}
		if n, _ := g.Select(3); n != 0 || g.Selected() != 0 || countSelected(g) != 0 {
			t.Errorf("selecting the same card should clear it, selected=%d", g.Selected())
		}
	})

	t.Run("Select Unknown Frame", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(2, "abc")
		_, _ = g.Select(1)

		for _, n := range []int{0, 3, -1} {
			if _, err := g.Select(n); !errors.Is(err, shared.ErrFrameNotFound) {
				t.Errorf("Select(%d): expected ErrFrameNotFound, got %v", n, err)
			}
		}
		if g.Selected() != 1 {
			t.Errorf("failed select should keep selection, got %d", g.Selected())
		}
	})

	t.Run("Focus Does Not Toggle", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(3, "abc")
		_ = g.Focus(2)
		_ = g.Focus(2)
		if g.Selected() != 2 || countSelected(g) != 1 {
			t.Errorf("Focus should keep frame 2 selected, got %d", g.Selected())
		}
		if err := g.Focus(9); !errors.Is(err, shared.ErrFrameNotFound) {
			t.Errorf("expected ErrFrameNotFound, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.SetClock(fixedClock(1700000000000))
		g.Populate(2, "abc")

		p, err := g.RefreshImage(2)
		if err != nil {
			t.Fatalf("RefreshImage failed: %v", err)
		}
		if p != "/output/abc/frame_002.png?t=1700000000000" {
			t.Errorf("unexpected refreshed path %q", p)
		}

		g.SetClock(fixedClock(1700000000001))
		p, _ = g.RefreshImage(2)
		if p != "/output/abc/frame_002.png?t=1700000000001" {
			t.Errorf("second refresh should replace token, got %q", p)
		}
		if card, _ := g.Card(1); card.ImagePath != "/output/abc/frame_001.png" {
			t.Errorf("other cards should be untouched, got %q", card.ImagePath)
		}

		if link := g.RefreshArtifactLink(); link != "/output/abc/storyboard.pdf?t=1700000000001" {
			t.Errorf("unexpected artifact link %q", link)
		}
		if _, err := g.RefreshImage(5); !errors.Is(err, shared.ErrFrameNotFound) {
			t.Errorf("expected ErrFrameNotFound, got %v", err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(3, "abc")
		_, _ = g.Select(1)
		g.Reset()

		if g.Len() != 0 || g.Selected() != 0 || g.ArtifactLink() != "" || g.SessionID() != "" {
			t.Error("Reset should clear the gallery")
		}
		if g.RefreshArtifactLink() != "" {
			t.Error("empty gallery has no artifact link")
		}
	})

	t.Run("Concurrent Selection Keeps One Card", func(t *testing.T) {
		g := New("output", "storyboard.pdf")
		g.Populate(8, "abc")

		var wg sync.WaitGroup
		for n := 1; n <= 8; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_ = g.Focus(n)
			}(n)
		}
		wg.Wait()

		if countSelected(g) != 1 {
			t.Errorf("expected exactly one selected card, got %d", countSelected(g))
		}
	})
}
