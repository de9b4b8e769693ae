package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/paprika/internal/models"
)

var (
	_ list.Item = frameItem{}
)

// frameItem wraps [models.FrameCard] to implement [list.Item].
type frameItem struct {
	card models.FrameCard
	url  string
}

func (i frameItem) FilterValue() string { return fmt.Sprintf("frame %d", i.card.FrameNumber) }
func (i frameItem) Title() string {
	title := fmt.Sprintf("Frame %d", i.card.FrameNumber)
	if i.card.Selected {
		title = fmt.Sprintf("%s • selected", title)
	}
	return title
}
func (i frameItem) Description() string { return i.url }

func frameItems(cards []models.FrameCard, url func(string) string) []list.Item {
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = frameItem{card: c, url: url(c.ImagePath)}
	}
	return items
}
