package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/paprika/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	info  lipgloss.Style
	toast lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		info:  NewStyle(t),
		toast: lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Notice renders a toast in the color of its level.
func (p *Palette) Notice(n models.Notice) string {
	switch n.Level {
	case models.NoticeSuccess:
		return p.toast.BorderForeground(p.ok.GetForeground()).Render(p.ok.Render("✓ " + n.Message))
	case models.NoticeError:
		return p.toast.BorderForeground(p.err.GetForeground()).Render(p.err.Render("✗ " + n.Message))
	default:
		return p.toast.BorderForeground(p.info.GetForeground()).Render(p.info.Render(n.Message))
	}
}

// Step renders the status marker of a progress step.
func (p *Palette) Step(status models.StepStatus) string {
	switch status {
	case models.StepCompleted:
		return p.ok.Render("●")
	case models.StepInProgress:
		return p.warn.Render("◑")
	case models.StepActive:
		return p.info.Render("◔")
	default:
		return p.help.Render("○")
	}
}
