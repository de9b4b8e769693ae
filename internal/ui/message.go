package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgGenerationComplete
	MsgEditComplete
	MsgToastExpired
	MsgBrowserOpened
)

type generationResult struct {
	result *tasks.GenerationResult
	err    error
}

type editResult struct {
	notice models.Notice
	err    error
}

type browserResult struct {
	url string
	err error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// generationCompleteMsg is the constructor for [MsgGenerationComplete]
func generationCompleteMsg(result *tasks.GenerationResult, err error) Msg {
	return Msg{kind: MsgGenerationComplete, data: generationResult{result, err}}
}

// editCompleteMsg is the constructor for [MsgEditComplete]
func editCompleteMsg(notice models.Notice, err error) Msg {
	return Msg{kind: MsgEditComplete, data: editResult{notice, err}}
}

// toastExpiredMsg is the constructor for [MsgToastExpired]. id identifies the toast it clears.
func toastExpiredMsg(id int) Msg {
	return Msg{kind: MsgToastExpired, data: id}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: browserResult{url, err}}
}
