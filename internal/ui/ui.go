package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/edit"
	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/progress"
	"github.com/desertthunder/paprika/internal/shared"
	"github.com/desertthunder/paprika/internal/tasks"
)

// ToastDuration is how long a notice stays on screen.
const ToastDuration = 5 * time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	InputView ViewState = iota
	GeneratingView
	GalleryView
	EditView
)

// Generator runs generation jobs. Satisfied by [tasks.GenerationEngine].
type Generator interface {
	Run(ctx context.Context, description string, progress chan<- tasks.ProgressUpdate) (*tasks.GenerationResult, error)
	Initial() progress.State
	NewJob() error
}

// Options holds the dependencies of a [Model].
type Options struct {
	Generator Generator
	Gallery   *gallery.Gallery
	Editor    *edit.Session
	URL       func(path string) string // Resolves server paths to absolute URLs
	Open      func(url string) error   // Opens a URL in the browser
	Logger    *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	gen     Generator
	gallery *gallery.Gallery
	editor  *edit.Session
	url     func(string) string
	open    func(string) error
	logger  *log.Logger

	width  int
	height int

	input        textarea.Model
	instructions textarea.Model
	frames       list.Model
	spinner      spinner.Model
	bar          bprogress.Model

	progressChan chan tasks.ProgressUpdate
	doneChan     chan Msg
	state        progress.State
	result       *tasks.GenerationResult
	err          error
	applying     bool

	toast   models.Notice
	toastID int

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.URL == nil {
		opts.URL = func(p string) string { return p }
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}

	input := textarea.New()
	input.Placeholder = "Describe your storyboard, e.g. a cat chases a mouse through a kitchen"
	input.ShowLineNumbers = false
	input.CharLimit = 2000
	input.SetHeight(5)
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"))
	input.Focus()

	instructions := textarea.New()
	instructions.Placeholder = "What should change in this frame?"
	instructions.ShowLineNumbers = false
	instructions.CharLimit = 1000
	instructions.SetHeight(4)
	instructions.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("enter", "ctrl+j"))

	frames := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	frames.Title = "Frames"
	frames.SetShowHelp(false)
	frames.SetFilteringEnabled(false)

	return &Model{
		ctx:          ctx,
		view:         InputView,
		gen:          opts.Generator,
		gallery:      opts.Gallery,
		editor:       opts.Editor,
		url:          opts.URL,
		open:         opts.Open,
		logger:       opts.Logger,
		input:        input,
		instructions: instructions,
		frames:       frames,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:          bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(32)),
		state:        opts.Generator.Initial(),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the cursor blink of the description input.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Current returns the active view.
func (m *Model) Current() ViewState { return m.view }

// Toast returns the notice currently on screen.
func (m *Model) Toast() models.Notice { return m.toast }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := min(max(msg.Width-4, 20), 96)
		m.input.SetWidth(w)
		m.instructions.SetWidth(w)
		m.frames.SetSize(msg.Width-4, max(msg.Height-10, 5))
		return m, nil

	case spinner.TickMsg:
		if m.view != GeneratingView && !m.applying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		switch m.view {
		case InputView:
			return m.handleInputKeys(msg)
		case GeneratingView:
			return m.handleGeneratingKeys(msg)
		case GalleryView:
			return m.handleGalleryKeys(msg)
		case EditView:
			return m.handleEditKeys(msg)
		}
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		if s, ok := update.State(); ok {
			m.state = s
		}
		return m, m.waitForProgress()

	case MsgGenerationComplete:
		data := msg.data.(generationResult)
		m.result = data.result
		m.err = data.err
		m.progressChan = nil
		m.doneChan = nil
		if data.result != nil {
			m.state = data.result.State
		}

		toast := m.setToast(tasks.Notice(data.err))
		if data.err != nil {
			m.logger.Error("storyboard generation failed", "err", data.err)
			if data.result == nil {
				m.view = InputView
				return m, tea.Batch(toast, m.input.Focus())
			}
			return m, toast
		}

		m.view = GalleryView
		m.refreshFrames()
		m.frames.Select(0)
		return m, toast

	case MsgEditComplete:
		data := msg.data.(editResult)
		m.applying = false
		toast := m.setToast(data.notice)
		if data.err != nil {
			m.logger.Warn("frame edit failed", "err", data.err)
			return m, tea.Batch(toast, m.instructions.Focus())
		}
		m.instructions.Blur()
		m.instructions.Reset()
		m.view = GalleryView
		m.refreshFrames()
		return m, toast

	case MsgToastExpired:
		if id := msg.data.(int); id == m.toastID {
			m.toast = models.Notice{}
		}
		return m, nil

	case MsgBrowserOpened:
		data := msg.data.(browserResult)
		if data.err != nil {
			m.logger.Warn("failed to open browser", "url", data.url, "err", data.err)
			return m, m.setToast(models.Notice{Level: models.NoticeError, Message: "Failed to open " + data.url})
		}
		return m, m.setToast(models.Notice{Level: models.NoticeInfo, Message: "Opened " + data.url})
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.exit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.generate):
		description := strings.TrimSpace(m.input.Value())
		if description == "" {
			return m, m.setToast(tasks.Notice(shared.ErrInvalidInput))
		}
		m.view = GeneratingView
		m.state = m.gen.Initial()
		m.result = nil
		m.err = nil
		m.input.Blur()
		return m, m.startGeneration(description)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleGeneratingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.doneChan != nil:
		return m, nil
	case key.Matches(msg, m.keys.fresh):
		return m, m.newJob()
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.generate):
		m.view = InputView
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) handleGalleryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.sel):
		if item, ok := m.frames.SelectedItem().(frameItem); ok {
			if _, err := m.gallery.Select(item.card.FrameNumber); err != nil {
				return m, m.setToast(models.Notice{Level: models.NoticeError, Message: edit.MsgNoSelection})
			}
			m.refreshFrames()
		}
		return m, nil

	case key.Matches(msg, m.keys.edit):
		notice, err := m.editor.Open()
		if err != nil {
			return m, m.setToast(notice)
		}
		return m, m.showEditForm()

	case key.Matches(msg, m.keys.editHere):
		item, ok := m.frames.SelectedItem().(frameItem)
		if !ok {
			return m, m.setToast(models.Notice{Level: models.NoticeError, Message: edit.MsgNoSelection})
		}
		notice, err := m.editor.OpenFrame(item.card.FrameNumber)
		m.refreshFrames()
		if err != nil {
			return m, m.setToast(notice)
		}
		return m, m.showEditForm()

	case key.Matches(msg, m.keys.open):
		link := m.gallery.ArtifactLink()
		if link == "" {
			return m, nil
		}
		url := m.url(link)
		return m, func() tea.Msg {
			return browserOpenedMsg(url, m.open(url))
		}

	case key.Matches(msg, m.keys.fresh):
		return m, m.newJob()
	}

	var cmd tea.Cmd
	m.frames, cmd = m.frames.Update(msg)
	return m, cmd
}

func (m *Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.exit) {
		return m, tea.Quit
	}
	if m.applying {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		if err := m.editor.Close(); err != nil {
			return m, m.setToast(models.Notice{Level: models.NoticeInfo, Message: edit.MsgEditInFlight})
		}
		m.instructions.Blur()
		m.view = GalleryView
		return m, nil

	case key.Matches(msg, m.keys.submit):
		m.editor.SetInstructions(m.instructions.Value())
		if strings.TrimSpace(m.instructions.Value()) == "" {
			return m, m.setToast(models.Notice{Level: models.NoticeError, Message: edit.MsgEmptyInstructions})
		}
		m.applying = true
		return m, tea.Batch(m.submitEdit(), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.instructions, cmd = m.instructions.Update(msg)
	return m, cmd
}

func (m *Model) showEditForm() tea.Cmd {
	m.view = EditView
	m.instructions.SetValue(m.editor.Instructions())
	return m.instructions.Focus()
}

// newJob discards the previous storyboard and returns to the input view.
func (m *Model) newJob() tea.Cmd {
	if err := m.gen.NewJob(); err != nil {
		return m.setToast(tasks.Notice(err))
	}
	if err := m.editor.Close(); err != nil {
		m.logger.Warn("edit still in flight on new job", "err", err)
	}
	m.refreshFrames()
	m.state = m.gen.Initial()
	m.err = nil
	m.view = InputView
	m.input.Reset()
	return m.input.Focus()
}

func (m *Model) refreshFrames() {
	index := m.frames.Index()
	m.frames.SetItems(frameItems(m.gallery.Cards(), m.url))
	if index < len(m.frames.Items()) {
		m.frames.Select(index)
	}
}

// setToast shows n and schedules its removal. A newer toast is never cleared by an older timer.
func (m *Model) setToast(n models.Notice) tea.Cmd {
	m.toastID++
	m.toast = n
	id := m.toastID
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg(id)
	})
}

func (m *Model) startGeneration(description string) tea.Cmd {
	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan Msg, 1)
	m.progressChan = prog
	m.doneChan = done

	go func() {
		result, err := m.gen.Run(m.ctx, description, prog)
		done <- generationCompleteMsg(result, err)
		close(prog)
	}()

	return tea.Batch(m.waitForProgress(), m.spinner.Tick)
}

// waitForProgress returns the next progress update, or the job result once the channel closes.
func (m *Model) waitForProgress() tea.Cmd {
	prog, done := m.progressChan, m.doneChan
	if prog == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-prog; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) submitEdit() tea.Cmd {
	return func() tea.Msg {
		notice, err := m.editor.Submit(m.ctx)
		return editCompleteMsg(notice, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case InputView:
		body = m.renderInput()
	case GeneratingView:
		body = m.renderGenerating()
	case GalleryView:
		body = m.renderGallery()
	case EditView:
		body = m.renderEdit()
	}

	if m.toast.Message != "" {
		body = fmt.Sprintf("%s\n\n%s", body, styles.Notice(m.toast))
	}
	return body
}

func (m *Model) renderInput() string {
	title := styles.title.Render("New Storyboard")
	newline := key.NewBinding(key.WithKeys("ctrl+j"), key.WithHelp("ctrl+j", "newline"))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.generate, newline, m.keys.exit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}

func (m *Model) renderGenerating() string {
	var b strings.Builder

	switch m.state.Outcome {
	case progress.Failed:
		b.WriteString(styles.title.Render("Generation Failed"))
	case progress.Succeeded:
		b.WriteString(styles.title.Render("Storyboard Ready"))
	default:
		b.WriteString(styles.title.Render(fmt.Sprintf("%s Generating Storyboard", m.spinner.View())))
	}
	b.WriteString("\n")

	for _, step := range m.state.Steps {
		b.WriteString(fmt.Sprintf("%s %-32s %s\n", styles.Step(step.Status), step.Label, m.bar.ViewAs(float64(step.Percent)/100)))
	}

	b.WriteString(fmt.Sprintf("\nOverall %s\n", m.bar.ViewAs(m.state.Percent())))
	if m.state.TotalFrames > 0 {
		b.WriteString(fmt.Sprintf("Frames: %d/%d\n", m.state.CurrentFrame, m.state.TotalFrames))
	}
	if m.state.Message != "" {
		b.WriteString(styles.help.Render(m.state.Message) + "\n")
	}

	if m.state.Outcome == progress.Failed {
		b.WriteString("\n" + styles.err.Render(m.failure()) + "\n")
		b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.fresh, m.keys.quit}))
	}
	return b.String()
}

func (m *Model) failure() string {
	if m.state.Err != "" {
		return m.state.Err
	}
	if m.err != nil {
		return m.err.Error()
	}
	return tasks.MsgGenerateFailed
}

func (m *Model) renderGallery() string {
	header := styles.title.Render(fmt.Sprintf("Storyboard %s", m.gallery.SessionID()))

	info := fmt.Sprintf("%d frames", m.gallery.Len())
	if link := m.gallery.ArtifactLink(); link != "" {
		info = fmt.Sprintf("%s • PDF: %s", info, m.url(link))
	}
	if n := m.gallery.Selected(); n != 0 {
		info = fmt.Sprintf("%s • selected frame %d", info, n)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.sel, m.keys.edit, m.keys.editHere, m.keys.open, m.keys.fresh, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, styles.help.Render(info), m.frames.View(), helpView)
}

func (m *Model) renderEdit() string {
	title := styles.title.Render(fmt.Sprintf("Edit Frame %d", m.editor.Frame()))

	status := ""
	if m.applying {
		status = fmt.Sprintf("\n%s Applying edit...", m.spinner.View())
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.back, m.keys.exit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.instructions.View(), status, helpView)
}

// Err returns the error of the last generation job, if any.
func (m *Model) Err() error {
	if m.err == nil || errors.Is(m.err, context.Canceled) {
		return nil
	}
	return m.err
}
