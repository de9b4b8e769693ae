package tasks

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/paprika/internal/gallery"
	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/progress"
	"github.com/desertthunder/paprika/internal/session"
	"github.com/desertthunder/paprika/internal/shared"
	tu "github.com/desertthunder/paprika/internal/testing"
)

type mockService struct {
	mu          sync.Mutex
	body        io.Reader
	generateErr error
	generated   []string
	files       map[string]string
	fetchErr    map[string]error
	fetched     []string
	block       chan struct{}
}

func (m *mockService) Name() string { return "mock" }

func (m *mockService) Generate(ctx context.Context, description string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.generated = append(m.generated, description)
	m.mu.Unlock()

	if m.block != nil {
		<-m.block
	}
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return io.NopCloser(m.body), nil
}

func (m *mockService) EditFrame(ctx context.Context, req models.EditRequest) (*models.EditResponse, error) {
	return nil, shared.ErrNotImplemented
}

func (m *mockService) Health(ctx context.Context) (*models.Health, error) {
	return &models.Health{Status: "healthy"}, nil
}

func (m *mockService) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, path)
	m.mu.Unlock()

	if err, ok := m.fetchErr[path]; ok {
		return nil, err
	}
	if body, ok := m.files[path]; ok {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	return nil, shared.ErrNotFound
}

func (m *mockService) ArtifactURL(path string) string { return "http://svc" + path }

type memRecorder struct {
	recs []models.JobRecord
	err  error
}

func (m *memRecorder) RecordJob(_ context.Context, rec models.JobRecord) error {
	m.recs = append(m.recs, rec)
	return m.err
}

func newEngine(svc *mockService) (*GenerationEngine, *models.JobState, *gallery.Gallery) {
	state := models.NewJobState()
	g := gallery.New("output", "storyboard.pdf")
	return NewGenerationEngine(svc, state, g, shared.DefaultConfig(), nil), state, g
}

func happyStream() []models.Event {
	return []models.Event{
		models.StepStart{Step: 1, Name: "analyzing", Message: "Analyzing your description..."},
		models.StepComplete{Step: 1, Message: "Analysis complete. Planning 3 frames.", TotalFrames: 3},
		models.StepStart{Step: 2, Message: "Generating frame images...", TotalFrames: 3},
		models.StepProgress{Step: 2, CurrentFrame: 1, TotalFrames: 3, Generating: true, Message: "Generating frame 1/3..."},
		models.StepProgress{Step: 2, CurrentFrame: 1, TotalFrames: 3, Message: "Generated frame 1/3"},
		models.StepProgress{Step: 2, CurrentFrame: 3, TotalFrames: 3, Message: "Generated frame 3/3"},
		models.StepComplete{Step: 2, Message: "Generated all 3 frames.", TotalFrames: 3},
		models.StepStart{Step: 3, Message: "Creating PDF storyboard..."},
		models.StepComplete{Step: 3, Message: "PDF created successfully."},
		models.Complete{Message: "Storyboard generated successfully", SessionID: "ab12-cd34", StoryboardPath: "output/ab12-cd34/storyboard.pdf", TotalFrames: 3},
	}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var out []ProgressUpdate
	for {
		select {
		case u := <-ch:
			out = append(out, u)
		default:
			return out
		}
	}
}

func TestGenerationEngine_Run(t *testing.T) {
	t.Run("Successful Job", func(t *testing.T) {
		svc := &mockService{body: tu.NewChunkReader(tu.SplitEvery(tu.SSEBody(happyStream()...), 13)...)}
		engine, state, g := newEngine(svc)
		rec := &memRecorder{}
		engine.SetRecorder(rec)
		prog := make(chan ProgressUpdate, 64)

		result, err := engine.Run(context.Background(), "  a cat chases a mouse  ", prog)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if !result.Succeeded() || result.SessionID != "ab12-cd34" || result.Strategy != session.Explicit || result.TotalFrames != 3 {
			t.Errorf("unexpected result %+v", result)
		}
		for i, step := range result.State.Steps {
			if step.Status != models.StepCompleted || step.Percent != 100 {
				t.Errorf("step %d not completed: %+v", i, step)
			}
		}

		if state.SessionID() != "ab12-cd34" || state.StoryboardContext() != "a cat chases a mouse" {
			t.Errorf("job state not resolved: %q %q", state.SessionID(), state.StoryboardContext())
		}
		if step, total, current := state.Counters(); step != 3 || total != 3 || current != 3 {
			t.Errorf("counters = %d %d %d", step, total, current)
		}
		if state.Generating.Active() {
			t.Error("generating guard should be released")
		}
		if g.Len() != 3 || g.ArtifactLink() != "/output/ab12-cd34/storyboard.pdf" {
			t.Errorf("gallery not populated: %+v", g.Cards())
		}

		updates := drain(prog)
		if len(updates) == 0 || updates[0].Phase != Submit {
			t.Fatalf("expected submit update first, got %+v", updates)
		}
		if last := updates[len(updates)-1]; last.Phase != Succeeded {
			t.Errorf("expected final update to be complete, got %s", last.Phase)
		}
		for _, u := range updates {
			if _, ok := u.State(); !ok {
				t.Errorf("update %s has no state snapshot", u.Phase)
			}
		}

		if len(rec.recs) != 1 || rec.recs[0].Status != models.JobSucceeded || rec.recs[0].SessionStrategy != "explicit" {
			t.Errorf("unexpected job record %+v", rec.recs)
		}
		if svc.generated[0] != "a cat chases a mouse" {
			t.Errorf("description should be trimmed, got %q", svc.generated[0])
		}
	})

	t.Run("Session From Path", func(t *testing.T) {
		events := []models.Event{models.Complete{StoryboardPath: "output/beef-01/storyboard.pdf", TotalFrames: 2}}
		engine, state, g := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(events...))})

		result, err := engine.Run(context.Background(), "a cat", nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Strategy != session.Path || state.SessionID() != "beef-01" || g.Len() != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if engine.Resolver().FallbackCount() != 1 {
			t.Errorf("fallback should be counted")
		}
	})

	t.Run("Unresolvable Session Fails Hard", func(t *testing.T) {
		events := []models.Event{models.Complete{StoryboardPath: "somewhere/else.pdf", TotalFrames: 2}}
		engine, state, g := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(events...))})
		rec := &memRecorder{}
		engine.SetRecorder(rec)

		result, err := engine.Run(context.Background(), "a cat", nil)
		if !errors.Is(err, shared.ErrSessionUnresolved) {
			t.Errorf("expected ErrSessionUnresolved, got %v", err)
		}
		if result.Succeeded() || g.Len() != 0 || state.SessionID() != "" {
			t.Error("no frames should render without a session")
		}
		if len(rec.recs) != 1 || rec.recs[0].Status != models.JobFailed {
			t.Errorf("failure should be recorded, got %+v", rec.recs)
		}
	})

	t.Run("Failure Event", func(t *testing.T) {
		events := []models.Event{
			models.StepStart{Step: 1, Message: "Analyzing your description..."},
			models.Failure{Message: "Storyboard generation failed: quota exceeded"},
			models.Complete{SessionID: "late"},
		}
		engine, state, g := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(events...))})
		prog := make(chan ProgressUpdate, 16)

		result, err := engine.Run(context.Background(), "a cat", prog)
		if !errors.Is(err, shared.ErrJobFailed) {
			t.Errorf("expected ErrJobFailed, got %v", err)
		}
		if result.State.Outcome != progress.Failed || result.State.Err != "Storyboard generation failed: quota exceeded" {
			t.Errorf("unexpected state %+v", result.State)
		}
		if result.State.Steps[0].Status != models.StepActive {
			t.Error("partial progress should be kept")
		}
		if g.Len() != 0 || state.SessionID() != "" || state.Generating.Active() {
			t.Error("failed job should leave no session or cards and release the guard")
		}

		updates := drain(prog)
		failed := 0
		for _, u := range updates {
			if u.Phase == Failed {
				failed++
			}
		}
		if failed != 1 {
			t.Errorf("expected exactly one failure update, got %d", failed)
		}
	})

	t.Run("Stream Ends Without Terminal Event", func(t *testing.T) {
		events := []models.Event{models.StepStart{Step: 1, Message: "Analyzing"}}
		engine, _, _ := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(events...))})

		result, err := engine.Run(context.Background(), "a cat", nil)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if result.State.Outcome != progress.Failed || result.State.Err != MsgStreamLost {
			t.Errorf("expected synthesized failure, got %+v", result.State)
		}
	})

	t.Run("Stream Read Error", func(t *testing.T) {
		engine, _, _ := newEngine(&mockService{body: &tu.FCloser{}})
		if _, err := engine.Run(context.Background(), "a cat", nil); !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("Start Failure", func(t *testing.T) {
		engine, state, _ := newEngine(&mockService{generateErr: errors.New("connection refused")})
		result, err := engine.Run(context.Background(), "a cat", nil)
		if !errors.Is(err, shared.ErrJobFailed) {
			t.Errorf("expected ErrJobFailed, got %v", err)
		}
		if result.State.Err != MsgStartFailed {
			t.Errorf("unexpected error message %q", result.State.Err)
		}
		if state.Generating.Active() {
			t.Error("guard should be released after start failure")
		}
	})

	t.Run("Blank Description", func(t *testing.T) {
		svc := &mockService{}
		engine, _, _ := newEngine(svc)
		if _, err := engine.Run(context.Background(), " \n\t", nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if len(svc.generated) != 0 {
			t.Error("blank description should not reach the service")
		}
	})

	t.Run("Second Job Rejected While In Flight", func(t *testing.T) {
		svc := &mockService{body: strings.NewReader(tu.SSEBody(happyStream()...)), block: make(chan struct{})}
		engine, state, _ := newEngine(svc)

		done := make(chan error, 1)
		go func() {
			_, err := engine.Run(context.Background(), "first", nil)
			done <- err
		}()

		for !state.Generating.Active() {
			runtime.Gosched()
		}

		if _, err := engine.Run(context.Background(), "second", nil); !errors.Is(err, shared.ErrGenerationInFlight) {
			t.Errorf("expected ErrGenerationInFlight, got %v", err)
		}

		close(svc.block)
		if err := <-done; err != nil {
			t.Fatalf("first job failed: %v", err)
		}
		if len(svc.generated) != 1 {
			t.Errorf("expected one request, got %v", svc.generated)
		}
	})

	t.Run("New Job Resets Previous Result", func(t *testing.T) {
		svc := &mockService{body: strings.NewReader(tu.SSEBody(happyStream()...))}
		engine, state, g := newEngine(svc)
		if _, err := engine.Run(context.Background(), "first", nil); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		_, _ = g.Select(2)

		svc.body = strings.NewReader(tu.SSEBody(models.StepStart{Step: 1}, models.Failure{Message: "boom"}))
		_, _ = engine.Run(context.Background(), "second", nil)

		if g.Len() != 0 || g.Selected() != 0 || state.SessionID() != "" {
			t.Error("previous session and cards should be cleared at job start")
		}
		if step, _, _ := state.Counters(); step != 1 {
			t.Errorf("counters should restart, got step %d", step)
		}
	})

	t.Run("Recorder Error Is Not Fatal", func(t *testing.T) {
		engine, _, _ := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(happyStream()...))})
		engine.SetRecorder(&memRecorder{err: errors.New("database is locked")})
		if _, err := engine.Run(context.Background(), "a cat", nil); err != nil {
			t.Errorf("recorder failure should not fail the job: %v", err)
		}
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		engine, _, _ := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(happyStream()...))})
		prog := make(chan ProgressUpdate)
		if _, err := engine.Run(context.Background(), "a cat", prog); err != nil {
			t.Errorf("Run failed: %v", err)
		}
	})
}

func TestGenerationEngine_NewJob(t *testing.T) {
	t.Run("Clears Previous Storyboard", func(t *testing.T) {
		engine, state, g := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(happyStream()...))})
		if _, err := engine.Run(context.Background(), "a cat", nil); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if _, err := g.Select(2); err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		if err := engine.NewJob(); err != nil {
			t.Fatalf("NewJob failed: %v", err)
		}
		if state.SessionID() != "" || state.StoryboardContext() != "" {
			t.Errorf("session should be cleared, got %q / %q", state.SessionID(), state.StoryboardContext())
		}
		if g.Len() != 0 || g.Selected() != 0 || g.ArtifactLink() != "" {
			t.Errorf("gallery should be empty, got %d cards, selected %d", g.Len(), g.Selected())
		}
	})

	t.Run("Refused While Generating", func(t *testing.T) {
		engine, state, _ := newEngine(&mockService{})
		state.Resolve("abc", "a cat")
		state.Generating.TryAcquire()
		defer state.Generating.Release()

		if err := engine.NewJob(); !errors.Is(err, shared.ErrGenerationInFlight) {
			t.Errorf("expected ErrGenerationInFlight, got %v", err)
		}
		if state.SessionID() != "abc" {
			t.Error("state should be untouched while a job runs")
		}
	})
}

func TestEventUpdate(t *testing.T) {
	s := progress.New([]string{"a", "b"}, 1)
	s = progress.Reduce(s, models.StepStart{Step: 1, Message: "Analyzing your description..."})
	ev := models.StepComplete{Step: 1, Message: "Analysis complete"}
	s = progress.Reduce(s, ev)

	u := eventUpdate(ev, s)
	if u.Phase != StepCompleted || u.Message != "Analysis complete" {
		t.Errorf("unexpected update %+v", u)
	}
	if s.Message != "Analyzing your description..." {
		t.Errorf("loading message should be kept, got %q", s.Message)
	}
}

func TestGenerationEngine_Summary(t *testing.T) {
	engine, _, _ := newEngine(&mockService{body: strings.NewReader(tu.SSEBody(happyStream()...))})
	result, err := engine.Run(context.Background(), "a cat", nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := engine.Summary(result)
	if s.ArtifactURL != "http://svc/output/ab12-cd34/storyboard.pdf" {
		t.Errorf("unexpected artifact URL %q", s.ArtifactURL)
	}
	if len(s.Frames) != 3 || s.Frames[2].ImagePath != "http://svc/output/ab12-cd34/frame_003.png" {
		t.Errorf("unexpected frames %+v", s.Frames)
	}
	if s.Description != "a cat" || s.SessionStrategy != "explicit" {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestPhase(t *testing.T) {
	if Succeeded.String() != "complete" || Failed.String() != "error" || Download.String() != "download" {
		t.Error("unexpected phase names")
	}
	if !Succeeded.IsTerminal() || !Failed.IsTerminal() || StepProgressed.IsTerminal() {
		t.Error("unexpected terminal phases")
	}
}

func TestNotice(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level models.NoticeLevel
		msg   string
	}{
		{"success", nil, models.NoticeSuccess, MsgGenerated},
		{"job failed", shared.ErrJobFailed, models.NoticeError, MsgGenerateFailed},
		{"transport", shared.ErrTransport, models.NoticeError, MsgGenerateFailed},
		{"busy", shared.ErrGenerationInFlight, models.NoticeInfo, "A storyboard is already being generated"},
		{"blank", shared.ErrInvalidInput, models.NoticeError, "Please describe your storyboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notice(tt.err)
			if n.Level != tt.level || n.Message != tt.msg {
				t.Errorf("Notice(%v) = %+v", tt.err, n)
			}
		})
	}
}
