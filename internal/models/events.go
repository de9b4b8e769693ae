package models

// EventType is the wire discriminator of a stream record.
type EventType string

const (
	EventStepStart    EventType = "step_start"
	EventStepProgress EventType = "step_progress"
	EventStepComplete EventType = "step_complete"
	EventComplete     EventType = "complete"
	EventError        EventType = "error"
)

// IsTerminal returns true if this event type ends a job.
func (t EventType) IsTerminal() bool {
	return t == EventComplete || t == EventError
}

// Event is one decoded stream record. The set of implementations is closed to this package.
type Event interface {
	Type() EventType
	event()
}

var (
	_ Event = StepStart{}
	_ Event = StepProgress{}
	_ Event = StepComplete{}
	_ Event = Complete{}
	_ Event = Failure{}
)

// StepStart announces that a phase has begun.
type StepStart struct {
	Step        int
	Name        string
	Message     string
	TotalFrames int // zero when the service has not planned frames yet
}

// StepProgress reports frame-level progress within a phase.
type StepProgress struct {
	Step         int
	Name         string
	Message      string
	CurrentFrame int
	TotalFrames  int
	Generating   bool // true while the frame is still being produced
}

// StepComplete marks a phase as finished.
type StepComplete struct {
	Step        int
	Name        string
	Message     string
	TotalFrames int
}

// Complete ends a job successfully.
type Complete struct {
	Message        string
	SessionID      string
	StoryboardPath string
	TotalFrames    int
}

// Failure ends a job unsuccessfully.
type Failure struct {
	Message string
	Details string
}

func (StepStart) Type() EventType    { return EventStepStart }
func (StepProgress) Type() EventType { return EventStepProgress }
func (StepComplete) Type() EventType { return EventStepComplete }
func (Complete) Type() EventType     { return EventComplete }
func (Failure) Type() EventType      { return EventError }

func (StepStart) event()    {}
func (StepProgress) event() {}
func (StepComplete) event() {}
func (Complete) event()     {}
func (Failure) event()      {}

// WireEvent is the JSON shape of a stream record as sent by the service.
type WireEvent struct {
	Type           EventType `json:"type"`
	Step           int       `json:"step,omitempty"`
	StepName       string    `json:"step_name,omitempty"`
	Message        string    `json:"message,omitempty"`
	Details        string    `json:"details,omitempty"`
	TotalFrames    int       `json:"total_frames,omitempty"`
	CurrentFrame   int       `json:"current_frame,omitempty"`
	Generating     bool      `json:"generating,omitempty"`
	Success        bool      `json:"success,omitempty"`
	SessionID      string    `json:"session_id,omitempty"`
	StoryboardPath string    `json:"storyboard_path,omitempty"`
}

// Event converts the wire record into its typed variant. ok is false for unknown types.
func (w WireEvent) Event() (ev Event, ok bool) {
	switch w.Type {
	case EventStepStart:
		return StepStart{Step: w.Step, Name: w.StepName, Message: w.Message, TotalFrames: w.TotalFrames}, true
	case EventStepProgress:
		return StepProgress{
			Step:         w.Step,
			Name:         w.StepName,
			Message:      w.Message,
			CurrentFrame: w.CurrentFrame,
			TotalFrames:  w.TotalFrames,
			Generating:   w.Generating,
		}, true
	case EventStepComplete:
		return StepComplete{Step: w.Step, Name: w.StepName, Message: w.Message, TotalFrames: w.TotalFrames}, true
	case EventComplete:
		return Complete{
			Message:        w.Message,
			SessionID:      w.SessionID,
			StoryboardPath: w.StoryboardPath,
			TotalFrames:    w.TotalFrames,
		}, true
	case EventError:
		return Failure{Message: w.Message, Details: w.Details}, true
	default:
		return nil, false
	}
}

// ToWire converts a typed event back to its JSON shape.
func ToWire(ev Event) WireEvent {
	switch e := ev.(type) {
	case StepStart:
		return WireEvent{Type: EventStepStart, Step: e.Step, StepName: e.Name, Message: e.Message, TotalFrames: e.TotalFrames}
	case StepProgress:
		return WireEvent{
			Type:         EventStepProgress,
			Step:         e.Step,
			StepName:     e.Name,
			Message:      e.Message,
			CurrentFrame: e.CurrentFrame,
			TotalFrames:  e.TotalFrames,
			Generating:   e.Generating,
		}
	case StepComplete:
		return WireEvent{Type: EventStepComplete, Step: e.Step, StepName: e.Name, Message: e.Message, TotalFrames: e.TotalFrames}
	case Complete:
		return WireEvent{
			Type:           EventComplete,
			Success:        true,
			Message:        e.Message,
			SessionID:      e.SessionID,
			StoryboardPath: e.StoryboardPath,
			TotalFrames:    e.TotalFrames,
		}
	case Failure:
		return WireEvent{Type: EventError, Message: e.Message, Details: e.Details}
	default:
		return WireEvent{}
	}
}
