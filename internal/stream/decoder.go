package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/paprika/internal/models"
)

// RecordPrefix marks a line that carries an event payload.
const RecordPrefix = "data: "

// ChunkSize is the read size used by [EventReader].
const ChunkSize = 4096

// MaxPending caps the bytes buffered while waiting for a newline. A longer unterminated
// segment is discarded.
const MaxPending = 1 << 20

// DecodeErrorKind classifies why a line did not produce an event.
type DecodeErrorKind int

const (
	// NotRecord indicates a line without the record prefix (comments, blank separators).
	NotRecord DecodeErrorKind = iota
	// Empty indicates a record with no payload after the prefix.
	Empty
	// Malformed indicates a payload that is not a JSON object.
	Malformed
	// UnknownType indicates a JSON payload with a missing or unrecognized type.
	UnknownType
)

func (k DecodeErrorKind) String() string {
	switch k {
	case NotRecord:
		return "not a record"
	case Empty:
		return "empty record"
	case Malformed:
		return "malformed record"
	case UnknownType:
		return "unknown record type"
	default:
		return "decode error"
	}
}

// DecodeError is returned by [ParseLine] for lines that carry no usable event.
//
// Decode errors are local: the caller skips the line and keeps reading.
type DecodeError struct {
	Kind DecodeErrorKind
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError returns true if err is a [*DecodeError].
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decoder reassembles newline-terminated lines from arbitrarily split chunks.
//
// A Decoder is used for exactly one stream.
type Decoder struct {
	buf     []byte
	closed  bool
	dropped int
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the buffer and returns every complete line in arrival order.
// The trailing segment after the last newline is retained for the next call.
func (d *Decoder) Feed(chunk []byte) []string {
	if d.closed || len(chunk) == 0 {
		return nil
	}
	d.buf = append(d.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(bytes.TrimSuffix(d.buf[:i], []byte{'\r'})))
		d.buf = d.buf[i+1:]
	}

	if len(d.buf) > MaxPending {
		d.dropped += len(d.buf)
		d.buf = nil
	}
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return lines
}

// Dropped returns the number of bytes discarded because a segment exceeded [MaxPending].
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Close ends the stream. A non-empty remainder is discarded and its length returned.
func (d *Decoder) Close() int {
	n := len(d.buf)
	d.buf = nil
	d.closed = true
	return n
}

// Pending returns the number of buffered bytes not yet terminated by a newline.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// ParseLine converts one line into an event.
func ParseLine(line string) (models.Event, error) {
	payload, ok := strings.CutPrefix(line, RecordPrefix)
	if !ok {
		return nil, &DecodeError{Kind: NotRecord, Line: line}
	}

	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, &DecodeError{Kind: Empty, Line: line}
	}

	var w models.WireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, &DecodeError{Kind: Malformed, Line: line, Err: err}
	}

	ev, ok := w.Event()
	if !ok {
		return nil, &DecodeError{Kind: UnknownType, Line: line, Err: fmt.Errorf("type %q", w.Type)}
	}
	return ev, nil
}

// EventReader reads events from a progress stream body.
type EventReader struct {
	r       io.Reader
	dec     *Decoder
	logger  *log.Logger
	pending []string
	chunk   []byte
	err     error
	skipped int
}

// NewEventReader wraps r. Skipped records are logged at debug level on logger, which may be nil.
func NewEventReader(r io.Reader, logger *log.Logger) *EventReader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &EventReader{
		r:      r,
		dec:    NewDecoder(),
		logger: logger,
		chunk:  make([]byte, ChunkSize),
	}
}

// ReadEvent returns the next event in the stream.
//
// Lines that do not decode are skipped. At the end of the stream ReadEvent returns [io.EOF];
// any other error comes from the underlying reader. Once an error is returned every later
// call returns the same error.
func (er *EventReader) ReadEvent() (models.Event, error) {
	for {
		for len(er.pending) > 0 {
			line := er.pending[0]
			er.pending = er.pending[1:]

			ev, err := ParseLine(line)
			if err != nil {
				var de *DecodeError
				if errors.As(err, &de) && de.Kind != NotRecord {
					er.skipped++
					er.logger.Debug("skipping stream record", "kind", de.Kind, "line", line, "err", de.Err)
				}
				continue
			}
			return ev, nil
		}

		if er.err != nil {
			return nil, er.err
		}

		n, err := er.r.Read(er.chunk)
		if n > 0 {
			before := er.dec.Dropped()
			er.pending = er.dec.Feed(er.chunk[:n])
			if dropped := er.dec.Dropped() - before; dropped > 0 {
				er.logger.Debug("discarding oversized stream segment", "bytes", dropped)
			}
		}
		if err != nil {
			if dropped := er.dec.Close(); dropped > 0 {
				er.logger.Debug("discarding unterminated stream data", "bytes", dropped)
			}
			er.err = err
		}
	}
}

// Skipped returns the number of records that were dropped because they failed to decode.
func (er *EventReader) Skipped() int {
	return er.skipped
}
