// package formatter renders storyboards, job history and download manifests (text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/paprika/internal/models"
	"github.com/desertthunder/paprika/internal/shared"
)

// Format is an output format name.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	JSON     Format = "json"
	CSV      Format = "csv"
)

// ParseFormat converts a flag value to a [Format]. Empty input yields [Text].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case "md", Markdown:
		return Markdown, nil
	case JSON, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// SummaryToText renders a storyboard as plain text
func SummaryToText(s models.StoryboardSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Storyboard: %s\n", s.SessionID))
	if s.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", s.Description))
	}
	buf.WriteString(fmt.Sprintf("Frames: %d\n", s.TotalFrames))
	buf.WriteString(fmt.Sprintf("PDF: %s\n\n", s.ArtifactURL))

	for _, f := range s.Frames {
		buf.WriteString(fmt.Sprintf("%d. %s\n", f.FrameNumber, f.ImagePath))
	}

	return buf.Bytes()
}

// SummaryToMarkdown renders a storyboard as Markdown with inline frame images
func SummaryToMarkdown(s models.StoryboardSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Storyboard %s\n\n", s.SessionID))

	if s.Description != "" {
		buf.WriteString(fmt.Sprintf("> %s\n\n", strings.ReplaceAll(s.Description, "\n", "\n> ")))
	}

	buf.WriteString(fmt.Sprintf("**Frames**: %d\n", s.TotalFrames))
	buf.WriteString(fmt.Sprintf("**PDF**: [download](%s)\n\n", s.ArtifactURL))

	buf.WriteString("## Frames\n\n")
	for _, f := range s.Frames {
		buf.WriteString(fmt.Sprintf("### Frame %d\n\n![Frame %d](%s)\n\n", f.FrameNumber, f.FrameNumber, f.ImagePath))
	}

	return buf.Bytes()
}

// RenderSummary writes a storyboard to w in the given format.
func RenderSummary(w io.Writer, format Format, s models.StoryboardSummary) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case Markdown:
		data = SummaryToMarkdown(s)
	case JSON:
		data, err = shared.MarshalJSON(s, true)
		data = append(data, '\n')
	case Text:
		data = SummaryToText(s)
	default:
		return fmt.Errorf("%w: format %q is not supported for storyboards", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render storyboard: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// HistoryToCSV converts job records to CSV format with columns: Sequence, ID, Created, Status, Session, Frames, Strategy, Description, Error
func HistoryToCSV(records []models.JobRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "ID", "Created", "Status", "Session", "Frames", "Strategy", "Description", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		record := []string{
			strconv.FormatInt(r.Sequence, 10),
			r.ID,
			r.CreatedAt.UTC().Format(time.RFC3339),
			string(r.Status),
			r.SessionID,
			strconv.Itoa(r.TotalFrames),
			r.SessionStrategy,
			r.Description,
			r.ErrorMessage,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToText renders job records one per line, newest first as given.
func HistoryToText(records []models.JobRecord) []byte {
	var buf bytes.Buffer

	if len(records) == 0 {
		buf.WriteString("No storyboard jobs recorded.\n")
		return buf.Bytes()
	}

	for _, r := range records {
		mark := "✓"
		detail := fmt.Sprintf("%s (%d frames)", r.SessionID, r.TotalFrames)
		if r.Status == models.JobFailed {
			mark = "✗"
			detail = r.ErrorMessage
		}
		buf.WriteString(fmt.Sprintf("#%d %s %s %s: %s\n",
			r.Sequence, r.CreatedAt.Local().Format("2006-01-02 15:04"), mark, Truncate(r.Description, 48), detail))
	}

	return buf.Bytes()
}

// RenderHistory writes job records to w in the given format.
func RenderHistory(w io.Writer, format Format, records []models.JobRecord) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case CSV:
		data, err = HistoryToCSV(records)
	case JSON:
		if records == nil {
			records = []models.JobRecord{}
		}
		data, err = shared.MarshalJSON(records, true)
		data = append(data, '\n')
	case Text, Markdown:
		data = HistoryToText(records)
	default:
		return fmt.Errorf("%w: format %q is not supported for history", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// WriteManifest writes a download result as indented JSON to path.
func WriteManifest(result *models.DownloadResult, path string) error {
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
