package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"social_dashboard/store"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// Header is the CSV column order.
var Header = []string{"id", "title", "status", "platforms", "scheduled_at", "published_at", "created_at", "content"}

// ParseFormat accepts "csv" or "json" in any case; "" means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Filename names an export taken at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("posts-%s.%s", t.UTC().Format("20060102-150405"), f)
}

// Write encodes posts to w in format f.
func Write(w io.Writer, f Format, posts []store.Post) error {
	switch f {
	case CSV:
		return WriteCSV(w, posts)
	case JSON:
		return WriteJSON(w, posts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteCSV writes a header row and one row per post. Platforms are joined
// with ';' and times are RFC 3339 in UTC, empty when unset.
func WriteCSV(w io.Writer, posts []store.Post) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range posts {
		row := []string{
			p.ID,
			p.Title,
			string(p.Status),
			strings.Join(p.Platforms, ";"),
			formatTime(p.ScheduledAt),
			formatTime(p.PublishedAt),
			formatTime(&p.CreatedAt),
			p.Content,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes posts as an indented JSON array; no posts gives "[]".
func WriteJSON(w io.Writer, posts []store.Post) error {
	if posts == nil {
		posts = []store.Post{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(posts)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
