package csvstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"fintech_sentiment/internal/domain"
)

// Column aliases (single source of truth). Exports vary in header casing, so
// match case-insensitively against each list.
var columnAliases = map[string][]string{
	"app":     {"app_name", "app", "appname"},
	"version": {"reviewCreatedVersion", "review_created_version", "version"},
	"label":   {"sentiment_label", "label", "sentiment"},
	"score":   {"sentiment_score", "score"},
	"at":      {"at", "created_at", "date", "timestamp"},
}

// Timestamp layouts tried in order.
var atLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Store is a memoized CSV-backed ReviewSource. The file is treated as
// immutable for a run: one read, never invalidated.
type Store struct {
	path string

	once  sync.Once
	table []domain.Review
	err   error
}

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Load(_ context.Context) ([]domain.Review, error) {
	s.once.Do(func() { s.table, s.err = s.read() })
	return s.table, s.err
}

func (s *Store) read() ([]domain.Review, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDataUnavailable, s.path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged exports happen; validate per column instead

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", s.path, err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	var out []domain.Review
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s line %d: %w", s.path, line, err)
		}
		rv, err := parseRow(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, line, err)
		}
		out = append(out, rv)
	}
	return out, nil
}

type colIdx struct {
	app, version, label, score, at int
}

func resolveColumns(header []string) (colIdx, error) {
	find := func(key string) int {
		for _, alias := range columnAliases[key] {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), alias) {
					return i
				}
			}
		}
		return -1
	}
	c := colIdx{
		app:     find("app"),
		version: find("version"),
		label:   find("label"),
		score:   find("score"),
		at:      find("at"),
	}
	for key, idx := range map[string]int{
		"app_name": c.app, "reviewCreatedVersion": c.version,
		"sentiment_label": c.label, "sentiment_score": c.score, "at": c.at,
	} {
		if idx < 0 {
			return colIdx{}, fmt.Errorf("missing column %q", key)
		}
	}
	return c, nil
}

func parseRow(rec []string, cols colIdx) (domain.Review, error) {
	field := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rv := domain.Review{
		AppName: field(cols.app),
		Label:   strings.ToLower(field(cols.label)),
	}
	if rv.AppName == "" {
		return domain.Review{}, fmt.Errorf("empty app_name")
	}
	if rv.Label == "" {
		return domain.Review{}, fmt.Errorf("empty sentiment_label")
	}

	if v := field(cols.version); v != "" {
		rv.Version = &v
	}

	score, err := strconv.ParseFloat(field(cols.score), 64)
	if err != nil {
		return domain.Review{}, fmt.Errorf("bad sentiment_score %q", field(cols.score))
	}
	rv.Score = score

	at, err := parseAt(field(cols.at))
	if err != nil {
		return domain.Review{}, err
	}
	rv.At = at
	return rv, nil
}

func parseAt(s string) (time.Time, error) {
	for _, layout := range atLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}
