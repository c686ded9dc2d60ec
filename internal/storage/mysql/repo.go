package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"fintech_sentiment/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct {
	db *sql.DB

	once  sync.Once
	table []domain.Review
	err   error
}

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*6)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args,
			rowHash(rv),
			rv.AppName,
			valStr(rv.Version),
			rv.Label,
			rv.Score,
			rv.At.UTC().Format("2006-01-02 15:04:05"),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var version sql.NullString
		var at time.Time
		if err := rows.Scan(&rv.AppName, &version, &rv.Label, &rv.Score, &at); err != nil {
			return nil, err
		}
		if version.Valid && version.String != "" {
			v := version.String
			rv.Version = &v
		}
		rv.At = at.UTC()
		out = append(out, rv)
	}
	return out, rows.Err()
}

// Load implements domain.ReviewSource on top of the repository: one read for
// the process lifetime, same contract as the CSV store.
func (r *Repo) Load(ctx context.Context) ([]domain.Review, error) {
	r.once.Do(func() { r.table, r.err = r.ListReviews(ctx) })
	return r.table, r.err
}

func rowHash(rv domain.Review) string {
	key := fmt.Sprintf("%s|%s|%s|%g|%d",
		rv.AppName, rv.VersionOrEmpty(), rv.Label, rv.Score, rv.At.UTC().Unix())
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
