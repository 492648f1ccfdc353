package store

import (
	"context"
	"database/sql"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// JobRepo records GBIF download submissions so operators can trace which keys
// were requested and when.
type JobRepo struct{ DB *sql.DB }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{DB: db} }

type JobRow struct {
	ID          int64
	CreatedAt   time.Time
	DownloadKey string
	DaysBack    int
	Creator     string
}

// Record inserts one submitted download.
func (r *JobRepo) Record(ctx context.Context, downloadKey, creator string, daysBack int) error {
	const q = `
insert into gbif_download_jobs (download_key, creator, days_back)
values ($1, $2, $3)
on conflict (download_key) do nothing`
	_, err := r.DB.ExecContext(ctx, q, downloadKey, creator, daysBack)
	return err
}

// Recent lists the latest submissions, newest first.
func (r *JobRepo) Recent(ctx context.Context, limit int) ([]JobRow, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
select id, created_at, download_key, coalesce(creator,'') as creator, coalesce(days_back,0) as days_back
from gbif_download_jobs
order by created_at desc
limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobRow
	for rows.Next() {
		var j JobRow
		if err := rows.Scan(&j.ID, &j.CreatedAt, &j.DownloadKey, &j.Creator, &j.DaysBack); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
