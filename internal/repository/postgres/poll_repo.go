package postgres

import (
	"context"
	"database/sql"
	"errors"

	"livepoll/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Create(ctx context.Context, p *poll.Poll, options []poll.Option) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	queryPoll := `
        INSERT INTO polls (title, description, is_active)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `

	err = tx.QueryRowContext(ctx, queryPoll,
		p.Title,
		p.Description,
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return 0, err
	}

	queryOpt := `
        INSERT INTO poll_options (poll_id, label, sort_order)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	for i := range options {
		options[i].PollID = p.ID
		if err := tx.QueryRowContext(ctx, queryOpt, options[i].PollID, options[i].Label, options[i].SortOrder).
			Scan(&options[i].ID, &options[i].CreatedAt); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return p.ID, nil
}

func (r *PollRepo) GetByID(ctx context.Context, id int64) (*poll.Poll, []poll.Option, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, description, is_active, created_at, updated_at
        FROM polls WHERE id = $1
    `, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, poll.ErrNotFound
		}
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, poll_id, label, sort_order, created_at
        FROM poll_options
        WHERE poll_id = $1
        ORDER BY sort_order, id
    `, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var opts []poll.Option
	for rows.Next() {
		var o poll.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Label, &o.SortOrder, &o.CreatedAt); err != nil {
			return nil, nil, err
		}
		opts = append(opts, o)
	}

	return p, opts, rows.Err()
}

func (r *PollRepo) FindLatestActive(ctx context.Context) (*poll.Poll, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, description, is_active, created_at, updated_at
        FROM polls
        WHERE is_active
        ORDER BY id DESC
        LIMIT 1
    `).Scan(
		&p.ID, &p.Title, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, poll.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
