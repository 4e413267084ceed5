package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"livepoll/internal/domain/vote"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type VoteRepo struct {
	db *sql.DB
	q  querier
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db, q: db}
}

// InTx runs fn against a repository bound to a single transaction. The
// vote reconcile sequence (find, then insert/update/delete) must be one
// atomic unit with respect to other writers.
func (r *VoteRepo) InTx(ctx context.Context, fn func(vote.Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&VoteRepo{db: r.db, q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *VoteRepo) Find(ctx context.Context, pollID int64, voterToken string) (*vote.Vote, error) {
	v := &vote.Vote{}
	err := r.q.QueryRowContext(ctx, `
        SELECT id, poll_id, option_id, voter_token, created_at
        FROM votes
        WHERE poll_id = $1 AND voter_token = $2
    `, pollID, voterToken).Scan(&v.ID, &v.PollID, &v.OptionID, &v.VoterToken, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *VoteRepo) Insert(ctx context.Context, v *vote.Vote) error {
	query := `
        INSERT INTO votes (poll_id, option_id, voter_token)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.q.QueryRowContext(ctx, query, v.PollID, v.OptionID, v.VoterToken).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return vote.ErrConflict
		}
		return err
	}
	return nil
}

func (r *VoteRepo) UpdateOption(ctx context.Context, voteID, optionID int64) error {
	_, err := r.q.ExecContext(ctx, `
        UPDATE votes SET option_id = $1 WHERE id = $2
    `, optionID, voteID)
	return err
}

func (r *VoteRepo) Delete(ctx context.Context, voteID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, voteID)
	return err
}

func (r *VoteRepo) CountByOption(ctx context.Context, pollID int64) (map[int64]int64, error) {
	rows, err := r.q.QueryContext(ctx, `
        SELECT option_id, COUNT(*)
        FROM votes
        WHERE poll_id = $1
        GROUP BY option_id
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[int64]int64)
	for rows.Next() {
		var optID int64
		var c int64
		if err := rows.Scan(&optID, &c); err != nil {
			return nil, err
		}
		res[optID] = c
	}

	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
