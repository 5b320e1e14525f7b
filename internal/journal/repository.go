package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/skawashin1122/bento-app-project/internal/order"
)

var ErrInvalidAttempt = errors.New("invalid attempt")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository stores every submission attempt with its per-line outcome, so
// lines the backend accepted during a failed submission stay visible.
type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

// RecordAttempt implements session.Recorder. The attempt and its lines are
// written in one transaction.
func (r *Repository) RecordAttempt(ctx context.Context, a order.Attempt) error {
	if a.ID == "" || len(a.Lines) == 0 {
		return ErrInvalidAttempt
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := insertAttempt(ctx, tx, a); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertAttempt(ctx context.Context, tx pgx.Tx, a order.Attempt) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO submission_attempts(id, correlation_id, user_name, status, line_count, submitted_at)
		VALUES($1, $2, $3, $4, $5, $6)
	`, a.ID, a.CorrelationID, a.UserName, string(a.Status()), len(a.Lines), a.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	for i, l := range a.Lines {
		var (
			orderID    pgtype.Int8
			menuName   pgtype.Text
			totalPrice pgtype.Int8
			orderedAt  pgtype.Timestamptz
			lineErr    pgtype.Text
		)
		if l.Result != nil {
			orderID = pgtype.Int8{Int64: int64(l.Result.ID), Valid: true}
			menuName = pgtype.Text{String: l.Result.MenuName, Valid: true}
			totalPrice = pgtype.Int8{Int64: l.Result.TotalPrice, Valid: true}
			if !l.Result.OrderedAt.IsZero() {
				orderedAt = pgtype.Timestamptz{Time: l.Result.OrderedAt.Time, Valid: true}
			}
		} else {
			lineErr = pgtype.Text{String: l.Err, Valid: true}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO submission_lines(attempt_id, line_no, menu_id, quantity, order_id, menu_name, total_price, ordered_at, error)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, a.ID, i, l.MenuID, l.Quantity, orderID, menuName, totalPrice, orderedAt, lineErr)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i, err)
		}
	}
	return nil
}

// ListRecent returns the newest attempts first, each with its lines in
// submission order.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]order.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, correlation_id, user_name, submitted_at
		FROM submission_attempts
		ORDER BY submitted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}

	var (
		entries []order.Attempt
		ids     []string
		index   = map[string]int{}
	)
	for rows.Next() {
		var e order.Attempt
		if err := rows.Scan(&e.ID, &e.CorrelationID, &e.UserName, &e.SubmittedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		e.SubmittedAt = e.SubmittedAt.UTC()
		index[e.ID] = len(entries)
		ids = append(ids, e.ID)
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	if len(entries) == 0 {
		return []order.Attempt{}, nil
	}

	lineRows, err := r.pool.Query(ctx, `
		SELECT attempt_id::text, menu_id, quantity, order_id, menu_name, total_price, ordered_at, error
		FROM submission_lines
		WHERE attempt_id = ANY($1::uuid[])
		ORDER BY attempt_id, line_no
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			attemptID  string
			l          order.LineOutcome
			orderID    pgtype.Int8
			menuName   pgtype.Text
			totalPrice pgtype.Int8
			orderedAt  pgtype.Timestamptz
			lineErr    pgtype.Text
		)
		if err := lineRows.Scan(&attemptID, &l.MenuID, &l.Quantity, &orderID, &menuName, &totalPrice, &orderedAt, &lineErr); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		i, ok := index[attemptID]
		if !ok {
			continue
		}
		if orderID.Valid {
			res := order.Result{
				UserName:   entries[i].UserName,
				ID:         int(orderID.Int64),
				MenuID:     l.MenuID,
				MenuName:   menuName.String,
				Quantity:   l.Quantity,
				TotalPrice: totalPrice.Int64,
			}
			if orderedAt.Valid {
				res.OrderedAt = order.Timestamp{Time: orderedAt.Time}
			}
			l.Result = &res
		} else {
			l.Err = lineErr.String
		}

		entries[i].Lines = append(entries[i].Lines, l)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}
	return entries, nil
}
