package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
)

type BuyerRepositoryAdapter struct {
	db *sql.DB
}

func NewBuyerRepositoryAdapter(db *sql.DB) *BuyerRepositoryAdapter {
	return &BuyerRepositoryAdapter{db: db}
}

var _ outbound.BuyerRepository = (*BuyerRepositoryAdapter)(nil)

const buyerColumns = `
	id, full_name, email, phone, city, property_type, bhk, purpose,
	budget_min, budget_max, timeline, source, status, notes, tags,
	owner_id, created_at, updated_at
`

func (r *BuyerRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	query := `SELECT ` + buyerColumns + ` FROM buyers WHERE id = $1`

	buyer, err := scanBuyer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to find buyer by id: %w", err)
	}
	return buyer, nil
}

func (r *BuyerRepositoryAdapter) Insert(ctx context.Context, fields domain.BuyerFields, ownerID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO buyers (
			full_name, email, phone, city, property_type, bhk, purpose,
			budget_min, budget_max, timeline, source, status, notes, tags, owner_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + buyerColumns

	buyer, err := scanBuyer(tx.QueryRowContext(ctx, query,
		fields.FullName,
		fields.Email,
		fields.Phone,
		string(fields.City),
		string(fields.PropertyType),
		nullableString(string(fields.BHK)),
		string(fields.Purpose),
		fields.BudgetMin,
		fields.BudgetMax,
		string(fields.Timeline),
		string(fields.Source),
		string(fields.Status),
		fields.Notes,
		pq.Array(fields.Tags),
		ownerID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert buyer: %w", err)
	}

	if err := insertAuditEvent(ctx, tx, buyer.ID, ownerID, changes, buyer.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit buyer insert: %w", err)
	}
	return buyer, nil
}

// ConditionalUpdate runs the compare-token, write, bump-token sequence as a
// single conditional UPDATE so two racing callers can never both pass the
// version check. The audit event joins the same transaction.
func (r *BuyerRepositoryAdapter) ConditionalUpdate(ctx context.Context, id int64, expectedToken string, fields domain.BuyerFields, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	expected, err := time.Parse(time.RFC3339Nano, expectedToken)
	if err != nil {
		// A token that cannot be parsed can never match the stored one.
		return nil, outbound.ErrVersionMismatch
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE buyers SET
			full_name = $3, email = $4, phone = $5, city = $6,
			property_type = $7, bhk = $8, purpose = $9,
			budget_min = $10, budget_max = $11, timeline = $12,
			source = $13, status = $14, notes = $15, tags = $16,
			updated_at = now()
		WHERE id = $1 AND updated_at = $2
		RETURNING ` + buyerColumns

	buyer, err := scanBuyer(tx.QueryRowContext(ctx, query,
		id,
		expected,
		fields.FullName,
		fields.Email,
		fields.Phone,
		string(fields.City),
		string(fields.PropertyType),
		nullableString(string(fields.BHK)),
		string(fields.Purpose),
		fields.BudgetMin,
		fields.BudgetMax,
		string(fields.Timeline),
		string(fields.Source),
		string(fields.Status),
		fields.Notes,
		pq.Array(fields.Tags),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissingRow(ctx, tx, id)
		}
		return nil, fmt.Errorf("failed to update buyer: %w", err)
	}

	if err := insertAuditEvent(ctx, tx, id, actorID, changes, buyer.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit buyer update: %w", err)
	}
	return buyer, nil
}

func (r *BuyerRepositoryAdapter) SetStatus(ctx context.Context, id int64, status domain.Status, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE buyers SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + buyerColumns

	buyer, err := scanBuyer(tx.QueryRowContext(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to update buyer status: %w", err)
	}

	if err := insertAuditEvent(ctx, tx, id, actorID, changes, buyer.UpdatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}
	return buyer, nil
}

// Delete removes history rows before the buyer row, in one transaction.
func (r *BuyerRepositoryAdapter) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM buyer_history WHERE buyer_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete buyer history: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM buyers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete buyer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return outbound.ErrBuyerNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit buyer delete: %w", err)
	}
	return nil
}

func (r *BuyerRepositoryAdapter) ListRecentAudit(ctx context.Context, buyerID int64, limit int) ([]domain.AuditEvent, error) {
	query := `
		SELECT h.id, h.buyer_id, h.changed_by, h.diff, h.changed_at,
		       COALESCE(u.full_name, ''), COALESCE(u.email, '')
		FROM buyer_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.buyer_id = $1
		ORDER BY h.changed_at DESC, h.id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyer history: %w", err)
	}
	defer rows.Close()

	events := []domain.AuditEvent{}
	for rows.Next() {
		var event domain.AuditEvent
		var diffJSON []byte
		if err := rows.Scan(
			&event.ID,
			&event.BuyerID,
			&event.ActorID,
			&diffJSON,
			&event.ChangedAt,
			&event.ActorName,
			&event.ActorEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan buyer history row: %w", err)
		}
		if err := json.Unmarshal(diffJSON, &event.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode change set: %w", err)
		}
		event.ChangedAt = event.ChangedAt.UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate buyer history: %w", err)
	}
	return events, nil
}

// classifyMissingRow distinguishes a vanished buyer from a stale token after
// a conditional update matched no row.
func (r *BuyerRepositoryAdapter) classifyMissingRow(ctx context.Context, tx *sql.Tx, id int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM buyers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to classify conditional update miss: %w", err)
	}
	if exists {
		return outbound.ErrVersionMismatch
	}
	return outbound.ErrBuyerNotFound
}

func insertAuditEvent(ctx context.Context, tx *sql.Tx, buyerID, actorID int64, changes domain.ChangeSet, changedAt time.Time) error {
	diffJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("failed to encode change set: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO buyer_history (buyer_id, changed_by, diff, changed_at) VALUES ($1, $2, $3, $4)`,
		buyerID, actorID, diffJSON, changedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBuyer(row rowScanner) (*domain.Buyer, error) {
	var buyer domain.Buyer
	var bhk sql.NullString
	var budgetMin, budgetMax sql.NullInt64
	var tags pq.StringArray

	err := row.Scan(
		&buyer.ID,
		&buyer.FullName,
		&buyer.Email,
		&buyer.Phone,
		&buyer.City,
		&buyer.PropertyType,
		&bhk,
		&buyer.Purpose,
		&budgetMin,
		&budgetMax,
		&buyer.Timeline,
		&buyer.Source,
		&buyer.Status,
		&buyer.Notes,
		&tags,
		&buyer.OwnerID,
		&buyer.CreatedAt,
		&buyer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bhk.Valid {
		buyer.BHK = domain.BHK(bhk.String)
	}
	if budgetMin.Valid {
		v := budgetMin.Int64
		buyer.BudgetMin = &v
	}
	if budgetMax.Valid {
		v := budgetMax.Int64
		buyer.BudgetMax = &v
	}
	buyer.Tags = []string(tags)
	if buyer.Tags == nil {
		buyer.Tags = []string{}
	}

	// Timestamps are canonicalized to UTC so the serialized version token is
	// stable regardless of the session time zone.
	buyer.CreatedAt = buyer.CreatedAt.UTC()
	buyer.UpdatedAt = buyer.UpdatedAt.UTC()

	return &buyer, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
