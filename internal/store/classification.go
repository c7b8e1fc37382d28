package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-levy/internal/tax"
)

// FindValidForDate returns the classification code if it is active and the
// date falls inside its effective window. Absence is (nil, nil).
func (s *Store) FindValidForDate(ctx context.Context, tenantID, code string, date time.Time) (*tax.ClassificationCode, error) {
	const query = `
		SELECT code, description, COALESCE(parent_code, ''), level,
		       COALESCE(unit_of_measure, ''), exemption_eligible,
		       effective_from, effective_to, active
		FROM tax_classification_codes
		WHERE tenant_id = $1
		  AND code = $2
		  AND active
		  AND effective_from <= $3
		  AND (effective_to IS NULL OR effective_to >= $3)`

	row := s.Pool.QueryRow(ctx, query, tenantID, code, tax.DateOnly(date))
	cc, err := scanClassificationCode(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find classification code: %w", err)
	}
	return cc, nil
}

// Search lists active classification codes, optionally filtered by a
// case-insensitive match on code or description.
func (s *Store) Search(ctx context.Context, tenantID, query string, page, perPage int) ([]tax.ClassificationCode, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage
	pattern := "%" + query + "%"

	const countQuery = `
		SELECT count(*)
		FROM tax_classification_codes
		WHERE tenant_id = $1
		  AND active
		  AND ($2 = '' OR code ILIKE $3 OR description ILIKE $3)`

	var total int64
	if err := s.Pool.QueryRow(ctx, countQuery, tenantID, query, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("store: count classification codes: %w", err)
	}

	const listQuery = `
		SELECT code, description, COALESCE(parent_code, ''), level,
		       COALESCE(unit_of_measure, ''), exemption_eligible,
		       effective_from, effective_to, active
		FROM tax_classification_codes
		WHERE tenant_id = $1
		  AND active
		  AND ($2 = '' OR code ILIKE $3 OR description ILIKE $3)
		ORDER BY code
		LIMIT $4 OFFSET $5`

	rows, err := s.Pool.Query(ctx, listQuery, tenantID, query, pattern, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: list classification codes: %w", err)
	}
	defer rows.Close()

	codes := make([]tax.ClassificationCode, 0, perPage)
	for rows.Next() {
		cc, err := scanClassificationCode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: scan classification code: %w", err)
		}
		codes = append(codes, *cc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: iterate classification codes: %w", err)
	}
	return codes, total, nil
}

func scanClassificationCode(row pgx.Row) (*tax.ClassificationCode, error) {
	var (
		cc          tax.ClassificationCode
		effectiveTo pgtype.Timestamptz
	)
	err := row.Scan(
		&cc.Code,
		&cc.Description,
		&cc.ParentCode,
		&cc.Level,
		&cc.UnitOfMeasure,
		&cc.ExemptionEligible,
		&cc.EffectiveFrom,
		&effectiveTo,
		&cc.Active,
	)
	if err != nil {
		return nil, err
	}
	if effectiveTo.Valid {
		t := effectiveTo.Time
		cc.EffectiveTo = &t
	}
	return &cc, nil
}
