package leads

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository uses. Declared as
// an interface so tests can substitute pgxmock.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by a pgx pool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const insertLeadQuery = `
	INSERT INTO leads (id, name, email, whatsapp, age_group, course_interest, message,
	    email_consent, whatsapp_consent, utm_source, utm_medium, utm_campaign, utm_content, url_referrer)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING created_at
`

// Insert persists a new row and returns the lead with its assigned ID
// and timestamp.
func (r *PostgresRepository) Insert(ctx context.Context, lead *Lead) (*Lead, error) {
	if !lead.WhatsAppConsent {
		return nil, &StorageError{Kind: StorageOther, Err: errConsentMissing}
	}

	id := uuid.New()
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, insertLeadQuery,
		id,
		lead.Name,
		lead.Email,
		lead.WhatsApp,
		lead.AgeGroup,
		lead.CourseInterest,
		lead.Message,
		lead.EmailConsent,
		lead.WhatsAppConsent,
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.UTMContent,
		lead.ReferrerURL,
	).Scan(&createdAt); err != nil {
		return nil, classifyStorageError(err)
	}

	stored := *lead
	stored.ID = id.String()
	stored.CreatedAt = createdAt
	return &stored, nil
}

// List returns leads newest-first, applying the filter.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Lead, error) {
	query := `
		SELECT id, name, email, whatsapp, age_group, course_interest, message,
		       email_consent, whatsapp_consent, utm_source, utm_medium, utm_campaign,
		       utm_content, url_referrer, created_at
		FROM leads
		WHERE 1=1`
	args := []any{}

	appendArg := func(clause string, value any) {
		args = append(args, value)
		query += strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		appendArg(" AND (name ILIKE ? OR email ILIKE ? OR whatsapp ILIKE ?)", "%"+filter.Search+"%")
	}
	if filter.CourseInterest != "" {
		appendArg(" AND course_interest = ?", filter.CourseInterest)
	}
	if filter.AgeGroup != "" {
		appendArg(" AND age_group = ?", filter.AgeGroup)
	}
	if filter.UTMSource != "" {
		appendArg(" AND utm_source = ?", filter.UTMSource)
	}
	if !filter.DateFrom.IsZero() {
		appendArg(" AND created_at >= ?", filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		appendArg(" AND created_at <= ?", filter.DateTo)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		appendArg(" LIMIT ?", filter.Limit)
	}
	if filter.Offset > 0 {
		appendArg(" OFFSET ?", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyStorageError(err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Email, &l.WhatsApp, &l.AgeGroup, &l.CourseInterest,
			&l.Message, &l.EmailConsent, &l.WhatsAppConsent, &l.UTMSource, &l.UTMMedium,
			&l.UTMCampaign, &l.UTMContent, &l.ReferrerURL, &l.CreatedAt,
		); err != nil {
			return nil, classifyStorageError(err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStorageError(err)
	}
	return out, nil
}

// classifyStorageError maps driver errors onto the operator-facing
// sub-kinds. The end user only ever sees a generic retry message.
func classifyStorageError(err error) *StorageError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return &StorageError{Kind: StorageSchemaMissing, Err: err}
		case "42501": // insufficient_privilege
			return &StorageError{Kind: StoragePermissionDenied, Err: err}
		}
		return &StorageError{Kind: StorageOther, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &StorageError{Kind: StorageConnectivity, Err: err}
	}

	return &StorageError{Kind: StorageOther, Err: err}
}
