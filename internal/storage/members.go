package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hsinyuliao/salonbook/internal/db"
	"github.com/hsinyuliao/salonbook/internal/model"
)

type MemberRepository struct {
	pool *db.Pool
}

func NewMemberRepository(pool *db.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberColumns = `id, role, name, email, password_hash, phone, birthday, line_id, created_at, updated_at`

func scanMember(row pgx.Row) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Role, &m.Name, &m.Email, &m.PasswordHash,
		&m.Phone, &m.Birthday, &m.LineID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// CreateTx inserts a member. The unique index on email is the authoritative
// duplicate check; violations surface via IsConflict.
func (r *MemberRepository) CreateTx(ctx context.Context, tx pgx.Tx, m model.Member) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO members (id, role, name, email, password_hash, phone, birthday, line_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, m.ID, m.Role, m.Name, m.Email, m.PasswordHash, m.Phone, m.Birthday, m.LineID)
	return err
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM members WHERE email = $1
	`, email))
}

func (r *MemberRepository) GetByID(ctx context.Context, id string) (model.Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM members WHERE id = $1
	`, id))
}

func (r *MemberRepository) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+` FROM members ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MemberPatch carries the patchable member fields; nil means not submitted.
// Anything else in a patch request is ignored, never zeroed.
type MemberPatch struct {
	Name     *string
	Birthday *string
	Phone    *string
	LineID   *string
	Email    *string
}

func (p MemberPatch) Empty() bool {
	return p.Name == nil && p.Birthday == nil && p.Phone == nil && p.LineID == nil && p.Email == nil
}

// Update overlays the submitted fields onto the stored record in a single
// statement; COALESCE keeps every unsubmitted column. An email change races
// against other writers only up to the unique index, which settles it.
func (r *MemberRepository) Update(ctx context.Context, id string, p MemberPatch) (model.Member, error) {
	return scanMember(r.pool.QueryRow(ctx, `
		UPDATE members
		SET name = COALESCE($2, name),
			birthday = COALESCE($3, birthday),
			phone = COALESCE($4, phone),
			line_id = COALESCE($5, line_id),
			email = COALESCE($6, email),
			updated_at = now()
		WHERE id = $1
		RETURNING `+memberColumns+`
	`, id, p.Name, p.Birthday, p.Phone, p.LineID, p.Email))
}
