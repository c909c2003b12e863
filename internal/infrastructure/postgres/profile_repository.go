package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/materiales-portal/internal/domain/entity"
	"github.com/jhoicas/materiales-portal/internal/domain/repository"
)

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

const profileColumns = `id, owner_identity_id, name, email, phone, COALESCE(company, ''), created_at, updated_at`

// ProfileRepo implementación de ProfileRepository. Todas las operaciones corren con la identidad fijada.
type ProfileRepo struct {
	tx *TxRunner
}

// NewProfileRepository construye el adaptador.
func NewProfileRepository(tx *TxRunner) *ProfileRepo {
	return &ProfileRepo{tx: tx}
}

// FindByOwner obtiene el perfil de la identidad; domain.ErrNotFound si no tiene.
func (r *ProfileRepo) FindByOwner(ctx context.Context, identityID string) (*entity.CustomerProfile, error) {
	query := `SELECT ` + profileColumns + `
		FROM customer_profiles WHERE owner_identity_id = $1
		ORDER BY created_at LIMIT 1`
	var p *entity.CustomerProfile
	err := r.tx.RunAs(ctx, identityID, func(q Querier) error {
		var err error
		p, err = scanProfile(q.QueryRow(ctx, query, identityID))
		return err
	})
	if err != nil {
		return nil, classify("find profile", err)
	}
	return p, nil
}

// Create inserta el perfil y devuelve la fila insertada.
func (r *ProfileRepo) Create(ctx context.Context, identityID string, draft entity.ProfileDraft) (*entity.CustomerProfile, error) {
	query := `
		INSERT INTO customer_profiles (id, owner_identity_id, name, email, phone, company, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $7)
		RETURNING ` + profileColumns
	now := time.Now().UTC()
	var p *entity.CustomerProfile
	err := r.tx.RunAs(ctx, identityID, func(q Querier) error {
		var err error
		p, err = scanProfile(q.QueryRow(ctx, query,
			uuid.New().String(), identityID, draft.Name, draft.Email, draft.Phone, draft.Company, now,
		))
		return err
	})
	if err != nil {
		return nil, classify("insert profile", err)
	}
	return p, nil
}

// Update aplica el patch; los campos nil conservan su valor actual. Devuelve la fila actualizada.
func (r *ProfileRepo) Update(ctx context.Context, identityID, profileID string, patch entity.ProfilePatch) (*entity.CustomerProfile, error) {
	query := `
		UPDATE customer_profiles SET
			name       = COALESCE($3::text, name),
			email      = COALESCE($4::text, email),
			phone      = COALESCE($5::text, phone),
			company    = CASE WHEN $6::text IS NULL THEN company ELSE NULLIF($6::text, '') END,
			updated_at = $7
		WHERE id = $1 AND owner_identity_id = $2
		RETURNING ` + profileColumns
	var p *entity.CustomerProfile
	err := r.tx.RunAs(ctx, identityID, func(q Querier) error {
		var err error
		p, err = scanProfile(q.QueryRow(ctx, query,
			profileID, identityID, patch.Name, patch.Email, patch.Phone, patch.Company, time.Now().UTC(),
		))
		return err
	})
	if err != nil {
		return nil, classify("update profile", err)
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*entity.CustomerProfile, error) {
	var p entity.CustomerProfile
	if err := row.Scan(&p.ID, &p.OwnerIdentityID, &p.Name, &p.Email, &p.Phone, &p.Company, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
