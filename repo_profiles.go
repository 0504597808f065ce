package users

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Profiles interface {
	repository.Repository[*Profile]

	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetOrCreateByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error)
	Patch(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error)
	PatchTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, patch ProfilePatch) (*Profile, error)
}

type profilesRepo struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles                        = (*profilesRepo)(nil)
	_ repository.Repository[*Profile] = (*profilesRepo)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &profilesRepo{
		Repository: repo,
		db:         db,
	}
}

func (a *profilesRepo) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return a.GetOrCreateByUserIDTx(ctx, a.db, userID)
}

// GetOrCreateByUserIDTx returns the profile for a user, creating an empty
// one on first access. Profiles are lazy, registration does not create them.
func (a *profilesRepo) GetOrCreateByUserIDTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (*Profile, error) {
	record := &Profile{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err == nil {
		return record, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record = &Profile{
		ID:     uuid.New(),
		UserID: userID,
	}

	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *profilesRepo) Patch(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*Profile, error) {
	return a.PatchTx(ctx, a.db, userID, patch)
}

// PatchTx applies a partial update on top of the current profile record,
// creating the profile first if the user never touched it.
func (a *profilesRepo) PatchTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, patch ProfilePatch) (*Profile, error) {
	record, err := a.GetOrCreateByUserIDTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if patch.IsZero() {
		return record, nil
	}

	patch.Apply(record)

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
}
