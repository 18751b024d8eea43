package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wardenbot/warden/warden/database/models"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

const cacheSize = 2048

var ErrInfractionNotFound = errors.New("infraction not found")

// InfractionFilter narrows GetByUser results. Nil fields mean "no filter".
type InfractionFilter struct {
	Type   *models.InfractionType
	Active *bool
}

type InfractionRepository interface {
	Create(ctx context.Context, infraction *models.Infraction) error
	GetByID(ctx context.Context, id int64) (*models.Infraction, error)
	GetByUser(ctx context.Context, userID string, filter InfractionFilter) ([]*models.Infraction, error)
	GetAllActive(ctx context.Context, typ *models.InfractionType) ([]*models.Infraction, error)
	GetDeactivatedSince(ctx context.Context, since time.Time) ([]*models.Infraction, error)
	SetInactive(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type infractionRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewInfractionRepository(db *bun.DB) InfractionRepository {
	cache, _ := lru.New(cacheSize)
	return &infractionRepository{
		db:    db,
		cache: cache,
	}
}

func (r *infractionRepository) Create(ctx context.Context, infraction *models.Infraction) error {
	// bun writes the generated id back into the model, which makes the
	// insert usable transactionally with the immediately following lookup.
	if _, err := r.db.NewInsert().
		Model(infraction).
		Returning("id").
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert infraction: %w", err)
	}

	r.cache.Add(infraction.ID, infraction)
	return nil
}

func (r *infractionRepository) GetByID(ctx context.Context, id int64) (*models.Infraction, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached.(*models.Infraction), nil
	}

	infraction := new(models.Infraction)
	err := r.db.NewSelect().
		Model(infraction).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInfractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get infraction %d: %w", id, err)
	}

	r.cache.Add(id, infraction)
	return infraction, nil
}

func (r *infractionRepository) GetByUser(ctx context.Context, userID string, filter InfractionFilter) ([]*models.Infraction, error) {
	var infractions []*models.Infraction
	q := r.db.NewSelect().
		Model(&infractions).
		Where("user_id = ?", userID)

	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list infractions for user %s: %w", userID, err)
	}
	return infractions, nil
}

func (r *infractionRepository) GetAllActive(ctx context.Context, typ *models.InfractionType) ([]*models.Infraction, error) {
	var infractions []*models.Infraction
	q := r.db.NewSelect().
		Model(&infractions).
		Where("active = ?", true)

	if typ != nil {
		q = q.Where("type = ?", *typ)
	}

	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list active infractions: %w", err)
	}
	return infractions, nil
}

// GetDeactivatedSince lists records whose active flag was cleared at or
// after the given instant. Rows deactivated before the column existed have
// a NULL deactivated_at and are excluded.
func (r *infractionRepository) GetDeactivatedSince(ctx context.Context, since time.Time) ([]*models.Infraction, error) {
	var infractions []*models.Infraction
	err := r.db.NewSelect().
		Model(&infractions).
		Where("active = ?", false).
		Where("deactivated_at >= ?", since).
		Order("deactivated_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deactivated infractions: %w", err)
	}
	return infractions, nil
}

// SetInactive clears the active flag and stamps the deactivation time.
// Idempotent: deactivating an already inactive record affects zero rows,
// keeps the original timestamp and is not an error.
func (r *infractionRepository) SetInactive(ctx context.Context, id int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Infraction)(nil)).
		Set("active = ?", false).
		Set("deactivated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to deactivate infraction %d: %w", id, err)
	}

	r.cache.Remove(id)
	return nil
}

func (r *infractionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*models.Infraction)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete infraction %d: %w", id, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrInfractionNotFound
	}

	r.cache.Remove(id)
	return nil
}
