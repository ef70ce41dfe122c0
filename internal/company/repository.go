package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides access to the company singletons. Both rows are
// created lazily on first read.
type Repository interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, p *Profile) error
	GetSiteConfig(ctx context.Context) (*SiteConfig, error)
	UpdateSiteConfig(ctx context.Context, c *SiteConfig) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres-backed company repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) GetProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, rif, address, phone, updated_at
		FROM company_profile ORDER BY id ASC LIMIT 1`).
		Scan(&p.ID, &p.Name, &p.RIF, &p.Address, &p.Phone, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO company_profile (name, rif, address, phone)
			VALUES ($1, '', '', '')
			RETURNING id, name, rif, address, phone, updated_at`, defaultCompanyName).
			Scan(&p.ID, &p.Name, &p.RIF, &p.Address, &p.Phone, &p.UpdatedAt)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgRepository) UpdateProfile(ctx context.Context, p *Profile) error {
	return r.pool.QueryRow(ctx, `
		UPDATE company_profile
		SET name = $1, rif = $2, address = $3, phone = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`,
		p.Name, p.RIF, p.Address, p.Phone, p.ID).Scan(&p.UpdatedAt)
}

func (r *pgRepository) GetSiteConfig(ctx context.Context) (*SiteConfig, error) {
	var c SiteConfig
	err := r.pool.QueryRow(ctx, `
		SELECT id, hero_title, hero_message, updated_at
		FROM site_config ORDER BY id ASC LIMIT 1`).
		Scan(&c.ID, &c.HeroTitle, &c.HeroMessage, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO site_config (hero_title, hero_message)
			VALUES ($1, $2)
			RETURNING id, hero_title, hero_message, updated_at`,
			defaultHeroTitle, defaultHeroMessage).
			Scan(&c.ID, &c.HeroTitle, &c.HeroMessage, &c.UpdatedAt)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgRepository) UpdateSiteConfig(ctx context.Context, c *SiteConfig) error {
	return r.pool.QueryRow(ctx, `
		UPDATE site_config
		SET hero_title = $1, hero_message = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at`,
		c.HeroTitle, c.HeroMessage, c.ID).Scan(&c.UpdatedAt)
}
