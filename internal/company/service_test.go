package company

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	profile *Profile
	config  *SiteConfig
}

func (m *memoryRepository) GetProfile(_ context.Context) (*Profile, error) {
	if m.profile == nil {
		m.profile = &Profile{ID: 1, Name: defaultCompanyName, UpdatedAt: time.Now()}
	}
	cp := *m.profile
	return &cp, nil
}

func (m *memoryRepository) UpdateProfile(_ context.Context, p *Profile) error {
	cp := *p
	cp.UpdatedAt = time.Now()
	m.profile = &cp
	return nil
}

func (m *memoryRepository) GetSiteConfig(_ context.Context) (*SiteConfig, error) {
	if m.config == nil {
		m.config = &SiteConfig{ID: 1, HeroTitle: defaultHeroTitle, HeroMessage: defaultHeroMessage, UpdatedAt: time.Now()}
	}
	cp := *m.config
	return &cp, nil
}

func (m *memoryRepository) UpdateSiteConfig(_ context.Context, c *SiteConfig) error {
	cp := *c
	cp.UpdatedAt = time.Now()
	m.config = &cp
	return nil
}

func TestProfileCreatedLazilyWithDefaults(t *testing.T) {
	svc := NewService(&memoryRepository{}, slog.Default())
	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, defaultCompanyName, p.Name)
	require.Empty(t, p.RIF)
}

func TestUpdateProfileNormalizesRIF(t *testing.T) {
	svc := NewService(&memoryRepository{}, slog.Default())
	p, err := svc.UpdateProfile(context.Background(), " Abasto C.A. ", " j-12345678-9 ", "Av. Bolívar", "0212-5551234")
	require.NoError(t, err)
	require.Equal(t, "Abasto C.A.", p.Name)
	require.Equal(t, "J-12345678-9", p.RIF)
}

func TestSiteConfigRoundTrip(t *testing.T) {
	svc := NewService(&memoryRepository{}, slog.Default())
	ctx := context.Background()

	c, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, defaultHeroTitle, c.HeroTitle)

	updated, err := svc.UpdateSiteConfig(ctx, "Ofertas de agosto", "Todo para tu hogar")
	require.NoError(t, err)
	require.Equal(t, "Ofertas de agosto", updated.HeroTitle)

	again, err := svc.SiteConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ofertas de agosto", again.HeroTitle)
}
