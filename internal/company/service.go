package company

import (
	"context"
	"log/slog"
	"strings"
)

// Service maintains the company profile and storefront configuration.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService builds a company service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Profile returns the company profile, creating it on first access.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	return s.repo.GetProfile(ctx)
}

// UpdateProfile overwrites the company identity fields.
func (s *Service) UpdateProfile(ctx context.Context, name, rif, address, phone string) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx)
	if err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(name)
	p.RIF = strings.ToUpper(strings.TrimSpace(rif))
	p.Address = strings.TrimSpace(address)
	p.Phone = strings.TrimSpace(phone)
	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("company profile updated", "name", p.Name)
	return p, nil
}

// SiteConfig returns the landing copy, creating it on first access.
func (s *Service) SiteConfig(ctx context.Context) (*SiteConfig, error) {
	return s.repo.GetSiteConfig(ctx)
}

// UpdateSiteConfig overwrites the landing copy.
func (s *Service) UpdateSiteConfig(ctx context.Context, heroTitle, heroMessage string) (*SiteConfig, error) {
	c, err := s.repo.GetSiteConfig(ctx)
	if err != nil {
		return nil, err
	}
	c.HeroTitle = strings.TrimSpace(heroTitle)
	c.HeroMessage = strings.TrimSpace(heroMessage)
	if err := s.repo.UpdateSiteConfig(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
