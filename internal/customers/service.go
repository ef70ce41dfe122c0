package customers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Service implements customer lookup and maintenance rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService builds a customer service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, validate: validator.New(), logger: logger}
}

// Create validates and stores a new customer.
func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	c := &Customer{
		Name:           strings.TrimSpace(req.Name),
		Identification: normalizeIdentification(req.Identification),
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches a customer by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of customers matching an optional search term.
func (s *Service) List(ctx context.Context, search string, page, limit int) ([]Customer, int, error) {
	return s.repo.List(ctx, search, page, limit)
}

// Update validates and persists customer changes.
func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Identification = normalizeIdentification(req.Identification)
	c.Phone = req.Phone
	c.Email = req.Email
	c.Address = req.Address
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// FindByIdentification looks a customer up by cédula or RIF.
func (s *Service) FindByIdentification(ctx context.Context, identification string) (*Customer, error) {
	return s.repo.FindByIdentification(ctx, identification)
}

// FindOrCreate resolves a customer by identification first, then by exact
// name, creating one when neither matches. Contact details refresh the
// record when it already exists but lacks them.
func (s *Service) FindOrCreate(ctx context.Context, req UpsertRequest) (*Customer, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Identification != nil && strings.TrimSpace(*req.Identification) != "" {
		c, err := s.repo.FindByIdentification(ctx, *req.Identification)
		if err == nil {
			return s.refreshContact(ctx, c, req)
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	c, err := s.repo.FindByName(ctx, strings.TrimSpace(req.Name))
	if err == nil {
		return s.refreshContact(ctx, c, req)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	created, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer created from order flow", "customer_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) refreshContact(ctx context.Context, c *Customer, req UpsertRequest) (*Customer, error) {
	changed := false
	if c.Identification == nil && req.Identification != nil && strings.TrimSpace(*req.Identification) != "" {
		c.Identification = normalizeIdentification(req.Identification)
		changed = true
	}
	if c.Phone == nil && req.Phone != nil {
		c.Phone = req.Phone
		changed = true
	}
	if c.Email == nil && req.Email != nil {
		c.Email = req.Email
		changed = true
	}
	if c.Address == nil && req.Address != nil {
		c.Address = req.Address
		changed = true
	}
	if changed {
		if err := s.repo.Update(ctx, c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func normalizeIdentification(id *string) *string {
	if id == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*id))
	if normalized == "" {
		return nil
	}
	return &normalized
}
