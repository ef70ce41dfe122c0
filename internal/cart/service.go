package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/abasto/abasto/internal/catalog"
	"github.com/abasto/abasto/internal/shared"
)

const sessionKey = "cart"

// ProductProvider resolves catalog data for cart lines.
type ProductProvider interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	IsCustomCategory(ctx context.Context, categoryID *int64) (bool, error)
}

// Service keeps the shopping cart in the session store.
type Service struct {
	products ProductProvider
	logger   *slog.Logger
}

// NewService builds a cart service on top of the catalog.
func NewService(products ProductProvider, logger *slog.Logger) *Service {
	return &Service{products: products, logger: logger}
}

// Add puts a stock product in the cart or increases its quantity. The
// combined quantity is checked against available stock.
func (s *Service) Add(ctx context.Context, sess *shared.Session, productID int64, quantity int) error {
	if sess == nil {
		return ErrNoSession
	}
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	items := s.load(sess)
	key := RegularKey(productID)
	current := 0
	if existing, ok := items[key]; ok {
		current = existing.Quantity
	}
	if current+quantity > product.Quantity {
		return fmt.Errorf("%w: %d available", ErrInsufficientStock, product.Quantity)
	}
	items[key] = Item{Key: key, ProductID: productID, Quantity: current + quantity}
	s.store(sess, items)
	return nil
}

// AddCustom puts a made-to-order line in the cart. Quantity is fixed at
// one and identical specifications collapse into the existing line.
func (s *Service) AddCustom(ctx context.Context, sess *shared.Session, productID int64, spec CustomSpec) error {
	if sess == nil {
		return ErrNoSession
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	custom, err := s.products.IsCustomCategory(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	if !custom {
		return fmt.Errorf("product %d does not accept custom specifications", productID)
	}
	spec.Measurements = strings.TrimSpace(spec.Measurements)
	spec.Colors = strings.TrimSpace(spec.Colors)
	spec.Material = strings.TrimSpace(spec.Material)
	spec.Spec = strings.TrimSpace(spec.Spec)

	items := s.load(sess)
	key := CustomKey(productID, spec)
	if _, ok := items[key]; !ok {
		items[key] = Item{Key: key, ProductID: productID, Quantity: 1, Custom: &spec}
	}
	s.store(sess, items)
	return nil
}

// UpdateQuantity changes the quantity of a stock line. Custom lines stay
// at quantity one. A quantity of zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sess *shared.Session, key string, quantity int) error {
	if sess == nil {
		return ErrNoSession
	}
	items := s.load(sess)
	item, ok := items[key]
	if !ok {
		return ErrItemNotFound
	}
	if quantity <= 0 {
		delete(items, key)
		s.store(sess, items)
		return nil
	}
	if item.IsCustom() {
		return nil
	}
	product, err := s.products.GetProduct(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if quantity > product.Quantity {
		return fmt.Errorf("%w: %d available", ErrInsufficientStock, product.Quantity)
	}
	item.Quantity = quantity
	items[key] = item
	s.store(sess, items)
	return nil
}

// Remove drops a line from the cart.
func (s *Service) Remove(sess *shared.Session, key string) error {
	if sess == nil {
		return ErrNoSession
	}
	items := s.load(sess)
	if _, ok := items[key]; !ok {
		return ErrItemNotFound
	}
	delete(items, key)
	s.store(sess, items)
	return nil
}

// Clear empties the cart.
func (s *Service) Clear(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.Delete(sessionKey)
}

// Count returns the number of lines in the cart.
func (s *Service) Count(sess *shared.Session) int {
	if sess == nil {
		return 0
	}
	return len(s.load(sess))
}

// Lines returns the raw cart lines in stable order.
func (s *Service) Lines(sess *shared.Session) []Item {
	if sess == nil {
		return nil
	}
	items := s.load(sess)
	lines := make([]Item, 0, len(items))
	for _, item := range items {
		lines = append(lines, item)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key < lines[j].Key })
	return lines
}

// Items joins the cart lines with catalog names and prices. Custom lines
// carry a zero price until an operator fixes one at order processing.
// Lines whose product no longer exists are dropped from the cart.
func (s *Service) Items(ctx context.Context, sess *shared.Session) ([]ViewItem, float64, error) {
	if sess == nil {
		return nil, 0, ErrNoSession
	}
	items := s.load(sess)
	view := make([]ViewItem, 0, len(items))
	total := 0.0
	dirty := false
	for _, item := range s.Lines(sess) {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			s.logger.Warn("dropping cart line with missing product", "product_id", item.ProductID)
			delete(items, item.Key)
			dirty = true
			continue
		}
		price := product.Price
		if item.IsCustom() {
			price = 0
		}
		subtotal := price * float64(item.Quantity)
		view = append(view, ViewItem{
			Key:       item.Key,
			ProductID: item.ProductID,
			Name:      product.Name,
			IsCustom:  item.IsCustom(),
			Quantity:  item.Quantity,
			Price:     price,
			Subtotal:  subtotal,
			Custom:    item.Custom,
		})
		total += subtotal
	}
	if dirty {
		s.store(sess, items)
	}
	return view, total, nil
}

func (s *Service) load(sess *shared.Session) map[string]Item {
	raw := sess.Get(sessionKey)
	if raw == "" {
		return map[string]Item{}
	}
	var items map[string]Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("resetting unreadable cart", slog.Any("error", err))
		return map[string]Item{}
	}
	return items
}

func (s *Service) store(sess *shared.Session, items map[string]Item) {
	if len(items) == 0 {
		sess.Delete(sessionKey)
		return
	}
	raw, _ := json.Marshal(items)
	sess.Set(sessionKey, string(raw))
}
