package cart

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
)

// CustomSpec captures the buyer's specification for a made-to-order item.
type CustomSpec struct {
	Measurements string `json:"measurements"`
	Colors       string `json:"colors"`
	Material     string `json:"material"`
	Spec         string `json:"spec"`
}

// Item is a cart line as stored in the session. Prices are not stored;
// they are resolved from the catalog when the cart is displayed or
// checked out.
type Item struct {
	Key       string      `json:"key"`
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Custom    *CustomSpec `json:"custom,omitempty"`
}

// IsCustom reports whether the line is a made-to-order item.
func (i Item) IsCustom() bool { return i.Custom != nil }

// ViewItem is a cart line joined with catalog data for display.
type ViewItem struct {
	Key       string
	ProductID int64
	Name      string
	IsCustom  bool
	Quantity  int
	Price     float64
	Subtotal  float64
	Custom    *CustomSpec
}

var (
	// ErrInsufficientStock indicates the requested quantity exceeds stock.
	ErrInsufficientStock = errors.New("cart: insufficient stock")
	// ErrItemNotFound indicates the cart has no line under the given key.
	ErrItemNotFound = errors.New("cart: item not found")
	// ErrNoSession indicates the request carries no session to store the cart in.
	ErrNoSession = errors.New("cart: session missing")
)

// RegularKey is the cart key for a stock product.
func RegularKey(productID int64) string {
	return fmt.Sprintf("%d", productID)
}

// CustomKey derives a stable cart key from the product and its
// specification, so identical specifications collapse into one line.
func CustomKey(productID int64, spec CustomSpec) string {
	sum := md5.Sum([]byte(spec.Measurements + spec.Colors + spec.Material + spec.Spec))
	return fmt.Sprintf("custom_%d_%s", productID, hex.EncodeToString(sum[:]))
}
