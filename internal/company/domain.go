package company

import "time"

// Profile holds the business identity printed on invoices.
type Profile struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	RIF       string    `json:"rif"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SiteConfig holds the storefront landing copy.
type SiteConfig struct {
	ID          int64     `json:"id"`
	HeroTitle   string    `json:"hero_title"`
	HeroMessage string    `json:"hero_message"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Defaults used when the singletons are first created.
const (
	defaultCompanyName = "Abasto"
	defaultHeroTitle   = "Bienvenido a Abasto"
	defaultHeroMessage = "Productos para el hogar y pedidos a tu medida."
)
