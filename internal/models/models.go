package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36"    json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SocialLinks is stored as a JSON column; every platform is optional.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Tiktok    string `json:"tiktok,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Website   string `json:"website,omitempty"`
}

type Store struct {
	ID             string       `gorm:"primaryKey;size:36"     json:"id"`
	OwnerID        string       `gorm:"size:36;index;not null" json:"ownerId"`
	Name           string       `gorm:"not null"               json:"name"`
	Slug           string       `gorm:"uniqueIndex;not null"   json:"slug"`
	Description    string       `json:"description"`
	LogoURL        string       `json:"logoUrl"`
	CoverURL       string       `json:"coverUrl"`
	Theme          string       `json:"theme"`
	PrimaryColor   string       `json:"primaryColor"`
	SecondaryColor string       `json:"secondaryColor"`
	BorderRadius   string       `json:"borderRadius"`
	ShadowLevel    int          `json:"shadowLevel"`
	CardSize       string       `json:"cardSize"`
	LayoutMode     string       `json:"layoutMode"`
	WhatsappNumber string       `json:"whatsappNumber"`
	SocialLinks    *SocialLinks `gorm:"serializer:json"        json:"socialLinks"`
	AddressText    string       `json:"addressText"`
	GoogleMapsURL  string       `json:"googleMapsUrl"`
	AboutPage      string       `json:"aboutPage"`
	ContactPage    string       `json:"contactPage"`
	ReturnPage     string       `json:"returnPolicyPage"`
	TermsPage      string       `json:"termsPage"`
	ViewsCount     int64        `json:"viewsCount"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type Category struct {
	ID        string    `gorm:"primaryKey;size:36"                                      json:"id"`
	StoreID   string    `gorm:"size:36;not null;uniqueIndex:idx_categories_store_slug"  json:"storeId"`
	Name      string    `gorm:"not null"                                                json:"name"`
	Slug      string    `gorm:"not null;uniqueIndex:idx_categories_store_slug"          json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductStatus string

const (
	StatusActive     ProductStatus = "ACTIVE"
	StatusNew        ProductStatus = "NEW"
	StatusHot        ProductStatus = "HOT"
	StatusOutOfStock ProductStatus = "OUT_OF_STOCK"
	StatusHidden     ProductStatus = "HIDDEN"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusNew, StatusHot, StatusOutOfStock, StatusHidden:
		return true
	}
	return false
}

type Product struct {
	ID               string        `gorm:"primaryKey;size:36"                                    json:"id"`
	StoreID          string        `gorm:"size:36;not null;uniqueIndex:idx_products_store_slug"  json:"storeId"`
	CategoryID       *string       `gorm:"size:36;index"                                         json:"categoryId"`
	Category         *Category     `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"    json:"category,omitempty"`
	Name             string        `gorm:"not null"                                              json:"name"`
	Slug             string        `gorm:"not null;uniqueIndex:idx_products_store_slug"          json:"slug"`
	ShortDescription string        `json:"shortDescription"`
	Description      string        `json:"description"`
	PriceOriginal    float64       `gorm:"not null"                                              json:"priceOriginal"`
	PriceDiscount    *float64      `json:"priceDiscount"`
	DiscountActive   bool          `json:"discountActive"`
	Status           ProductStatus `gorm:"not null;default:ACTIVE"                               json:"status"`
	ImageMainURL     string        `json:"imageMainUrl"`
	ImageGallery     []string      `gorm:"serializer:json"                                       json:"imageGallery"`
	ViewsCount       int64         `json:"viewsCount"`
	WhatsappClicks   int64         `json:"whatsappClicks"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// EffectivePrice follows the stored rule: an active, set discount wins even
// when it is not lower than the original.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountActive && p.PriceDiscount != nil {
		return *p.PriceDiscount
	}
	return p.PriceOriginal
}

// OnSale additionally requires the discount to undercut the original price;
// it drives the storefront badge, not the price itself.
func (p *Product) OnSale() bool {
	return p.DiscountActive && p.PriceDiscount != nil && *p.PriceDiscount < p.PriceOriginal
}

type BannerType string

const (
	BannerHero   BannerType = "HERO"
	BannerSlider BannerType = "SLIDER"
)

func (t BannerType) Valid() bool {
	return t == BannerHero || t == BannerSlider
}

type Banner struct {
	ID        string     `gorm:"primaryKey;size:36"     json:"id"`
	StoreID   string     `gorm:"size:36;index;not null" json:"storeId"`
	Type      BannerType `gorm:"not null"               json:"type"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle"`
	CtaText   string     `json:"ctaText"`
	CtaLink   string     `json:"ctaLink"`
	ImageURL  string     `json:"imageUrl"`
	Position  int        `json:"position"`
	Active    bool       `gorm:"default:true"           json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ActivityLog rows are append-only; nothing updates or deletes them.
type ActivityLog struct {
	ID        string         `gorm:"primaryKey;size:36"     json:"id"`
	StoreID   string         `gorm:"size:36;index;not null" json:"storeId"`
	UserID    string         `gorm:"size:36;not null"       json:"userId"`
	Action    string         `gorm:"not null"               json:"action"`
	Details   map[string]any `gorm:"serializer:json"        json:"details"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (b *Banner) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
