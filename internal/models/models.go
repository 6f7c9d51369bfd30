package models

import (
	"time"
)

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
	Slug string `gorm:"unique;not null"          json:"slug"`
}

type Subcategory struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"                json:"id"`
	CategoryID uint   `gorm:"index;not null;uniqueIndex:idx_cat_name" json:"category_id"`
	Name       string `gorm:"not null;uniqueIndex:idx_cat_name"       json:"name"`
	Slug       string `gorm:"unique;not null"                         json:"slug"`
}

type Product struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU            string    `gorm:"column:sku;unique;not null" json:"sku"`
	Name           string    `gorm:"not null"                 json:"name"`
	Description    string    `json:"description"`
	CategoryID     uint      `gorm:"index;not null"           json:"category_id"`
	SubcategoryID  *uint     `gorm:"index"                    json:"subcategory_id"`
	UnitPrice      float64   `gorm:"not null"                 json:"unit_price"`
	Rating         *float64  `json:"rating"`
	QuantityOnHand uint      `gorm:"default:0"                json:"quantity_on_hand"`
	ReorderQty     uint      `gorm:"default:0"                json:"reorder_quantity"`
	IsActive       bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	Email        string `gorm:"index"                    json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
	IsActive     bool   `gorm:"default:true"             json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type CustomerProfile struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null"     json:"user_id"`
	Age               uint      `json:"age"`
	Gender            string    `json:"gender"`
	EmploymentStatus  string    `json:"employment_status"`
	Occupation        string    `json:"occupation"`
	Education         string    `json:"education"`
	HouseholdSize     uint      `json:"household_size"`
	HasChildren       bool      `json:"has_children"`
	MonthlyIncomeSGD  float64   `gorm:"column:monthly_income_sgd" json:"monthly_income_sgd"`
	PreferredLabel    string    `json:"preferred_category_label"`
	PreferredCategory *uint     `gorm:"index"                    json:"preferred_category_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type Basket struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *uint     `gorm:"index"                    json:"user_id"`
	SessionKey  string    `gorm:"index"                    json:"session_key"`
	IsConverted bool      `gorm:"default:false"            json:"is_converted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BasketItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"                     json:"id"`
	BasketID  uint    `gorm:"index;not null;uniqueIndex:idx_basket_product" json:"basket_id"`
	ProductID uint    `gorm:"not null;uniqueIndex:idx_basket_product"       json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"                    json:"quantity"`
	UnitPrice float64 `gorm:"not null"                                      json:"unit_price"`
}

type Order struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BasketID    uint      `gorm:"uniqueIndex;not null"     json:"basket_id"`
	UserID      *uint     `gorm:"index"                    json:"user_id"`
	OrderNumber string    `gorm:"unique;not null"          json:"order_number"`
	Total       float64   `gorm:"not null"                 json:"total"`
	Status      string    `gorm:"not null"                 json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
	Quantity  uint    `gorm:"not null"                 json:"quantity"`
	UnitPrice float64 `gorm:"not null"                 json:"unit_price"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                    json:"id"`
	ProductID uint      `gorm:"index;not null;uniqueIndex:idx_product_user" json:"product_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_product_user"       json:"user_id"`
	Rating    int       `gorm:"not null"                                    json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckoutState carries the checkout wizard between requests. One row per
// basket, replaced on every step.
type CheckoutState struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BasketID    uint   `gorm:"uniqueIndex;not null"     json:"basket_id"`
	ShippingJSON string `gorm:"column:shipping_json"    json:"-"`
	PaymentJSON  string `gorm:"column:payment_json"     json:"-"`
}

type ModelArtifact struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string    `gorm:"unique;not null"          json:"code"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	ModelType   string    `gorm:"not null"                 json:"model_type"`
	FilePath    string    `gorm:"not null"                 json:"file_path"`
	Version     string    `gorm:"default:1.0.0"            json:"version"`
	TrainedAt   time.Time `json:"trained_at"`
	CreatedAt   time.Time `json:"created_at"`
}
