package models

import "time"

// InventoryItem is one medicine stock record as returned by the inventory
// endpoints. The derived flags (low stock, expired, expiring soon) are
// computed server-side and treated as read-only here.
type InventoryItem struct {
	ID              int64     `json:"id"`
	MedicineName    string    `json:"medicine_name"`
	MedicineType    string    `json:"medicine_type"`
	CurrentQuantity int       `json:"current_quantity"`
	Unit            string    `json:"unit"`
	ExpiryDate      string    `json:"expiry_date,omitempty"`
	PurchaseDate    string    `json:"purchase_date,omitempty"`
	Price           *float64  `json:"price,omitempty"`
	Supplier        string    `json:"supplier,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	IsLowStock      bool      `json:"is_low_stock"`
	IsExpired       bool      `json:"is_expired"`
	IsExpiringSoon  bool      `json:"is_expiring_soon"`
	ReminderName    string    `json:"reminder_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InventoryPayload is the create/update body for POST|PUT /inventory/.
type InventoryPayload struct {
	MedicineName    string   `json:"medicine_name"`
	MedicineType    string   `json:"medicine_type"`
	CurrentQuantity int      `json:"current_quantity"`
	Unit            string   `json:"unit"`
	ExpiryDate      string   `json:"expiry_date,omitempty"`
	PurchaseDate    string   `json:"purchase_date,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Supplier        string   `json:"supplier,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// InventoryFilter selects a server-side list projection.
type InventoryFilter string

const (
	FilterAll          InventoryFilter = ""
	FilterLowStock     InventoryFilter = "low_stock"
	FilterExpired      InventoryFilter = "expired"
	FilterExpiringSoon InventoryFilter = "expiring_soon"
)
