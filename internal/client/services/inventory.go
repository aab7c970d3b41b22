package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/common"
)

// InventoryAPI is the backend surface the inventory service needs.
type InventoryAPI interface {
	ListInventory(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, payload models.InventoryPayload) (*models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id int64, payload models.InventoryPayload) (*models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int64) error
	AdjustInventory(ctx context.Context, id int64, delta int, reason string) (*models.InventoryItem, error)
}

// InventoryService mirrors ReminderService for the stock screens.
type InventoryService struct {
	api     InventoryAPI
	actions *Tracker
}

func NewInventoryService(api InventoryAPI) *InventoryService {
	return &InventoryService{api: api, actions: NewTracker()}
}

func (s *InventoryService) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	return s.api.ListInventory(ctx, filter)
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*models.InventoryItem, error) {
	return s.api.GetInventoryItem(ctx, id)
}

func (s *InventoryService) Create(ctx context.Context, payload models.InventoryPayload) (*models.InventoryItem, error) {
	if err := ValidateInventoryDraft(payload); err != nil {
		return nil, err
	}
	return s.api.CreateInventoryItem(ctx, payload)
}

// DraftFromItem seeds an edit draft from the loaded entity.
func DraftFromItem(item *models.InventoryItem) models.InventoryPayload {
	return models.InventoryPayload{
		MedicineName:    item.MedicineName,
		MedicineType:    item.MedicineType,
		CurrentQuantity: item.CurrentQuantity,
		Unit:            item.Unit,
		ExpiryDate:      item.ExpiryDate,
		PurchaseDate:    item.PurchaseDate,
		Price:           item.Price,
		Supplier:        item.Supplier,
		Notes:           item.Notes,
	}
}

// ValidateInventoryDraft checks client-side invariants before a save.
func ValidateInventoryDraft(draft models.InventoryPayload) error {
	if strings.TrimSpace(draft.MedicineName) == "" {
		return fmt.Errorf("%w: medicine name must not be empty", common.ErrValidation)
	}
	if draft.CurrentQuantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", common.ErrValidation)
	}
	return nil
}

// Save validates, updates and re-fetches the item so the caller sees
// server-confirmed state.
func (s *InventoryService) Save(ctx context.Context, id int64, draft models.InventoryPayload) (*models.InventoryItem, error) {
	if err := ValidateInventoryDraft(draft); err != nil {
		return nil, err
	}
	if _, err := s.api.UpdateInventoryItem(ctx, id, draft); err != nil {
		return nil, err
	}
	return s.api.GetInventoryItem(ctx, id)
}

// Pending reports the in-flight one-shot action for an item, if any.
func (s *InventoryService) Pending(id int64) (string, bool) {
	return s.actions.Pending(id)
}

// Delete removes a stock record under the per-item guard.
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	if !s.actions.Begin(id, "delete") {
		return ErrActionPending
	}
	defer s.actions.End(id)
	return s.api.DeleteInventoryItem(ctx, id)
}

// Adjust changes the quantity by delta under the per-item guard.
func (s *InventoryService) Adjust(ctx context.Context, id int64, delta int, reason string) (*models.InventoryItem, error) {
	if !s.actions.Begin(id, "adjust") {
		return nil, ErrActionPending
	}
	defer s.actions.End(id)
	return s.api.AdjustInventory(ctx, id, delta, reason)
}
