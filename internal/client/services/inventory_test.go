package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtereshin/medtrack/internal/client/models"
	"github.com/mtereshin/medtrack/internal/common"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

type fakeInventoryAPI struct {
	items map[int64]*models.InventoryItem

	lastFilter  models.InventoryFilter
	updateCalls int
	getCalls    int

	lastDelta  int
	lastReason string
}

func newFakeInventoryAPI() *fakeInventoryAPI {
	return &fakeInventoryAPI{items: make(map[int64]*models.InventoryItem)}
}

func (f *fakeInventoryAPI) ListInventory(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	f.lastFilter = filter
	out := make([]models.InventoryItem, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, *it)
	}
	return out, nil
}

func (f *fakeInventoryAPI) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	f.getCalls++
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeInventoryAPI) CreateInventoryItem(ctx context.Context, payload models.InventoryPayload) (*models.InventoryItem, error) {
	id := int64(len(f.items) + 1)
	it := &models.InventoryItem{ID: id, MedicineName: payload.MedicineName, CurrentQuantity: payload.CurrentQuantity}
	f.items[id] = it
	cp := *it
	return &cp, nil
}

func (f *fakeInventoryAPI) UpdateInventoryItem(ctx context.Context, id int64, payload models.InventoryPayload) (*models.InventoryItem, error) {
	f.updateCalls++
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	it.MedicineName = payload.MedicineName
	it.CurrentQuantity = payload.CurrentQuantity
	cp := *it
	return &cp, nil
}

func (f *fakeInventoryAPI) DeleteInventoryItem(ctx context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

func (f *fakeInventoryAPI) AdjustInventory(ctx context.Context, id int64, delta int, reason string) (*models.InventoryItem, error) {
	f.lastDelta = delta
	f.lastReason = reason
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	it.CurrentQuantity += delta
	cp := *it
	return &cp, nil
}

func TestValidateInventoryDraft(t *testing.T) {
	tests := []struct {
		name    string
		draft   models.InventoryPayload
		wantErr bool
	}{
		{
			name:  "valid",
			draft: models.InventoryPayload{MedicineName: "Vitamin D", MedicineType: "tablet", CurrentQuantity: 60, Unit: "pcs"},
		},
		{
			name:    "blank name",
			draft:   models.InventoryPayload{MedicineName: "  ", CurrentQuantity: 10},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			draft:   models.InventoryPayload{MedicineName: "Vitamin D", CurrentQuantity: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInventoryDraft(tt.draft)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInventoryService_List_PassesFilterThrough(t *testing.T) {
	fake := newFakeInventoryAPI()
	svc := NewInventoryService(fake)

	_, err := svc.List(context.Background(), models.FilterLowStock)
	require.NoError(t, err)
	assert.Equal(t, models.FilterLowStock, fake.lastFilter)
}

func TestInventoryService_Save_RefetchesServerState(t *testing.T) {
	fake := newFakeInventoryAPI()
	fake.items[1] = &models.InventoryItem{ID: 1, MedicineName: "Old", CurrentQuantity: 5}
	svc := NewInventoryService(fake)

	draft := models.InventoryPayload{MedicineName: "Vitamin D", MedicineType: "tablet", CurrentQuantity: 60, Unit: "pcs"}
	saved, err := svc.Save(context.Background(), 1, draft)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.updateCalls)
	assert.Equal(t, 1, fake.getCalls)
	assert.Equal(t, "Vitamin D", saved.MedicineName)
}

func TestInventoryService_Create_RejectsInvalidDraft(t *testing.T) {
	fake := newFakeInventoryAPI()
	svc := NewInventoryService(fake)

	_, err := svc.Create(context.Background(), models.InventoryPayload{MedicineName: ""})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, fake.items)
}

func TestInventoryService_Adjust(t *testing.T) {
	fake := newFakeInventoryAPI()
	fake.items[1] = &models.InventoryItem{ID: 1, MedicineName: "Vitamin D", CurrentQuantity: 10}
	svc := NewInventoryService(fake)

	it, err := svc.Adjust(context.Background(), 1, -3, "taken")
	require.NoError(t, err)
	assert.Equal(t, 7, it.CurrentQuantity)
	assert.Equal(t, -3, fake.lastDelta)
	assert.Equal(t, "taken", fake.lastReason)

	_, busy := svc.Pending(1)
	assert.False(t, busy)
}

func TestInventoryService_DraftFromItem(t *testing.T) {
	price := 12.5
	item := &models.InventoryItem{
		ID:              7,
		MedicineName:    "Vitamin D",
		MedicineType:    "capsule",
		CurrentQuantity: 90,
		Unit:            "pcs",
		ExpiryDate:      "2027-01-01",
		Price:           &price,
		IsLowStock:      true,
	}

	draft := DraftFromItem(item)
	assert.Equal(t, "Vitamin D", draft.MedicineName)
	assert.Equal(t, 90, draft.CurrentQuantity)
	assert.Equal(t, "2027-01-01", draft.ExpiryDate)
	require.NotNil(t, draft.Price)
	assert.Equal(t, 12.5, *draft.Price)
}
