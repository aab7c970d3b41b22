package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mtereshin/medtrack/internal/client/models"
)

// ListInventory returns inventory items, optionally narrowed to one of the
// server-side projections (low_stock, expired, expiring_soon).
func (c *Client) ListInventory(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	path := "/inventory/"
	if filter != models.FilterAll {
		path = fmt.Sprintf("/inventory/%s/", filter)
	}

	var items []models.InventoryItem
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetInventoryItem fetches a single item by id.
func (c *Client) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d/", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateInventoryItem adds a new stock record.
func (c *Client) CreateInventoryItem(ctx context.Context, payload models.InventoryPayload) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodPost, "/inventory/", payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateInventoryItem replaces a stock record.
func (c *Client) UpdateInventoryItem(ctx context.Context, id int64, payload models.InventoryPayload) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d/", id), payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteInventoryItem removes a stock record.
func (c *Client) DeleteInventoryItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/inventory/%d/", id), nil, nil)
}

type adjustRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// AdjustInventory changes the current quantity by delta (positive or
// negative) and returns the updated item.
func (c *Client) AdjustInventory(ctx context.Context, id int64, delta int, reason string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	path := fmt.Sprintf("/inventory/%d/adjust/", id)
	if err := c.do(ctx, http.MethodPost, path, adjustRequest{Delta: delta, Reason: reason}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
