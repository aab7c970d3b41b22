package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mtereshin/medtrack/internal/client/models"
)

// ListReminders returns all reminders for the authenticated user.
func (c *Client) ListReminders(ctx context.Context) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := c.do(ctx, http.MethodGet, "/reminders/", nil, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// GetReminder fetches a single reminder by id.
func (c *Client) GetReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	var reminder models.Reminder
	path := fmt.Sprintf("/reminders/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// CreateReminder submits the wizard's wire payload.
func (c *Client) CreateReminder(ctx context.Context, payload models.ReminderPayload) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := c.do(ctx, http.MethodPost, "/reminders/", payload, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// UpdateReminder replaces a reminder.
func (c *Client) UpdateReminder(ctx context.Context, id int64, payload models.ReminderPayload) (*models.Reminder, error) {
	var reminder models.Reminder
	path := fmt.Sprintf("/reminders/%d/", id)
	if err := c.do(ctx, http.MethodPut, path, payload, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// DeleteReminder removes a reminder.
func (c *Client) DeleteReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/reminders/%d/", id), nil, nil)
}

// ActivateReminder resumes notifications for a paused reminder.
func (c *Client) ActivateReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/reminders/%d/activate/", id), nil, nil)
}

// DeactivateReminder pauses notifications without deleting the schedule.
func (c *Client) DeactivateReminder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/reminders/%d/deactivate/", id), nil, nil)
}

type updateQuantityRequest struct {
	Amount float64 `json:"amount"`
}

// UpdateQuantity records a taken dose; the server decrements the remaining
// quantity and returns the updated reminder.
func (c *Client) UpdateQuantity(ctx context.Context, id int64, amount float64) (*models.Reminder, error) {
	var reminder models.Reminder
	path := fmt.Sprintf("/reminders/%d/update_quantity/", id)
	if err := c.do(ctx, http.MethodPost, path, updateQuantityRequest{Amount: amount}, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// TodaySchedule returns the doses planned for today across all active
// reminders.
func (c *Client) TodaySchedule(ctx context.Context) ([]models.TodayDose, error) {
	var doses []models.TodayDose
	if err := c.do(ctx, http.MethodGet, "/reminders/today_schedule/", nil, &doses); err != nil {
		return nil, err
	}
	return doses, nil
}
