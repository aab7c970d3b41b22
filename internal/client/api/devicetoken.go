package api

import (
	"context"
	"net/http"
)

type deviceTokenRequest struct {
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
}

// RegisterDeviceToken associates a push-messaging token with this device so
// the backend can target it.
func (c *Client) RegisterDeviceToken(ctx context.Context, token, deviceID string) error {
	req := deviceTokenRequest{Token: token, DeviceID: deviceID}
	return c.do(ctx, http.MethodPost, "/notifications/device-token/", req, nil)
}

// UnregisterDeviceToken removes the device's token, typically on logout.
func (c *Client) UnregisterDeviceToken(ctx context.Context, token, deviceID string) error {
	req := deviceTokenRequest{Token: token, DeviceID: deviceID}
	return c.do(ctx, http.MethodDelete, "/notifications/device-token/", req, nil)
}
