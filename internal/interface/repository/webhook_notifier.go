package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/domain/repository"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/templates"
)

// WebhookAlertNotifier delivers alert trigger events to the external
// dispatcher over HTTP. Fire-and-forget: the engine logs failures and moves
// on, it never retries or rolls back the trigger.
type WebhookAlertNotifier struct {
	logger      logger.Logger
	endpoint    string
	bearerToken string
	client      *http.Client
}

// NewWebhookAlertNotifier creates a new webhook alert notifier
func NewWebhookAlertNotifier(endpoint, bearerToken string, logger logger.Logger) repository.AlertNotifier {
	return &WebhookAlertNotifier{
		logger:      logger,
		endpoint:    endpoint,
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type alertWebhookPayload struct {
	AlertID        string  `json:"alertId"`
	UserRef        string  `json:"userRef"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	TargetPrice    float64 `json:"targetPrice"`
	TriggeredPrice float64 `json:"triggeredPrice"`
	TriggeredAt    string  `json:"triggeredAt"`
	Message        string  `json:"message"`
}

// NotifyTriggered posts the trigger event to the configured endpoint
func (n *WebhookAlertNotifier) NotifyTriggered(ctx context.Context, event *entity.AlertEvent) error {
	if n.endpoint == "" {
		n.logger.Debug("No alert webhook configured, skipping notification",
			"alertId", event.Alert.ID)
		return nil
	}

	payload := alertWebhookPayload{
		AlertID:        event.Alert.ID,
		UserRef:        event.Alert.UserRef,
		Origin:         event.Route.Origin,
		Destination:    event.Route.Destination,
		TargetPrice:    event.Alert.TargetPrice,
		TriggeredPrice: event.TriggeredPrice,
		TriggeredAt:    event.TriggeredAt.UTC().Format(time.RFC3339),
		Message:        templates.AlertMessage(event),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if n.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.bearerToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &entity.ExternalServiceError{Service: "alert-webhook", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return &entity.ExternalServiceError{
			Service: "alert-webhook",
			Err:     fmt.Errorf("webhook returned status %d: %v", resp.StatusCode, errorBody),
		}
	}

	n.logger.Info("Alert notification delivered",
		"alertId", event.Alert.ID,
		"route", event.Route.Key(),
		"triggeredPrice", event.TriggeredPrice)

	return nil
}
