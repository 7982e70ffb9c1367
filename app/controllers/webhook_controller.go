package controllers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vitrinelabs/vitrine/app/models"
	"github.com/vitrinelabs/vitrine/app/repository"
	"github.com/vitrinelabs/vitrine/internal/pkg/mercadopago"
)

var webhookSecret string

// SetWebhookSecret installs the Mercado Pago webhook secret resolved at
// startup.
func SetWebhookSecret(secret string) {
	webhookSecret = secret
}

// mpNotification is the body Mercado Pago posts to webhook endpoints.
type mpNotification struct {
	ID     json.Number `json:"id"`
	Action string      `json:"action"`
	Type   string      `json:"type"`
	Data   struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// HandleMercadoPagoWebhook receives payment notifications. Every event is
// stored before processing; duplicates of a successfully processed event
// short-circuit, and processing failures return 5xx so the provider
// retries the delivery.
func HandleMercadoPagoWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	var notification mpNotification
	if err := json.Unmarshal(rawBody, &notification); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	dataID := notification.Data.ID.String()
	if dataID == "" {
		dataID = strings.TrimSpace(c.Query("data.id"))
	}
	eventID := notification.ID.String()
	if eventID == "" {
		eventID = strings.TrimSpace(c.Query("id"))
	}
	if eventID == "" {
		// Some notification formats omit a delivery id; fall back to the
		// payment id plus action so replays still deduplicate.
		eventID = dataID + ":" + notification.Action
	}

	signatureValid := mercadopago.VerifyWebhookSignature(
		c.Get("x-signature"),
		c.Get("x-request-id"),
		dataID,
		webhookSecret,
	)

	events := repository.GetGlobalFactory().GetWebhookEventRepository()
	created, stored, err := events.CreateIfNotExists(&models.PaymentWebhookEvent{
		Provider:        models.PaymentProviderMercadoPago,
		ProviderEventID: eventID,
		EventType:       notification.Action,
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
		}
		// Redelivery of an event whose first processing did not complete.
		// Fall through and process it again so a transient failure does
		// not swallow the notification.
	}
	if !signatureValid {
		_ = events.MarkProcessed(stored.ID, "invalid webhook signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if notification.Type != "payment" || dataID == "" {
		_ = events.MarkProcessed(stored.ID, "")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := checkoutService.HandlePaymentWebhook(ctx, dataID)
	if err != nil {
		_ = events.MarkProcessed(stored.ID, err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}
	if !outcome.Found {
		// The notification can arrive before the provider payment id has
		// been persisted locally. Leave the event unfinished and answer
		// 5xx so the provider redelivers once the row exists.
		_ = events.MarkProcessed(stored.ID, "payment not found")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "payment_not_found"})
	}
	_ = events.MarkProcessed(stored.ID, "")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "action": outcome.Action})
}
