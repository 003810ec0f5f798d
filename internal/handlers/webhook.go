package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/booking-conversion-relay/internal/capi"
	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
	"github.com/PratikDhanave/booking-conversion-relay/internal/pii"
	"github.com/PratikDhanave/booking-conversion-relay/internal/store"
)

// EventSender delivers conversion events to the primary Conversions API.
type EventSender interface {
	SendEvents(ctx context.Context, events ...models.ConversionEvent) (capi.Result, error)
}

// EventForwarder delivers a copy of a conversion to a secondary endpoint.
type EventForwarder interface {
	Forward(ctx context.Context, ev models.ForwardEvent) error
}

// WebhookDeps are the collaborators of the webhook endpoint.
// Forwarder may be nil; Now and NewID default to the real clock and UUIDs.
type WebhookDeps struct {
	Store     store.MappingStore
	Sender    EventSender
	Forwarder EventForwarder
	Now       func() time.Time
	NewID     func() (uuid.UUID, error)
}

// RegisterWebhookRoutes registers the scheduling-platform endpoint.
//
// POST /ghl-webhook
// - Caller must be authenticated upstream (see auth.WebhookTokenMiddleware)
// - Joins the booking with registered attribution and reports one
//   calendar_appointment conversion
// - The registered entry is consumed: a repeat webhook gets a fresh event id
func RegisterWebhookRoutes(r gin.IRoutes, deps WebhookDeps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewRandom
	}

	r.POST("/ghl-webhook", func(c *gin.Context) {
		payload, err := bindWebhookPayload(c)
		if err != nil {
			if bodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": errBodyTooLarge})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid JSON payload"})
			return
		}

		resp, err := deps.process(c, payload)
		if err != nil {
			slog.Error("ghl-webhook failed", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// bindWebhookPayload decodes the body, treating an empty body as {}.
func bindWebhookPayload(c *gin.Context) (models.WebhookPayload, error) {
	payload := models.WebhookPayload{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return models.WebhookPayload{}, nil
		}
		return nil, err
	}
	if payload == nil {
		// Body was the literal null.
		payload = models.WebhookPayload{}
	}
	return payload, nil
}

func (d WebhookDeps) process(c *gin.Context, payload models.WebhookPayload) (models.WebhookResponse, error) {
	ctx := c.Request.Context()

	appointmentID := payload.AppointmentID()

	var stored models.MappingEntry
	if appointmentID != "" {
		stored, _ = d.Store.Get(ctx, appointmentID)
	}

	eventID := stored.EventID
	if eventID == "" {
		eventID = d.freshEventID()
	}

	userData := buildUserData(payload.Contact(), c.Request.Header)
	customData := buildCustomData(payload, appointmentID, stored)

	result, err := d.Sender.SendEvents(ctx, models.ConversionEvent{
		EventName:    models.EventNameAppointment,
		EventTime:    d.Now().Unix(),
		EventID:      eventID,
		UserData:     userData,
		CustomData:   customData,
		ActionSource: models.ActionSourceWebsite,
	})
	if err != nil {
		return models.WebhookResponse{}, err
	}

	if d.Forwarder != nil {
		var clientID *string
		if stored.ClientID != "" {
			clientID = &stored.ClientID
		}
		err := d.Forwarder.Forward(ctx, models.ForwardEvent{
			EventName:  models.EventNameAppointment,
			EventTime:  d.Now().Unix(),
			EventID:    eventID,
			ClientID:   clientID,
			UserData:   userData,
			CustomData: customData,
		})
		if err != nil {
			slog.Warn("Forward to GTM server failed", "appointment_id", appointmentID, "err", err)
		}
	}

	if appointmentID != "" {
		d.Store.Delete(ctx, appointmentID)
	}

	slog.Info("Webhook processed", "appointment_id", appointmentID, "event_id", eventID, "meta_status", result.Status)
	return models.WebhookResponse{OK: true, MetaStatus: result.Status, MetaResult: result.Body}, nil
}

// freshEventID returns a random UUID, or the current Unix time in
// milliseconds when no random source is available.
func (d WebhookDeps) freshEventID() string {
	id, err := d.NewID()
	if err != nil {
		slog.Warn("Random event id unavailable, using timestamp", "err", err)
		return strconv.FormatInt(d.Now().UnixMilli(), 10)
	}
	return id.String()
}

func buildUserData(contact models.Contact, h http.Header) models.UserData {
	ud := models.UserData{
		Email:     pii.Hash(contact.Email()),
		Phone:     pii.Hash(contact.Phone()),
		FirstName: pii.Hash(contact.FirstName()),
		LastName:  pii.Hash(contact.LastName()),
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		ud.ClientIPAddress = strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	ud.ClientUserAgent = h.Get("User-Agent")
	return ud
}

func buildCustomData(payload models.WebhookPayload, appointmentID string, stored models.MappingEntry) models.CustomData {
	canonical := models.Canonical{}
	if stored.Canonical != nil {
		canonical = *stored.Canonical
	}
	return models.CustomData{
		AppointmentID:    appointmentID,
		CalendarName:     payload.CalendarName(),
		AppointmentStart: payload.StartTime(),
		UTMSource:        canonical.Source,
		UTMMedium:        canonical.Medium,
		UTMCampaign:      canonical.Campaign,
		UTMTerm:          canonical.Term,
		UTMContent:       canonical.Content,
		GCLID:            stored.ClickID("gclid"),
		FBCLID:           stored.ClickID("fbclid"),
	}
}
