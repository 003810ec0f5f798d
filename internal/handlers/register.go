package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/booking-conversion-relay/internal/models"
	"github.com/PratikDhanave/booking-conversion-relay/internal/store"
)

const (
	errRegisterRequired = "appointment_id & event_id required"
	errBodyTooLarge     = "request entity too large"
)

// bodyTooLarge reports whether a bind failed on the request body limit.
func bodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// RegisterRegistrationRoutes registers the browser-facing endpoint.
//
// POST /register_event
// - Public (CORS enabled); called from the booking page before submit
// - Stores attribution for appointment_id, replacing any previous entry
func RegisterRegistrationRoutes(r gin.IRoutes, st store.MappingStore, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	r.POST("/register_event", func(c *gin.Context) {
		var req models.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if bodyTooLarge(err) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": errBodyTooLarge})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": errRegisterRequired})
			return
		}

		appointmentID := req.AppointmentID
		eventID := req.EventID
		if appointmentID == "" || eventID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": errRegisterRequired})
			return
		}

		entry := models.MappingEntry{
			EventID:    eventID,
			ClientID:   req.ClientID,
			UTM:        req.UTM,
			Canonical:  req.Canonical,
			ReceivedAt: now(),
		}
		if err := st.Put(c.Request.Context(), appointmentID, entry); err != nil {
			slog.Error("register_event failed", "appointment_id", appointmentID, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
			return
		}

		slog.Debug("Attribution registered", "appointment_id", appointmentID, "event_id", eventID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
}
