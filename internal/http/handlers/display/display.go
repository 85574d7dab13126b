package display

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/signageops/signage-service/internal/presence"
	"github.com/signageops/signage-service/internal/services/resolver"
	"github.com/signageops/signage-service/internal/services/signals"
	"github.com/signageops/signage-service/internal/types"
	"github.com/signageops/signage-service/internal/utils/response"
)

// Content handles the display polling endpoint. Unattended devices call it
// on a fixed interval and must always receive a resolvable descriptor, so
// this endpoint never errors out due to missing content.
func Content(svc *resolver.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		displayID := r.URL.Query().Get("displayId")
		content := svc.Resolve(displayID)
		response.WriteJSON(w, http.StatusOK, content)
	}
}

// Heartbeat records that a display is alive. Monitoring only; it never
// affects resolution.
func Heartbeat(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.HeartbeatRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		svc.RecordHeartbeat(r.Context(), req.DisplayID, req.ClientTime, req.CurrentContent)
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Heartbeat recorded", nil))
	}
}

// StatusEntry is one display in the monitoring listing.
type StatusEntry struct {
	DisplayID      string    `json:"display_id"`
	LastSeen       time.Time `json:"last_seen"`
	ClientTime     string    `json:"client_time,omitempty"`
	CurrentContent string    `json:"current_content,omitempty"`
}

// Status lists known displays and their last heartbeat, plus the ids the
// presence mirror still considers live when one is configured.
func Status(svc *signals.Service, tracker *presence.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		heartbeats := svc.Heartbeats()
		entries := make([]StatusEntry, 0, len(heartbeats))
		for id, hb := range heartbeats {
			entries = append(entries, StatusEntry{
				DisplayID:      id,
				LastSeen:       hb.LastSeen,
				ClientTime:     hb.ClientTime,
				CurrentContent: hb.CurrentContent,
			})
		}

		data := map[string]interface{}{
			"displays":          entries,
			"broadcast_stopped": svc.IsStopped(),
		}

		if tracker != nil {
			active, err := tracker.Active(r.Context())
			if err != nil {
				slog.Warn("Failed to read presence mirror", slog.String("error", err.Error()))
			} else {
				data["online"] = active
			}
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Display status fetched", data))
	}
}

// GetSettings returns the current display settings
func GetSettings(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{"display_mode": svc.DisplayMode()}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Settings fetched", data))
	}
}

// PutSettings updates the display mode hint passed through to displays
func PutSettings(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DisplaySettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		svc.SetDisplayMode(req.DisplayMode)
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Settings updated", nil))
	}
}

// Reload commands every display to refresh exactly once
func Reload(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at := svc.TriggerReload()
		data := map[string]string{"reload_timestamp": at.Format(time.RFC3339)}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Reload triggered", data))
	}
}

// Stop engages the global broadcast kill-switch
func Stop(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.StopBroadcast()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Broadcast stopped", nil))
	}
}

// Resume releases the global broadcast kill-switch
func Resume(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ResumeBroadcast()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Broadcast resumed", nil))
	}
}
