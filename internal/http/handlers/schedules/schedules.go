package schedules

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/signageops/signage-service/internal/services/schedules"
	"github.com/signageops/signage-service/internal/types"
	"github.com/signageops/signage-service/internal/utils/response"
)

// Create handles creating a new schedule
func Create(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		sch, err := svc.Create(req)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Schedule created successfully", sch))
	}
}

// Update replaces an existing schedule
func Update(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		sch, found, err := svc.Update(id, req)
		if !found {
			response.NotFound(w, "schedule")
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Schedule updated successfully", sch))
	}
}

// List returns the full schedule table
func List(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Schedules fetched successfully", svc.List()))
	}
}

// Get returns a single schedule
func Get(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		sch, found := svc.Get(id)
		if !found {
			response.NotFound(w, "schedule")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Schedule fetched successfully", sch))
	}
}

// Delete removes a schedule
func Delete(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if !svc.Delete(id) {
			response.NotFound(w, "schedule")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Schedule deleted successfully", nil))
	}
}

// ToggleActive flips a schedule on or off without deleting it
func ToggleActive(svc *schedules.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		var req types.ToggleActiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		sch, found := svc.ToggleActive(id, req.IsActive)
		if !found {
			response.NotFound(w, "schedule")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Schedule toggled successfully", sch))
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (types.ScheduleRequest, bool) {
	var req types.ScheduleRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
		return req, false
	} else if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
			return req, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	return req, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid schedule id")))
		return 0, false
	}
	return id, true
}
