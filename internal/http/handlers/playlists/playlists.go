package playlists

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/signageops/signage-service/internal/services/playlists"
	"github.com/signageops/signage-service/internal/types"
	"github.com/signageops/signage-service/internal/utils/response"
)

// Create handles creating a new playlist
func Create(svc *playlists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		pl := svc.Create(req)
		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Playlist created successfully", pl))
	}
}

// Update replaces a playlist's name, description and items
func Update(svc *playlists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}

		pl, found := svc.Update(id, req)
		if !found {
			response.NotFound(w, "playlist")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Playlist updated successfully", pl))
	}
}

// List returns all playlists with live media attached to their items
func List(svc *playlists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Playlists fetched successfully", svc.List()))
	}
}

// Get returns a single playlist
func Get(svc *playlists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		pl, found := svc.Get(id)
		if !found {
			response.NotFound(w, "playlist")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Playlist fetched successfully", pl))
	}
}

// Delete removes a playlist
func Delete(svc *playlists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if !svc.Delete(id) {
			response.NotFound(w, "playlist")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Playlist deleted successfully", nil))
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (types.PlaylistRequest, bool) {
	var req types.PlaylistRequest

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
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid playlist id")))
		return 0, false
	}
	return id, true
}
