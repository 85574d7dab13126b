package media

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/signageops/signage-service/internal/services/catalog"
	"github.com/signageops/signage-service/internal/services/signals"
	"github.com/signageops/signage-service/internal/utils/response"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

// Upload handles a media file upload
func Upload(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart request")))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("file field is required")))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to read upload")))
			return
		}

		item, err := svc.SaveMedia(r.Context(), data, header.Filename, r.FormValue("description"))
		if err != nil {
			if errors.Is(err, catalog.ErrUnsupportedType) || errors.Is(err, catalog.ErrTooLarge) {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Media uploaded successfully", item))
	}
}

// List returns all media items in catalog order
func List(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media fetched successfully", svc.List()))
	}
}

// Get returns a single media item
func Get(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		item, found := svc.Get(id)
		if !found {
			response.NotFound(w, "media")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media fetched successfully", item))
	}
}

// Delete removes a media item, its blob, and every playlist reference to it
func Delete(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if !svc.Delete(r.Context(), id) {
			response.NotFound(w, "media")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media deleted successfully", nil))
	}
}

// Activate sets a media item as the direct-activation override, bypassing
// all scheduling until cleared
func Activate(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		item, found := svc.ActivateMedia(id)
		if !found {
			response.NotFound(w, "media")
			return
		}
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media activated", item))
	}
}

// Deactivate clears the direct-activation override
func Deactivate(svc *signals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.DeactivateMedia()
		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media override cleared", nil))
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid media id")))
		return 0, false
	}
	return id, true
}
