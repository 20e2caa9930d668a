package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	uploadField     = "files"
	multipartMemory = 32 << 20

	msgMediaList     = "Media fetched successfully"
	msgMediaUploaded = "Media uploaded successfully"
	msgMediaUpdated  = "Media updated successfully"
	msgMediaDeleted  = "Media deleted successfully"
	msgNothingToDo   = "Nothing to update"
	msgUploadTooBig  = "File size exceeds the maximum allowed limit."
)

// maxUploadBody bounds a whole multipart request.
const maxUploadBody = services.MaxFilesPerCall*services.MaxFileSize + 1<<20

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	items, err := h.media.List(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgMediaList, toMediaResponses(items))
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	files, err := readUploads(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.media.Upload(r.Context(), user, files)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, msgMediaUploaded, toMediaResponses(items))
}

func (h *Handler) getMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	m, err := h.media.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgMediaList, toMediaResponse(m))
}

func (h *Handler) updateMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var req updateMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Name == nil && req.AltText == nil {
		h.writeError(w, r, common.BadRequest(msgNothingToDo))
		return
	}

	m, err := h.media.Update(r.Context(), user.ID, chi.URLParam(r, "id"), req.AltText, req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgMediaUpdated, toMediaResponse(m))
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	m, err := h.media.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, msgMediaDeleted, toMediaResponse(m))
}

// readUploads loads the files of a multipart request into memory. Count,
// type and size rules are left to services.ValidateFiles.
func readUploads(w http.ResponseWriter, r *http.Request) ([]services.UploadFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, common.BadRequest(msgUploadTooBig)
		}
		return nil, common.BadRequest(msgInvalidBody).Wrap(err)
	}

	headers := r.MultipartForm.File[uploadField]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > services.MaxFileSize {
			return nil, common.BadRequest(msgUploadTooBig)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, services.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	if err := services.ValidateFiles(files); err != nil {
		return nil, err
	}
	return files, nil
}
