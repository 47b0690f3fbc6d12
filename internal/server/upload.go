package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ruminaider/salon-sync/internal/assets"
	"github.com/ruminaider/salon-sync/internal/response"
	"go.uber.org/zap"
)

const multipartMemory = 1 << 20

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			response.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		response.Error(w, http.StatusBadRequest, "failed to read file")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	asset, err := s.assets.Save(r.Context(), header.Filename, file)
	if errors.Is(err, assets.ErrUnsupportedType) {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("storing upload", zap.String("filename", header.Filename), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	response.JSON(w, http.StatusOK, asset)
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	// multipart wraps some read errors without %w.
	return strings.Contains(err.Error(), "request body too large")
}
