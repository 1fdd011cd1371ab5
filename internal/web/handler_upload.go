package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/wardrobe/internal/apperr"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing
// standard (and therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// readImage pulls the "image" field out of a multipart upload and sniffs its
// type. The declared content type is ignored.
func (s *Server) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize+1024*1024)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", apperr.Validation("image too large", map[string]string{"image": "exceeds upload limit"})
		}
		return nil, "", apperr.Validation("failed to parse form", nil)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, "", apperr.Validation("image file required", map[string]string{"image": "required"})
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		return nil, "", apperr.Validation("unsupported image format", map[string]string{"image": "must be JPEG, PNG, GIF or WebP"})
	}
	return imageData, mimeType, nil
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	imageData, mimeType, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	item, err := s.svc.Clothes.UploadPhoto(r.Context(), id, imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reader, mimeType, err := s.svc.Clothes.Photo(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "clothing_id", id, "error", err)
	}
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Clothes.RemovePhoto(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSuggest returns attributes guessed from an uploaded photo. Nothing
// is stored; the client prefills its form with the result.
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, err := s.readImage(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	suggestion, err := s.svc.Clothes.Suggest(r.Context(), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
