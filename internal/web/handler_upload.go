package web

import (
	"errors"
	"io"
	"net/http"
)

const maxImageSize = 20 * 1024 * 1024 // 20 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
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

// readOptionalImage pulls the "image" part from an already-parsed multipart
// form. A missing part is fine; anything present must sniff as an accepted
// image format. On failure it writes the error response and returns ok=false.
func (s *Server) readOptionalImage(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", true
		}
		s.writeBadRequest(w, "invalid image upload")
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	data, err = io.ReadAll(file)
	if err != nil {
		s.logger.Error("read upload failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "failed to read file"})
		return nil, "", false
	}

	mimeType, sniffed := allowedImageMIME(data)
	if !sniffed {
		s.writeBadRequest(w, "unsupported image format")
		return nil, "", false
	}
	return data, mimeType, true
}

// readRequiredImage is readOptionalImage for endpoints where the image part
// is mandatory.
func (s *Server) readRequiredImage(w http.ResponseWriter, r *http.Request) (data []byte, mimeType string, ok bool) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		s.writeBadRequest(w, "failed to parse form")
		return
	}

	data, mimeType, ok = s.readOptionalImage(w, r)
	if ok && data == nil {
		s.writeBadRequest(w, "image file required")
		return nil, "", false
	}
	return
}

func (s *Server) handleGetItemImage(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseID(r)
	if err != nil {
		s.writeBadRequest(w, "invalid item id")
		return
	}

	reader, mimeType, err := s.shop.GetItemImage(r.Context(), itemID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "image reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write image failed", "item_id", itemID, "error", err)
	}
}

func (s *Server) handleGetBanner(w http.ResponseWriter, r *http.Request) {
	reader, mimeType, err := s.shop.GetBanner(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "banner reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write banner failed", "error", err)
	}
}

func (s *Server) handleSetBanner(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readRequiredImage(w, r)
	if !ok {
		return
	}

	if _, err := s.shop.SetBanner(r.Context(), imageData, mimeType); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"imageUrl": "/api/banner"})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	imageData, mimeType, ok := s.readRequiredImage(w, r)
	if !ok {
		return
	}

	suggestions, err := s.shop.SuggestFromPhoto(r.Context(), imageData, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]map[string]string, 0, len(suggestions))
	for _, sg := range suggestions {
		out = append(out, map[string]string{
			"name":     sg.Name,
			"category": sg.Category,
			"notes":    sg.Notes,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}
