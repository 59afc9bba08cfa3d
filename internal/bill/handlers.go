package bill

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	maxUploadSize = 20 << 20
	maxShareSize  = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "SplitBill API is running.")
}

// handleScanReceipt reads the uploaded "image" field and returns its text and parsed result
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.logger.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Image is too large. Maximum size is 20MB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("image")
	if err != nil {
		s.logger.Error("Error getting image from form", "error", err)
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Error("Error reading image data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to extract text")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExt(header.Filename)
	}

	result, err := s.service.ScanReceipt(r.Context(), data, strings.ToLower(strings.TrimSpace(contentType)))
	if err != nil {
		s.logger.Error("Error extracting text", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to extract text")
		return
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

type shareRequest struct {
	BillData json.RawMessage `json:"billData"`
	People   json.RawMessage `json:"people"`
}

// handleShareBill stores a split bill and returns its ID
func (s *Server) handleShareBill(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxShareSize)).Decode(&req); err != nil {
		s.logger.Error("Error decoding share request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bill, err := s.service.ShareBill(req.BillData, req.People)
	if err != nil {
		s.logger.Error("Error sharing bill", "error", err)
		if errors.Is(err, ErrInvalidBill) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to share bill")
		return
	}

	if err := writeJSON(w, http.StatusCreated, map[string]string{"id": bill.ID}); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}

// handleGetSharedBill returns a stored bill
func (s *Server) handleGetSharedBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.service.GetSharedBill(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrBillNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		s.logger.Error("Error fetching shared bill", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch shared bill")
		return
	}

	if err := writeJSON(w, http.StatusOK, bill); err != nil {
		s.logger.Error("Error encoding response", "error", err)
	}
}
