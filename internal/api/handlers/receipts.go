package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/domain"
)

// ScanReceipt handles POST /api/receipts/scan. The body is either the raw
// image, typed by its Content-Type, or JSON {"gcs_uri": "gs://..."}.
func (h *Handler) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	image, err := h.receiptImage(r)
	if err != nil {
		h.writeErr(w, "ScanReceipt", err)
		return
	}

	draft, err := h.session.ScanReceipt(r.Context(), image)
	if err != nil {
		h.writeErr(w, "ScanReceipt", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"draft": draft})
}

func (h *Handler) receiptImage(r *http.Request) (ai.ReceiptImage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req struct {
			GCSURI string `json:"gcs_uri"`
		}
		if err := decodeJSON(r, &req); err != nil {
			return ai.ReceiptImage{}, err
		}
		if h.receipts == nil {
			return ai.ReceiptImage{}, fmt.Errorf("%w: receipt storage is not configured", domain.ErrInvalidInput)
		}
		return h.receipts.FetchReceipt(r.Context(), req.GCSURI)
	}

	if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
		return ai.ReceiptImage{}, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidInput, mediaType)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return ai.ReceiptImage{}, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidInput, err)
	}
	if len(data) > maxBodyBytes {
		return ai.ReceiptImage{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxBodyBytes)
	}
	return ai.ReceiptImage{Data: data, MIMEType: mediaType}, nil
}
