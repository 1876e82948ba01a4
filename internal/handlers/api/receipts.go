package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lojatax/api/internal/ledger"
	"github.com/lojatax/api/internal/observability"
	"github.com/lojatax/api/internal/render"
	"github.com/lojatax/api/internal/services/receipt"
)

// NumberSource allocates receipt numbers.
type NumberSource interface {
	Next(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// TransactionStore is the slice of the ledger the receipt flow needs.
type TransactionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (ledger.Transaction, error)
	SetReceiptNumber(ctx context.Context, id uuid.UUID, receiptNumber string) error
}

// ReceiptHandler issues receipt numbers and renders receipts.
type ReceiptHandler struct {
	sequencer    NumberSource
	transactions TransactionStore
	profiles     ProfileReader
	businessZone *time.Location
	logger       *slog.Logger
}

// NewReceiptHandler creates a receipt handler.
func NewReceiptHandler(sequencer NumberSource, transactions TransactionStore, profiles ProfileReader, businessZone *time.Location, logger *slog.Logger) *ReceiptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReceiptHandler{
		sequencer:    sequencer,
		transactions: transactions,
		profiles:     profiles,
		businessZone: businessZone,
		logger:       logger,
	}
}

// RegisterRoutes registers all receipt routes on the given mux.
func (h *ReceiptHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/receipts", h.IssueReceipt)
	mux.HandleFunc("GET /api/v1/receipts/{id}/qr", h.GetQR)
}

type issueReceiptRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

type issueReceiptResponse struct {
	ReceiptNumber string `json:"receipt_number"`
	Receipt       string `json:"receipt"`
}

// IssueReceipt handles POST /api/v1/receipts. It allocates the next
// number for the tenant's current year, attaches it to the transaction,
// and returns the printable receipt. A sequencer failure is a 502 and
// no number is ever fabricated in its place.
func (h *ReceiptHandler) IssueReceipt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	var req issueReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "transaction_id is required"})
		return
	}

	tx, err := h.transactions.GetByID(r.Context(), req.TransactionID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorJSON{Error: "transaction not found"})
			return
		}
		h.queryError(w, err)
		return
	}
	if tx.TenantID != tenantID {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "transaction not found"})
		return
	}
	if tx.ReceiptNumber != nil && *tx.ReceiptNumber != "" {
		writeJSON(w, http.StatusConflict, errorJSON{Error: "transaction already has a receipt number"})
		return
	}

	number, err := h.sequencer.Next(r.Context(), tenantID)
	if err != nil {
		// The increment may or may not have happened server-side; a
		// blind retry could skip or double-issue, so fail this attempt.
		h.logger.Error("receipt sequencer failed", "error", err, "tenant_id", tenantID.String())
		observability.IncReceiptFailure()
		writeJSON(w, http.StatusBadGateway, errorJSON{Error: "receipt numbering unavailable"})
		return
	}

	if err := h.transactions.SetReceiptNumber(r.Context(), tx.ID, number); err != nil {
		h.logger.Error("attaching receipt number", "error", err, "receipt_number", number)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}
	observability.IncReceiptIssued()

	profile, err := h.profiles.GetProfile(r.Context(), tenantID)
	if err != nil {
		h.logger.Error("loading business profile", "error", err, "tenant_id", tenantID.String())
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, issueReceiptResponse{
		ReceiptNumber: number,
		Receipt:       render.Receipt(profile, tx, number, h.businessZone),
	})
}

// GetQR handles GET /api/v1/receipts/{id}/qr. The id is the
// transaction id; the transaction must already carry a receipt number.
func (h *ReceiptHandler) GetQR(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFrom(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorJSON{Error: "invalid transaction id"})
		return
	}

	tx, err := h.transactions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorJSON{Error: "transaction not found"})
			return
		}
		h.queryError(w, err)
		return
	}
	if tx.TenantID != tenantID {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "transaction not found"})
		return
	}
	if tx.ReceiptNumber == nil || *tx.ReceiptNumber == "" {
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "transaction has no receipt number"})
		return
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	png, err := receipt.QRPNG(tenantID, *tx.ReceiptNumber, size)
	if err != nil {
		h.logger.Error("encoding receipt QR", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *ReceiptHandler) queryError(w http.ResponseWriter, err error) {
	if errors.Is(err, ledger.ErrQueryFailed) {
		h.logger.Error("ledger query failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "ledger temporarily unavailable"})
		return
	}
	h.logger.Error("loading transaction", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorJSON{Error: "internal server error"})
}
