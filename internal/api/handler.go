// Package api is the persistence service the ledger UI mirrors to: it
// stores transactions in SQLite and lists them back for export.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/middleware/trace"
	"ledger/internal/mirror"
	"ledger/internal/storage"
)

const (
	maxBodyBytes = 64 << 10
	listCacheKey = "transactions"
	// StatusRecorded is the status returned for a stored transaction.
	StatusRecorded = "recorded"
)

// Recorder is the transaction service behind the handlers.
type Recorder interface {
	Record(ctx context.Context, tx core.Transaction) (string, error)
	List(ctx context.Context) ([]storage.StoredTransaction, error)
}

type TransactionHandler struct {
	service Recorder
	cache   *cache.LRU[[]TransactionResponse]
	logger  *log.Logger
}

// NewTransactionHandler wires the handler. listCache may be nil to disable
// caching of GET /transactions.
func NewTransactionHandler(service Recorder, listCache *cache.LRU[[]TransactionResponse], logger *log.Logger) *TransactionHandler {
	if logger == nil {
		logger = log.Discard()
	}
	return &TransactionHandler{
		service: service,
		cache:   listCache,
		logger:  logger.WithComponent(log.ComponentAPI),
	}
}

// CreateTransaction stores the posted transaction and answers 201 with its id.
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := trace.RequestID(ctx)

	var rec mirror.Record
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		h.logger.WarnContext(ctx, "Invalid request body", log.FieldRequestID, requestID, log.FieldError, err)
		h.sendError(w, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	tx, err := rec.Transaction()
	if err != nil {
		h.logger.WarnContext(ctx, "Transaction rejected", log.FieldRequestID, requestID, log.FieldError, err)
		h.sendError(w, "Invalid transaction", err.Error(), http.StatusBadRequest, requestID)
		return
	}

	id, err := h.service.Record(ctx, tx)
	if err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			h.logger.WarnContext(ctx, "Transaction rejected", log.FieldRequestID, requestID, log.FieldError, err)
			h.sendError(w, "Invalid transaction", err.Error(), http.StatusBadRequest, requestID)
			return
		}
		h.logger.ErrorContext(ctx, "Unexpected error in create transaction", log.FieldRequestID, requestID, log.FieldError, err)
		h.sendError(w, "Internal server error",
			"An unexpected error occurred while creating the transaction", http.StatusInternalServerError, requestID)
		return
	}

	if h.cache != nil {
		h.cache.Delete(listCacheKey)
	}

	h.logger.InfoContext(ctx, "Transaction created", log.FieldRequestID, requestID, log.FieldRecordID, id)
	writeJSON(w, http.StatusCreated, CreateTransactionResponse{ID: id, Status: StatusRecorded})
}

// ListTransactions returns every stored transaction in insertion order.
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := trace.RequestID(ctx)

	if h.cache != nil {
		if cached, ok := h.cache.Get(listCacheKey); ok {
			h.logger.DebugContext(ctx, "List served from cache", log.FieldRecords, len(cached))
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	stored, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Unexpected error in list transactions", log.FieldRequestID, requestID, log.FieldError, err)
		h.sendError(w, "Internal server error",
			"An unexpected error occurred while listing transactions", http.StatusInternalServerError, requestID)
		return
	}

	resp := make([]TransactionResponse, 0, len(stored))
	for _, st := range stored {
		resp = append(resp, TransactionResponse{
			ID:          st.ID,
			Date:        st.Transaction.Date.ISO(),
			Description: st.Transaction.Description,
			Amount:      json.Number(st.Transaction.Amount.String()),
			Type:        string(st.Transaction.Type),
			SyncStatus:  st.SyncStatus,
		})
	}

	if h.cache != nil {
		h.cache.Set(listCacheKey, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers the transaction routes on r.
func (h *TransactionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
}

func (h *TransactionHandler) sendError(w http.ResponseWriter, message, description string, status int, requestID string) {
	writeJSON(w, status, ErrorResponse{
		Error:       message,
		Status:      status,
		Description: description,
		RequestID:   requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
