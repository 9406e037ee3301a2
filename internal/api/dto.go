package api

import "encoding/json"

// CreateTransactionResponse is returned by POST /transactions.
type CreateTransactionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TransactionResponse is one element of GET /transactions. Dates are ISO
// (YYYY-MM-DD).
type TransactionResponse struct {
	ID          string      `json:"id"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	SyncStatus  string      `json:"sync_status"`
}

type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
