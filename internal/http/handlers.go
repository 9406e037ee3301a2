package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"ledger/internal/core"
	"ledger/internal/csvexport"
	"ledger/internal/ledger"
	"ledger/internal/log"
)

type indexData struct {
	Today      string
	Currencies []string
	View       ledger.View
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := indexData{
		Today:      core.Today().ISO(),
		Currencies: s.currencies,
		View:       s.ledger.View(),
	}
	body, err := s.render("index.html", data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleAddTransaction always answers with the refreshed ledger and asks the
// client to clear the form, whether or not the input was accepted.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Parse request body error", log.FieldError, err)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	in := ledger.Input{
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Type:        p.Get("type"),
		Date:        p.Get("date"),
	}
	if _, err := s.ledger.Add(r.Context(), in); err != nil {
		s.logger.InfoContext(r.Context(), "Entry ignored", log.FieldError, err)
	}

	s.writeLedger(w, r, NewHTMXResponse().TriggerFormReset())
}

func (s *Server) handleCurrency(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	if err := s.ledger.SetCurrency(p.Get("currency")); err != nil {
		s.logger.WarnContext(r.Context(), "Currency not changed", log.FieldError, err)
	}

	s.writeLedger(w, r, NewHTMXResponse())
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	s.writeLedger(w, r, NewHTMXResponse())
}

func (s *Server) writeLedger(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	body, err := s.render("ledger.html", s.ledger.View())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Ledger template execution failed", log.FieldError, err)
		InternalServerError("render failed").Write(w)
		return
	}
	resp.BodyHTML(body).Write(w)
}

// handleExport streams the mirror's transactions as CSV. On any failure the
// response is a bare 502 so the browser saves nothing.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := s.exporter.Export(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Export failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	s.logger.InfoContext(r.Context(), "Export served",
		log.FieldOperation, log.OpExport,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"bytes", len(data))

	w.Header().Set("Content-Type", csvexport.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvexport.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok"}
	status, code := "ready", http.StatusOK

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"checks":   checks,
		"requests": s.tracer.Metrics().TotalRequests,
	})
}

func (s *Server) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
