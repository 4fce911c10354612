package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/markmullin/investors-daily-brief-v2-sub011/internal/briefing"
)

// Version is stamped by the build; the CLI shares it.
var Version = "dev"

// defaultMacroSeries is the market-context panel's standard set: GDP,
// inflation, unemployment, the 10-year yield, and the fed funds rate.
var defaultMacroSeries = []string{"GDP", "CPIAUCSL", "UNRATE", "DGS10", "FEDFUNDS"}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": Version,
	})
}

func (s *Server) handleFinancials(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	result, err := s.svc.Financials(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuality(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	result, err := s.svc.Financials(r.Context(), ticker)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ticker":       result.Ticker,
		"data_quality": result.DataQuality,
	})
}

type batchRequest struct {
	Tickers []string `json:"tickers"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers must not be empty")
		return
	}

	results, err := s.svc.BatchFinancials(r.Context(), req.Tickers)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleMacro(w http.ResponseWriter, r *http.Request) {
	series := defaultMacroSeries
	if q := r.URL.Query().Get("series"); q != "" {
		series = nil
		for _, id := range strings.Split(q, ",") {
			if id = strings.TrimSpace(id); id != "" {
				series = append(series, strings.ToUpper(id))
			}
		}
	}
	if len(series) == 0 {
		writeError(w, http.StatusBadRequest, "series must not be empty")
		return
	}

	limit := 24
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := s.svc.Macro(r.Context(), series, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": result})
}

func (s *Server) handleFilings(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	filings, err := s.svc.Filings(r.Context(), ticker, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"filings": filings})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.svc.Registry().List(),
	})
}

// writeServiceError maps service errors onto HTTP statuses: bad input 400,
// unknown ticker 404, upstream trouble 502.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var invalid *briefing.InvalidTickerError
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var notFound *briefing.TickerNotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Printf("upstream error: %v", err)
	writeError(w, http.StatusBadGateway, "upstream data source unavailable")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
