package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/velwu/docker-fin-data/internal/models"
	"github.com/velwu/docker-fin-data/internal/query"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine *query.Engine
}

// NewHandler creates a new Handler
func NewHandler(engine *query.Engine) *Handler {
	return &Handler{engine: engine}
}

// responseInfo carries the error slot present on every response body.
type responseInfo struct {
	Error *string `json:"error"`
}

// recordResponse is the wire shape of one record; dates render as
// YYYY-MM-DD with no time component.
type recordResponse struct {
	ID         int             `json:"id"`
	Symbol     string          `json:"symbol"`
	Date       string          `json:"date"`
	OpenPrice  decimal.Decimal `json:"open_price"`
	ClosePrice decimal.Decimal `json:"close_price"`
	Volume     int64           `json:"volume"`
}

// GetFinancialData handles GET /api/financial_data
func (h *Handler) GetFinancialData(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	req := query.ListRequest{
		StartDate: params.Get("start_date"),
		EndDate:   params.Get("end_date"),
		Symbol:    params.Get("symbol"),
		Limit:     intOrDefault(params.Get("limit"), models.DefaultLimit),
		Page:      intOrDefault(params.Get("page"), models.DefaultPage),
	}

	result, err := h.engine.List(r.Context(), req)
	if err != nil {
		respondError(w, statusForError(err), err)
		return
	}

	data := make([]recordResponse, 0, len(result.Records))
	for _, rec := range result.Records {
		data = append(data, recordResponse{
			ID:         rec.ID,
			Symbol:     rec.Symbol,
			Date:       rec.Date.Format("2006-01-02"),
			OpenPrice:  rec.OpenPrice,
			ClosePrice: rec.ClosePrice,
			Volume:     rec.Volume,
		})
	}

	respondJSON(w, http.StatusOK, struct {
		Data       []recordResponse  `json:"data"`
		Pagination models.Pagination `json:"pagination"`
		Info       responseInfo      `json:"info"`
	}{
		Data:       data,
		Pagination: result.Pagination,
		Info:       responseInfo{},
	})
}

// GetStatistics handles GET /api/statistics
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	req := query.StatsRequest{
		StartDate: params.Get("start_date"),
		EndDate:   params.Get("end_date"),
		Symbol:    params.Get("symbol"),
	}

	result, err := h.engine.Statistics(r.Context(), req)
	if err != nil {
		respondError(w, statusForError(err), err)
		return
	}

	if result == nil {
		// Symbol exists but has no rows in the window: not an error.
		msg := "no data found for the given parameters"
		respondJSON(w, http.StatusOK, struct {
			Data struct{}     `json:"data"`
			Info responseInfo `json:"info"`
		}{Info: responseInfo{Error: &msg}})
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Data *models.StatisticsResult `json:"data"`
		Info responseInfo             `json:"info"`
	}{Data: result, Info: responseInfo{}})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusForError maps the query error taxonomy to HTTP statuses
func statusForError(err error) int {
	switch {
	case errors.Is(err, query.ErrMissingParameter), errors.Is(err, query.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, query.ErrUnknownSymbol):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// intOrDefault parses an integer query parameter, falling back to the
// default when the value is absent or malformed
func intOrDefault(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func respondError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	respondJSON(w, status, struct {
		Data struct{}     `json:"data"`
		Info responseInfo `json:"info"`
	}{Info: responseInfo{Error: &msg}})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
