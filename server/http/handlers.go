package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jimyoyo0329/socagent/record"
)

type annotatedRow struct {
	Note         string  `json:"note"`
	QueryText    string  `json:"query_text"`
	Similarity   float64 `json:"similarity"`
	ExemplarNote string  `json:"exemplar_note,omitempty"`
}

// handleAnnotate takes a CSV table in the request body, generates a note
// per row, and returns the per-row results.
func (s *httpServer) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	table, err := record.ReadCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	topK := queryInt(r, "top_k", 3)
	threshold := queryFloat(r, "threshold", 0.5)

	results, err := s.annotate.Annotate(r.Context(), table, topK, threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	rows := make([]annotatedRow, len(results))
	for i, res := range results {
		rows[i] = annotatedRow{
			Note:         res.Note,
			QueryText:    res.QueryText,
			Similarity:   res.Similarity,
			ExemplarNote: res.ExemplarNote,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *httpServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	summaries, err := s.router.Answer(r.Context(), req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"summaries": summaries})
}

func (s *httpServer) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	hits, err := s.lookup.Lookup(r.Context(), req.Field, req.Value, req.Limit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); len(v) > 0 {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); len(v) > 0 {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
