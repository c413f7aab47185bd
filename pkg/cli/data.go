package cli

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mchmarny/cardiocheck/pkg/data"
	"github.com/mchmarny/cardiocheck/pkg/patient"
)

const (
	summaryDaysDefault = 30
	summaryDaysMax     = 3650
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) predictAPIHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, serverMaxBodyBytes)

	var rec patient.Record
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields()
	if err := d.Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	in, err := rec.Input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	norm, err := in.Normalize()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.predictor.Predict(r.Context(), norm)
	if err != nil {
		if patient.IsInvalid(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("prediction failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInferenceFailed)
		return
	}

	s.recordVerdict(res.Verdict)
	writeJSON(w, http.StatusOK, res)
}

func (s *server) summaryAPIHandler(w http.ResponseWriter, r *http.Request) {
	days := queryParamInt(r, "d", summaryDaysDefault)
	if days < 0 || days > summaryDaysMax {
		writeError(w, http.StatusBadRequest, "invalid days")
		return
	}
	since := time.Now().AddDate(0, 0, -days)

	if s.db == nil {
		writeJSON(w, http.StatusOK, &data.Summary{
			Since:  since.UTC().Format(time.DateOnly),
			Counts: map[string]int64{},
		})
		return
	}

	sum, err := data.GetSummary(s.db, since)
	if err != nil {
		slog.Error("failed to get verdict summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func queryParamInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return i
}
