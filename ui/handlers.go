package ui

import (
	"encoding/json"
	"net/http"
	"strconv"

	"riskhypo/domain/core"
	"riskhypo/internal/errors"
	"riskhypo/internal/report"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (a *App) latestReport(w http.ResponseWriter) (*report.Report, bool) {
	result, _ := a.current()
	if result == nil || result.Report == nil {
		writeError(w, http.StatusNotFound, "no report available yet")
		return nil, false
	}
	return result.Report, true
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, _ := a.current()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"has_report":  result != nil,
		"persistence": a.repo != nil,
	})
}

func (a *App) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.latestReport(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := rep.WriteJSON(w); err != nil {
		a.logger.Error("writing report json: %v", err)
	}
}

func (a *App) handleReportCSV(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.latestReport(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	if err := rep.WriteCSV(w); err != nil {
		a.logger.Error("writing report csv: %v", err)
	}
}

func (a *App) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := a.latestReport(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	if err := rep.WriteXLSX(w); err != nil {
		a.logger.Error("writing report xlsx: %v", err)
	}
}

func (a *App) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	result, _ := a.current()
	if result == nil || result.Report == nil {
		http.Error(w, "no report available yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(result.Report.HTML())
}

func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	_, profiles := a.current()
	if profiles == nil {
		writeError(w, http.StatusNotFound, "no dataset loaded yet")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

type skippedJSON struct {
	Hypothesis string `json:"hypothesis"`
	Reason     string `json:"reason"`
}

func (a *App) handleSkipped(w http.ResponseWriter, r *http.Request) {
	result, _ := a.current()
	if result == nil {
		writeError(w, http.StatusNotFound, "no report available yet")
		return
	}
	out := []skippedJSON{}
	for _, ev := range result.Skipped() {
		out = append(out, skippedJSON{Hypothesis: ev.Hypothesis.Name, Reason: ev.SkipReason})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := a.repo.ListRuns(r.Context(), limit)
	if err != nil {
		a.logger.Error("listing runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if a.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence is not configured")
		return
	}
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	rep, err := a.repo.Get(r.Context(), runID)
	if err != nil {
		status := errors.HTTPStatus(err)
		if status == http.StatusNotFound || core.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		a.logger.Error("loading run %s: %v", runID, err)
		writeError(w, status, "failed to load run")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := rep.WriteJSON(w); err != nil {
		a.logger.Error("writing run json: %v", err)
	}
}
