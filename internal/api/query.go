package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pitwall/pitwall/internal/nl2sql"
	"github.com/pitwall/pitwall/internal/observability"
	"github.com/pitwall/pitwall/internal/query"
	"github.com/pitwall/pitwall/internal/sqlguard"
)

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Query   string           `json:"query"`
	SQL     string           `json:"sql"`
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

// handleQuery runs one question through the full pipeline: generate,
// validate, execute, respond. Every failure is converted to the uniform
// error envelope here; nothing downstream retries.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Translator == nil || deps.Engine == nil {
		writeError(w, http.StatusNotImplemented, "query pipeline is not configured", nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(request.Query) == "" {
		writeError(w, http.StatusBadRequest, "query text is required", nil)
		return
	}

	candidate, err := deps.Translator.Translate(r.Context(), request.Query)
	observability.ObserveTranslation(err != nil)
	if err != nil {
		if errors.Is(err, nl2sql.ErrEmptyGeneration) {
			writeError(w, http.StatusInternalServerError, "model produced no usable SQL", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "SQL generation failed", err.Error())
		return
	}

	if err := sqlguard.Validate(candidate); err != nil {
		observability.ObserveValidationRejection(sqlguard.Rules(err))
		writeError(w, http.StatusBadRequest, "generated SQL failed validation", map[string]any{
			"sql":        candidate,
			"violations": strings.Split(err.Error(), "\n"),
		})
		return
	}

	result, err := deps.Engine.Execute(r.Context(), query.Request{SQL: candidate})
	observability.ObserveQueryExecution(result.Duration, err != nil)
	if err != nil {
		var execErr *query.ExecError
		if errors.As(err, &execErr) {
			writeError(w, http.StatusBadRequest, "database rejected the generated query", execErr.Err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "database is unavailable", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Query:   request.Query,
		SQL:     candidate,
		Results: result.Rows,
		Count:   result.Count,
	})
}
