package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"telemarketing/internal/llm"
	"telemarketing/internal/logger"
	"telemarketing/internal/model"
	"telemarketing/internal/prompt"
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter mounts the assistant API.
func NewRouter(svc *Service, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/explain_customer", ExplainHandler(svc, log))
	mux.HandleFunc("GET /api/v1/prompts/{customer_id}", PromptsHandler(svc, log))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"service": "telemarketing-assistant"})
	})
	return mux
}

func ExplainHandler(svc *Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExplainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		resp, err := svc.Explain(r.Context(), req)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func PromptsHandler(svc *Service, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Prompts(r.Context(), r.PathValue("customer_id"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	var upErr *llm.UpstreamCallError
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, model.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, prompt.ErrInsufficientDriverData):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
