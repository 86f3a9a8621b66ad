package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"telemarketing/internal/llm"
	"telemarketing/internal/model"
	"telemarketing/internal/prompt"
)

func TestExplainHandler(t *testing.T) {
	router := NewRouter(newTestService(testStore(), nil, &fakeLLM{reply: "Pitch."}, nil), nil)

	body := `{"customer_id":"c-1","objective":"reactivation","channel":"sms"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/explain_customer", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		CustomerID       string `json:"customer_id"`
		RequestID        string `json:"request_id"`
		GeneratedMessage string `json:"generated_message"`
		TopFeatures      []struct {
			Feature string  `json:"feature"`
			Impact  float64 `json:"impact"`
		} `json:"top_features"`
		PricingBand string `json:"pricing_band"`
		Eligible    bool   `json:"eligible"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CustomerID != "c-1" || resp.GeneratedMessage != "Pitch." || resp.RequestID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.TopFeatures) != 2 || resp.TopFeatures[1].Impact != -0.2 {
		t.Fatalf("unexpected top features: %+v", resp.TopFeatures)
	}
	if resp.PricingBand != "B" || !resp.Eligible {
		t.Fatalf("unexpected pricing: %+v", resp)
	}
}

func TestExplainHandler_BadRequests(t *testing.T) {
	router := NewRouter(newTestService(testStore(), nil, &fakeLLM{reply: "x"}, nil), nil)

	cases := map[string]string{
		"malformed":      `{"customer_id":`,
		"missing id":     `{"objective":"loyalty","channel":"sms"}`,
		"no objective":   `{"customer_id":"c-1","channel":"sms"}`,
		"blank channel":  `{"customer_id":"c-1","objective":"loyalty","channel":""}`,
		"empty document": `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/explain_customer", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestExplainHandler_FreeFormObjective(t *testing.T) {
	completer := &fakeLLM{reply: "Pitch."}
	router := NewRouter(newTestService(testStore(), nil, completer, nil), nil)

	body := `{"customer_id":"c-1","objective":"winback_voice","channel":"whatsapp"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/explain_customer", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(completer.user, "Campaign objective: winback_voice. Contact channel: whatsapp.") {
		t.Fatalf("objective and channel not passed through:\n%s", completer.user)
	}
}

func TestExplainHandler_NotFound(t *testing.T) {
	router := NewRouter(newTestService(testStore(), nil, &fakeLLM{}, nil), nil)

	body := `{"customer_id":"nobody","objective":"loyalty","channel":"push"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/explain_customer", strings.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestExplainHandler_Upstream(t *testing.T) {
	completer := &fakeLLM{err: &llm.UpstreamCallError{Status: 429, Err: errors.New("rate limited")}}
	router := NewRouter(newTestService(testStore(), nil, completer, nil), nil)

	body := `{"customer_id":"c-1","objective":"loyalty","channel":"call"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/explain_customer", strings.NewReader(body)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestPromptsHandler(t *testing.T) {
	router := NewRouter(newTestService(testStore(), nil, &fakeLLM{}, nil), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prompts/c-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var p Prompts
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.CustomerID != "c-1" || !strings.Contains(p.User, "Predicted probability of accepting the offer: 82.34%") {
		t.Fatalf("unexpected prompts: %+v", p)
	}
}

func TestHealth(t *testing.T) {
	router := NewRouter(newTestService(testStore(), nil, &fakeLLM{}, nil), nil)

	for _, path := range []string{"/health", "/"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", model.ErrCustomerNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: too few", prompt.ErrInsufficientDriverData), http.StatusUnprocessableEntity},
		{&llm.UpstreamCallError{Err: errors.New("timeout")}, http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusFor(c.err); got != c.want {
			t.Errorf("StatusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
