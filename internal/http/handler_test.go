package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge-llm/internal/llm"
	"concierge-llm/internal/providers"
	"concierge-llm/internal/repository"
	"concierge-llm/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	registry := service.NewSessionRegistry(repository.NewMemoryMessageRepository(), logger)
	knowledge := providers.NewStaticKnowledge()
	orch := service.NewOrchestrator(
		providers.NewStaticWeather(),
		providers.NewStaticClock(),
		providers.NewStaticPlaces(),
		knowledge,
		registry,
		logger,
	)
	model := &llm.MockClient{Response: `{"vector_query":"paris landmarks"}`}
	retrieval := service.NewRetrievalService(model, knowledge, logger)

	return NewRouter(
		logger,
		NewOrchestratorHandler(logger, orch),
		NewSessionHandler(logger, registry),
		NewRetrievalHandler(logger, retrieval),
		nil,
	)
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAggregateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/aggregate", `{"entity":"Paris"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Aggregate map[string]any `json:"aggregate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"weather", "time", "country"} {
		if _, ok := resp.Aggregate[field]; !ok {
			t.Fatalf("missing field %q: %v", field, resp.Aggregate)
		}
	}
}

func TestAggregateEndpointRejectsBadEntity(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/aggregate", `{"entity":"Paris;DROP"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouteEndpointUnsupportedType(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/route", `{"request_type":"weather.tsunami","params":{"city":"Paris"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Unsupported weather request type") {
		t.Fatalf("expected unsupported type message, got %s", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSessionLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/sessions", `{"context":{"system_message":"You are helpful."}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Session struct {
			ID           string `json:"id"`
			MessageCount int    `json:"message_count"`
		} `json:"session"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Session.ID == "" || created.Session.MessageCount != 1 {
		t.Fatalf("unexpected session: %+v", created.Session)
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/"+created.Session.ID+"/messages",
		`{"messages":[{"role":"user","content":"hola"},{"role":"assistant","content":"buenas"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/sessions/"+created.Session.ID+"/history?limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var history struct {
		Messages []map[string]any `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(history.Messages) != 3 {
		t.Fatalf("expected 3 messages (system + pair), got %d", len(history.Messages))
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/"+created.Session.ID+"/end", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/"+created.Session.ID+"/end", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ending twice must fail with 400, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/sessions/unknown-id/end", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session must 404, got %d", rec.Code)
	}
}

func TestCleanupEndpointRejectsNonPositiveHours(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/sessions/cleanup", `{"hours":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRetrievalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/retrieval/decide", `{"message":"what to see in Paris?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var decide struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decide); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decide.Query == "" {
		t.Fatalf("query must never be empty")
	}

	rec = doJSON(t, router, http.MethodPost, "/retrieval/search",
		`{"query":"paris","score_threshold":0.1,"limit":5,"user_context":{"role":"guest"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
