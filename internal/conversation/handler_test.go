package conversation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerTurn(t *testing.T) {
	f := newEngineFixture(t)
	h := NewHandler(f.engine, nil)

	body := strings.NewReader(`{"conversation_id": "conv-h1", "message": "book an appointment"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/conversation/turn", body)
	rec := httptest.NewRecorder()
	h.Turn(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"conv-h1"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), string(StateCollectingName)) {
		t.Errorf("body missing state: %s", rec.Body.String())
	}
}

func TestHandlerTurnEmptyMessage(t *testing.T) {
	f := newEngineFixture(t)
	h := NewHandler(f.engine, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversation/turn", strings.NewReader(`{"message": ""}`))
	rec := httptest.NewRecorder()
	h.Turn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandlerTurnBadBody(t *testing.T) {
	f := newEngineFixture(t)
	h := NewHandler(f.engine, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/conversation/turn", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.Turn(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
