package conversation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/medoffice-ai-agent/pkg/logging"
)

// Handler wires HTTP requests to the conversation engine.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("conversation: engine is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

// TurnRequest is the body of POST /api/conversation/turn. An empty
// conversation_id starts a new conversation.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Turn handles POST /api/conversation/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode turn request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := h.engine.ProcessTurn(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		h.logger.Error("failed to process turn", "error", err)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
