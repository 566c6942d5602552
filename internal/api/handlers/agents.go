package handlers

import (
	"net/http"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// AgentHandler exposes agent poses and per-agent belief snapshots.
type AgentHandler struct {
	engine *service.Engine
}

func NewAgentHandler(engine *service.Engine) *AgentHandler {
	return &AgentHandler{engine: engine}
}

type posesResponse struct {
	Agents []domain.Pose `json:"agents"`
	Count  int           `json:"count"`
}

// List returns every agent's pose for drawing.
// GET /v1/agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	poses := h.engine.Poses()
	writeJSON(w, http.StatusOK, posesResponse{Agents: poses, Count: len(poses)})
}

type mindEntryResponse struct {
	ID         string    `json:"id"`
	Centroid   []float64 `json:"centroid"`
	Box        []float64 `json:"box"`
	PStatic    float64   `json:"p_static"`
	Confidence float64   `json:"confidence"`
	Visible    bool      `json:"visible"`
	LastSeen   time.Time `json:"last_seen"`
}

type mindResponse struct {
	AgentID string              `json:"agent_id"`
	Entries []mindEntryResponse `json:"entries"`
	Count   int                 `json:"count"`
}

// GetMind returns a read-only snapshot of an agent's belief map, for
// introspective visualization.
// GET /v1/agents/{id}/mind
func (h *AgentHandler) GetMind(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	entries, ok := h.engine.Mind(id)
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}

	resp := mindResponse{AgentID: id.String(), Count: len(entries)}
	resp.Entries = make([]mindEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp.Entries = append(resp.Entries, mindEntryResponse{
			ID:         e.ID.String(),
			Centroid:   []float64{e.Features.Centroid[0], e.Features.Centroid[1]},
			Box:        []float64{e.Features.Box.Min[0], e.Features.Box.Min[1], e.Features.Box.Max[0], e.Features.Box.Max[1]},
			PStatic:    e.PStatic,
			Confidence: e.Confidence,
			Visible:    e.Visible,
			LastSeen:   e.LastSeen,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
