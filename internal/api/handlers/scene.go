package handlers

import (
	"net/http"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/domain"
	"github.com/Amityar01/chaolab-ircn-sub000/internal/scene"
)

// SceneHandler exposes the current geometry snapshot.
type SceneHandler struct {
	provider *scene.Provider
}

func NewSceneHandler(provider *scene.Provider) *SceneHandler {
	return &SceneHandler{provider: provider}
}

type sceneResponse struct {
	Bounds    []float64         `json:"bounds"`
	Obstacles []domain.Obstacle `json:"obstacles"`
	Count     int               `json:"count"`
}

// Get returns the obstacle list and world bounds.
// GET /v1/scene
func (h *SceneHandler) Get(w http.ResponseWriter, r *http.Request) {
	obstacles, bounds := h.provider.Snapshot()
	writeJSON(w, http.StatusOK, sceneResponse{
		Bounds:    []float64{bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1]},
		Obstacles: obstacles,
		Count:     len(obstacles),
	})
}
