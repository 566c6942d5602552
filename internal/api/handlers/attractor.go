package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/Amityar01/chaolab-ircn-sub000/internal/service"
	"github.com/paulmach/orb"
)

// AttractorHandler accepts external attractor updates (the pointer of the
// rendering layer, or any other point of interest).
type AttractorHandler struct {
	engine *service.Engine
}

func NewAttractorHandler(engine *service.Engine) *AttractorHandler {
	return &AttractorHandler{engine: engine}
}

type setAttractorRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Set places the attractor. Its influence decays until the next update.
// POST /v1/attractor
func (h *AttractorHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setAttractorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if math.IsNaN(req.X) || math.IsInf(req.X, 0) || math.IsNaN(req.Y) || math.IsInf(req.Y, 0) {
		writeError(w, http.StatusBadRequest, "coordinates must be finite")
		return
	}

	h.engine.SetAttractor(orb.Point{req.X, req.Y}, time.Now())
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
