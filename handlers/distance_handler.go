package handlers

import (
	"encoding/json"
	"net/http"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/services"
	"wayfare/utils/errors"
)

type DistanceHandler struct {
	provider services.DistanceProvider
}

type WalkingRequest struct {
	Origin       models.Coordinate   `json:"origin"`
	Destinations []models.Coordinate `json:"destinations"`
}

// WalkingResponse mirrors the provider contract on the wire: one entry per
// destination in request order, null when the pair is unreachable.
type WalkingResponse struct {
	Distances []*float64 `json:"distances"`
}

func NewDistanceHandler(provider services.DistanceProvider) *DistanceHandler {
	return &DistanceHandler{provider: provider}
}

func (h *DistanceHandler) GetWalkingDistances(w http.ResponseWriter, r *http.Request) {
	var input WalkingRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if !input.Origin.Valid() {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	for _, d := range input.Destinations {
		if !d.Valid() {
			middleware.WriteError(w, errors.ErrInvalidInput)
			return
		}
	}

	distances, err := h.provider.WalkingDistances(r.Context(), input.Origin, input.Destinations)
	if err != nil {
		middleware.WriteError(w, errors.Wrap(err, "DISTANCE_ERROR", "Failed to fetch walking distances", errors.ErrUpstream.Status))
		return
	}

	out := make([]*float64, len(distances))
	for i, d := range distances {
		if d.Available {
			km := d.KM
			out[i] = &km
		}
	}
	writeJSON(w, http.StatusOK, WalkingResponse{Distances: out})
}
