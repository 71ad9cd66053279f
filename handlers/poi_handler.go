package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"wayfare/middleware"
	"wayfare/models"
	"wayfare/services"
	"wayfare/utils/errors"

	"github.com/gorilla/mux"
)

type POIHandler struct {
	poiService  *services.POIService
	userService *services.UserService
}

type POIListResponse struct {
	POIs  []models.POI `json:"pois"`
	Count int          `json:"count"`
}

type NearbyPOIResponse struct {
	NearbyPOIs []models.POI `json:"nearby_pois"`
	Count      int          `json:"count"`
	Lat        float64      `json:"lat"`
	Lng        float64      `json:"lng"`
	Radius     float64      `json:"radius"`
}

func NewPOIHandler(poiService *services.POIService, userService *services.UserService) *POIHandler {
	return &POIHandler{poiService: poiService, userService: userService}
}

func (h *POIHandler) CreatePOI(w http.ResponseWriter, r *http.Request) {
	var input services.POIInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if !requireMember(w, r, h.userService, input.Team) {
		return
	}
	userID, _ := requestUserID(r)

	poi, err := h.poiService.CreatePOI(r.Context(), userID, input)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, poi)
}

func (h *POIHandler) ListPOIs(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if !requireMember(w, r, h.userService, team) {
		return
	}

	pois, err := h.poiService.ListPOIs(r.Context(), team, r.URL.Query().Get("city"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, POIListResponse{POIs: pois, Count: len(pois)})
}

func (h *POIHandler) GetNearbyPOIs(w http.ResponseWriter, r *http.Request) {
	team := r.URL.Query().Get("team")
	if !requireMember(w, r, h.userService, team) {
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if !(models.Coordinate{Lat: lat, Lng: lng}).Valid() {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		radius = 3 // km
	}
	tag := r.URL.Query().Get("tag")

	pois, err := h.poiService.FindNearbyPOIs(r.Context(), team, lat, lng, radius, tag)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NearbyPOIResponse{
		NearbyPOIs: pois,
		Count:      len(pois),
		Lat:        lat,
		Lng:        lng,
		Radius:     radius,
	})
}

func (h *POIHandler) UpdateDuration(w http.ResponseWriter, r *http.Request) {
	poi, ok := h.memberPOI(w, r)
	if !ok {
		return
	}

	var input struct {
		Duration int `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}

	updated, err := h.poiService.UpdateDuration(r.Context(), poi.ID, input.Duration)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *POIHandler) DeletePOI(w http.ResponseWriter, r *http.Request) {
	poi, ok := h.memberPOI(w, r)
	if !ok {
		return
	}

	if err := h.poiService.DeletePOI(r.Context(), poi.ID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Point of interest deleted", "id": poi.ID})
}

// memberPOI loads the POI from the path and checks the requester belongs to
// its team.
func (h *POIHandler) memberPOI(w http.ResponseWriter, r *http.Request) (models.POI, bool) {
	poi, err := h.poiService.GetPOI(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, err)
		return models.POI{}, false
	}
	if !requireMember(w, r, h.userService, poi.Team) {
		return models.POI{}, false
	}
	return poi, true
}
