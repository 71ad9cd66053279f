package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"wayfare/models"
)

func newTestDistanceService(t *testing.T, handler http.HandlerFunc) (*DistanceService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewDistanceService("test-key", nil)
	s.baseURL = srv.URL
	return s, srv
}

func matrixBody(elements []map[string]any) map[string]any {
	return map[string]any{
		"status": "OK",
		"rows":   []any{map[string]any{"elements": elements}},
	}
}

func TestWalkingDistancesEmptyDestinationsSkipsNetwork(t *testing.T) {
	calls := 0
	s, _ := newTestDistanceService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(matrixBody(nil))
	})

	got, err := s.WalkingDistances(context.Background(), models.Coordinate{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
	if calls != 0 {
		t.Fatalf("expected no network call, got %d", calls)
	}
}

func TestWalkingDistancesOrderAndUnits(t *testing.T) {
	var gotQuery map[string][]string
	s, _ := newTestDistanceService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(matrixBody([]map[string]any{
			{"status": "OK", "distance": map[string]any{"value": 1000}},
			{"status": "ZERO_RESULTS"},
			{"status": "OK", "distance": map[string]any{"value": 2500}},
		}))
	})

	origin := models.Coordinate{Lat: 35.6895, Lng: 139.6917}
	dests := []models.Coordinate{
		{Lat: 35.71, Lng: 139.7},
		{Lat: 35.72, Lng: 139.71},
		{Lat: 35.73, Lng: 139.72},
	}
	got, err := s.WalkingDistances(context.Background(), origin, dests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(dests) {
		t.Fatalf("expected %d results, got %d", len(dests), len(got))
	}
	if !got[0].Available || got[0].KM != 1.0 {
		t.Fatalf("first result = %+v, want 1.0 km available", got[0])
	}
	if got[1].Available {
		t.Fatalf("second result should be unreachable, got %+v", got[1])
	}
	if !got[2].Available || got[2].KM != 2.5 {
		t.Fatalf("third result = %+v, want 2.5 km available", got[2])
	}

	if mode := gotQuery["mode"]; len(mode) != 1 || mode[0] != "walking" {
		t.Fatalf("mode = %v, want walking", mode)
	}
	if dest := gotQuery["destinations"]; len(dest) != 1 || strings.Count(dest[0], "|") != 2 {
		t.Fatalf("destinations = %v, want 3 pipe-joined pairs", dest)
	}
}

func TestWalkingDistancesProviderStatusError(t *testing.T) {
	s, _ := newTestDistanceService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":        "REQUEST_DENIED",
			"error_message": "The provided API key is invalid",
		})
	})

	_, err := s.WalkingDistances(context.Background(), models.Coordinate{}, []models.Coordinate{{Lat: 1, Lng: 1}})
	if err == nil {
		t.Fatal("expected an error for a non-OK provider status")
	}
}

func TestWalkingDistancesHTTPError(t *testing.T) {
	s, _ := newTestDistanceService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := s.WalkingDistances(context.Background(), models.Coordinate{}, []models.Coordinate{{Lat: 1, Lng: 1}})
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestWalkingDistancesRowShapeMismatch(t *testing.T) {
	s, _ := newTestDistanceService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(matrixBody([]map[string]any{
			{"status": "OK", "distance": map[string]any{"value": 1000}},
		}))
	})

	_, err := s.WalkingDistances(context.Background(), models.Coordinate{}, []models.Coordinate{
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
	})
	if err == nil {
		t.Fatal("expected an error when the row does not match the destinations")
	}
}
