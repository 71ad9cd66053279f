package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"wayfare/models"
	"wayfare/services"
)

type stubProvider struct {
	distances []services.WalkingDistance
	err       error
}

func (p *stubProvider) WalkingDistances(_ context.Context, _ models.Coordinate, _ []models.Coordinate) ([]services.WalkingDistance, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.distances, nil
}

func postWalking(t *testing.T, h *DistanceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/walking", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.GetWalkingDistances(rr, req)
	return rr
}

func TestGetWalkingDistancesEncodesUnreachableAsNull(t *testing.T) {
	h := NewDistanceHandler(&stubProvider{distances: []services.WalkingDistance{
		{KM: 1.2, Available: true},
		{Available: false},
	}})

	rr := postWalking(t, h, `{"origin":{"lat":35.0,"lng":139.0},"destinations":[{"lat":35.1,"lng":139.1},{"lat":35.2,"lng":139.2}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Distances []*float64 `json:"distances"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Distances) != 2 {
		t.Fatalf("expected 2 distances, got %d", len(resp.Distances))
	}
	if resp.Distances[0] == nil || *resp.Distances[0] != 1.2 {
		t.Fatalf("first distance = %v, want 1.2", resp.Distances[0])
	}
	if resp.Distances[1] != nil {
		t.Fatalf("second distance = %v, want null", *resp.Distances[1])
	}
}

func TestGetWalkingDistancesProviderFailure(t *testing.T) {
	h := NewDistanceHandler(&stubProvider{err: errors.New("timeout")})

	rr := postWalking(t, h, `{"origin":{"lat":35.0,"lng":139.0},"destinations":[{"lat":35.1,"lng":139.1}]}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != "DISTANCE_ERROR" {
		t.Fatalf("code = %q, want DISTANCE_ERROR", resp.Code)
	}
}

func TestGetWalkingDistancesRejectsInvalidCoordinates(t *testing.T) {
	h := NewDistanceHandler(&stubProvider{})

	rr := postWalking(t, h, `{"origin":{"lat":95.0,"lng":139.0},"destinations":[]}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
