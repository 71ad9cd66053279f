package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"wayfare/models"
)

type stubDistanceProvider struct {
	distances []WalkingDistance
	err       error
	calls     int
}

func (p *stubDistanceProvider) WalkingDistances(_ context.Context, _ models.Coordinate, destinations []models.Coordinate) ([]WalkingDistance, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	if len(p.distances) != len(destinations) {
		return nil, errors.New("stub distances do not match destinations")
	}
	return p.distances, nil
}

func poiNamed(name string) models.POI {
	return models.POI{ID: "id-" + name, Name: name, Duration: 60}
}

func names(pois []models.POI) []string {
	out := make([]string, len(pois))
	for i, p := range pois {
		out[i] = p.Name
	}
	return out
}

func TestRankByDistanceOrdersAscending(t *testing.T) {
	candidates := []models.POI{poiNamed("A"), poiNamed("B"), poiNamed("C")}
	distances := []WalkingDistance{
		{KM: 1, Available: true},
		{KM: 3, Available: true},
		{KM: 2, Available: true},
	}

	got := names(RankByDistance(candidates, distances, MaxRecommendations))
	want := []string{"A", "C", "B"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRankByDistanceUnreachableSortsLast(t *testing.T) {
	candidates := []models.POI{poiNamed("A"), poiNamed("B"), poiNamed("C")}
	distances := []WalkingDistance{
		{Available: false},
		{KM: 5, Available: true},
		{KM: 1, Available: true},
	}

	got := names(RankByDistance(candidates, distances, MaxRecommendations))
	want := []string{"C", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRankByDistanceTiesKeepIncomingOrder(t *testing.T) {
	candidates := []models.POI{poiNamed("A"), poiNamed("B"), poiNamed("C")}
	distances := []WalkingDistance{
		{KM: 2, Available: true},
		{KM: 2, Available: true},
		{KM: 2, Available: true},
	}

	got := names(RankByDistance(candidates, distances, MaxRecommendations))
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRankByDistanceTruncatesToLimit(t *testing.T) {
	var candidates []models.POI
	var distances []WalkingDistance
	for _, n := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		candidates = append(candidates, poiNamed(n))
		distances = append(distances, WalkingDistance{KM: float64(len(distances)), Available: true})
	}

	got := RankByDistance(candidates, distances, MaxRecommendations)
	if len(got) != MaxRecommendations {
		t.Fatalf("expected %d results, got %d", MaxRecommendations, len(got))
	}
}

func TestRemainingMinutes(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		want      int
	}{
		{"empty day keeps the full budget", nil, 840},
		{"single visit", []int{60}, 780},
		{"over-scheduling goes negative", []int{500, 400}, -60},
		{"exactly full", []int{840}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingMinutes(tt.durations); got != tt.want {
				t.Fatalf("RemainingMinutes(%v) = %d, want %d", tt.durations, got, tt.want)
			}
		})
	}
}

func TestRemainingMinutesAssignDelta(t *testing.T) {
	before := RemainingMinutes([]int{120, 45})
	after := RemainingMinutes([]int{120, 45, 90})
	if before-after != 90 {
		t.Fatalf("assigning 90 minutes changed capacity by %d", before-after)
	}
	restored := RemainingMinutes([]int{120, 45})
	if restored != before {
		t.Fatalf("removal did not restore capacity: %d != %d", restored, before)
	}
}

func TestRankCandidatesLookupFailureDegradesToEmpty(t *testing.T) {
	provider := &stubDistanceProvider{err: errors.New("connection refused")}
	s := &PlannerService{distance: provider}

	got := s.rankCandidates(context.Background(), poiNamed("origin"), []models.POI{poiNamed("A"), poiNamed("B")})
	if len(got) != 0 {
		t.Fatalf("expected empty recommendations on failure, got %d", len(got))
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestRankCandidatesNoCandidatesSkipsLookup(t *testing.T) {
	provider := &stubDistanceProvider{}
	s := &PlannerService{distance: provider}

	got := s.rankCandidates(context.Background(), poiNamed("origin"), nil)
	if len(got) != 0 {
		t.Fatalf("expected empty recommendations, got %d", len(got))
	}
	if provider.calls != 0 {
		t.Fatalf("expected no provider call, got %d", provider.calls)
	}
}

func TestRankCandidatesIsIdempotent(t *testing.T) {
	provider := &stubDistanceProvider{distances: []WalkingDistance{
		{KM: 2, Available: true},
		{KM: 1, Available: true},
	}}
	s := &PlannerService{distance: provider}
	candidates := []models.POI{poiNamed("A"), poiNamed("B")}

	first := names(s.rankCandidates(context.Background(), poiNamed("origin"), candidates))
	second := names(s.rankCandidates(context.Background(), poiNamed("origin"), candidates))
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("position %d differs between runs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestExcludeAssignedNeverSuggestsDayItems(t *testing.T) {
	origin := poiNamed("origin")
	assigned := poiNamed("assigned")
	fresh := poiNamed("fresh")
	assignments := []models.DayAssignment{
		{ID: "x", PoiID: origin.ID},
		{ID: "y", PoiID: assigned.ID},
	}

	got := names(excludeAssigned([]models.POI{origin, assigned, fresh}, assignments))
	if len(got) != 1 || got[0] != "fresh" {
		t.Fatalf("expected only the unassigned candidate, got %v", got)
	}
}

func TestExcludeAssignedKeepsOrderWhenNothingAssigned(t *testing.T) {
	candidates := []models.POI{poiNamed("A"), poiNamed("B"), poiNamed("C")}

	got := names(excludeAssigned(candidates, nil))
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestContainsPOIDetectsDuplicateAssignment(t *testing.T) {
	assignments := []models.DayAssignment{
		{ID: "x", PoiID: "id-A"},
		{ID: "y", PoiID: "id-B"},
	}
	if !containsPOI(assignments, "id-B") {
		t.Fatal("expected an already assigned POI to be detected")
	}
	if containsPOI(assignments, "id-C") {
		t.Fatal("unassigned POI reported as duplicate")
	}
	if containsPOI(nil, "id-A") {
		t.Fatal("empty day reported a duplicate")
	}
}

func TestCheckDayBounds(t *testing.T) {
	trip := models.Trip{Days: 3}
	tests := []struct {
		name    string
		day     int
		wantErr bool
	}{
		{"zero is out of range", 0, true},
		{"negative is out of range", -1, true},
		{"first day", 1, false},
		{"last day", 3, false},
		{"past the trip end", 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDay(trip, tt.day)
			if tt.wantErr && err == nil {
				t.Fatalf("checkDay(days=3, %d) accepted an out-of-range day", tt.day)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("checkDay(days=3, %d) = %v, want nil", tt.day, err)
			}
		})
	}
}

func TestLatestAssignmentPicksNewest(t *testing.T) {
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	assignments := []models.DayAssignment{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
	}
	if got := latestAssignment(assignments); got.ID != "c" {
		t.Fatalf("expected c, got %s", got.ID)
	}
}

func TestLatestAssignmentEqualTimestampsBreakByID(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	assignments := []models.DayAssignment{
		{ID: "b", CreatedAt: ts},
		{ID: "a", CreatedAt: ts},
	}
	if got := latestAssignment(assignments); got.ID != "b" {
		t.Fatalf("expected b, got %s", got.ID)
	}
}
