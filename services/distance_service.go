package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"wayfare/models"

	"github.com/redis/go-redis/v9"
)

const googleDistanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// WalkingDistance is the per-destination result of a batched lookup.
// Available is false when the provider reports the pair unreachable; the
// kilometre value is only meaningful when Available is true.
type WalkingDistance struct {
	KM        float64
	Available bool
}

// DistanceProvider returns walking distances from one origin to many
// destinations. The result always has the same length and order as
// destinations; a transport or provider-level failure errors the whole call
// rather than producing a partial result.
type DistanceProvider interface {
	WalkingDistances(ctx context.Context, origin models.Coordinate, destinations []models.Coordinate) ([]WalkingDistance, error)
}

// DistanceService wraps the Google Distance Matrix API in walking mode.
// A Redis client, when present, caches per-pair results so repeated
// recommendation queries over the same pins skip the network.
type DistanceService struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewDistanceService(apiKey string, redisClient *redis.Client) *DistanceService {
	return &DistanceService{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		baseURL:     googleDistanceMatrixURL,
		apiKey:      apiKey,
		redisClient: redisClient,
		cacheTTL:    24 * time.Hour,
	}
}

type matrixElement struct {
	Status   string `json:"status"`
	Distance struct {
		Value int `json:"value"` // meters
	} `json:"distance"`
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

func (s *DistanceService) WalkingDistances(ctx context.Context, origin models.Coordinate, destinations []models.Coordinate) ([]WalkingDistance, error) {
	if len(destinations) == 0 {
		return []WalkingDistance{}, nil
	}

	results := make([]WalkingDistance, len(destinations))
	missing := make([]int, 0, len(destinations))
	for i, dest := range destinations {
		if cached, ok := s.cachedPair(ctx, origin, dest); ok {
			results[i] = cached
		} else {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return results, nil
	}

	// One batched request covers everything the cache could not answer.
	uncached := make([]models.Coordinate, len(missing))
	for j, i := range missing {
		uncached[j] = destinations[i]
	}
	fetched, err := s.fetchRow(ctx, origin, uncached)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		results[i] = fetched[j]
		s.storePair(ctx, origin, destinations[i], fetched[j])
	}
	return results, nil
}

func (s *DistanceService) fetchRow(ctx context.Context, origin models.Coordinate, destinations []models.Coordinate) ([]WalkingDistance, error) {
	params := url.Values{}
	params.Set("origins", formatCoord(origin))
	parts := make([]string, len(destinations))
	for i, d := range destinations {
		parts[i] = formatCoord(d)
	}
	params.Set("destinations", strings.Join(parts, "|"))
	params.Set("mode", "walking")
	params.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build distance matrix request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix: unexpected HTTP status %d", resp.StatusCode)
	}

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode distance matrix response: %w", err)
	}
	if mr.Status != "OK" {
		return nil, fmt.Errorf("distance matrix: provider status %s: %s", mr.Status, mr.ErrorMessage)
	}
	if len(mr.Rows) != 1 || len(mr.Rows[0].Elements) != len(destinations) {
		return nil, fmt.Errorf("distance matrix: expected 1 row with %d elements", len(destinations))
	}

	out := make([]WalkingDistance, len(destinations))
	for i, el := range mr.Rows[0].Elements {
		if el.Status == "OK" {
			out[i] = WalkingDistance{KM: float64(el.Distance.Value) / 1000, Available: true}
		}
	}
	return out, nil
}

func formatCoord(c models.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

func pairKey(origin, dest models.Coordinate) string {
	return "walkdist:" + formatCoord(origin) + "|" + formatCoord(dest)
}

func (s *DistanceService) cachedPair(ctx context.Context, origin, dest models.Coordinate) (WalkingDistance, bool) {
	if s.redisClient == nil {
		return WalkingDistance{}, false
	}
	val, err := s.redisClient.Get(ctx, pairKey(origin, dest)).Result()
	if err != nil {
		return WalkingDistance{}, false
	}
	if val == "unreachable" {
		return WalkingDistance{}, true
	}
	km, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return WalkingDistance{}, false
	}
	return WalkingDistance{KM: km, Available: true}, true
}

func (s *DistanceService) storePair(ctx context.Context, origin, dest models.Coordinate, d WalkingDistance) {
	if s.redisClient == nil {
		return
	}
	val := "unreachable"
	if d.Available {
		val = strconv.FormatFloat(d.KM, 'f', -1, 64)
	}
	s.redisClient.Set(ctx, pairKey(origin, dest), val, s.cacheTTL)
}
