package models

import (
	"math"
	"testing"
)

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinate
		want bool
	}{
		{"tokyo", Coordinate{Lat: 35.6895, Lng: 139.6917}, true},
		{"extremes", Coordinate{Lat: -90, Lng: 180}, true},
		{"lat too high", Coordinate{Lat: 90.1, Lng: 0}, false},
		{"lng too low", Coordinate{Lat: 0, Lng: -180.5}, false},
		{"nan", Coordinate{Lat: math.NaN(), Lng: 0}, false},
		{"inf", Coordinate{Lat: 0, Lng: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Valid(); got != tt.want {
				t.Fatalf("Valid(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestValidCategory(t *testing.T) {
	for _, tag := range Categories {
		if !ValidCategory(tag) {
			t.Fatalf("%q should be a valid category", tag)
		}
	}
	if ValidCategory("museum") {
		t.Fatal("unknown tag accepted")
	}
	if ValidCategory("") {
		t.Fatal("empty tag accepted")
	}
}
