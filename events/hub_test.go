package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Team: "tokyo-crew",
	}
	hub.Register(client)

	evt := Event{Action: "assignment_created", Team: "tokyo-crew"}
	hub.Broadcast(evt)

	want, _ := json.Marshal(evt)
	select {
	case got := <-client.Send:
		if string(got) != string(want) {
			t.Fatalf("expected %s, got %s", want, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.Unregister(client)
}

func TestHubBroadcastStaysInsideTeamRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	tokyo := &Client{Send: make(chan []byte, 10), Team: "tokyo-crew"}
	osaka := &Client{Send: make(chan []byte, 10), Team: "osaka-crew"}
	hub.Register(tokyo)
	hub.Register(osaka)

	hub.Broadcast(Event{Action: "poi_created", Team: "tokyo-crew"})

	select {
	case <-tokyo.Send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for team message")
	}

	select {
	case msg := <-osaka.Send:
		t.Fatalf("other team received message: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}
