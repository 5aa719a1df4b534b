package pushws

import (
	"context"
	"testing"
	"time"
)

func receive(t *testing.T, client *Client) []byte {
	t.Helper()
	select {
	case payload, ok := <-client.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
	}
	return nil
}

func TestHubPublishesToEveryConnectionOfUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil)
	go hub.Run(ctx)

	first := NewClient(hub, nil, "42")
	second := NewClient(hub, nil, "42")
	other := NewClient(hub, nil, "7")
	hub.Register(first)
	hub.Register(second)
	hub.Register(other)

	hub.Publish("42", []byte(`{"type":"notification"}`))

	if got := string(receive(t, first)); got != `{"type":"notification"}` {
		t.Fatalf("unexpected payload %q", got)
	}
	receive(t, second)

	select {
	case payload := <-other.send:
		t.Fatalf("unexpected payload for other user: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(nil)
	go hub.Run(ctx)

	client := NewClient(hub, nil, "42")
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestHubStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	client := NewClient(hub, nil, "42")
	hub.Register(client)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	hub.Publish("42", []byte("ignored"))
	hub.Unregister(client)
}

func TestClientGreetQueuesAcknowledgement(t *testing.T) {
	client := NewClient(NewHub(nil), nil, "42")
	client.Greet()

	if payload := receive(t, client); len(payload) == 0 {
		t.Fatal("expected greeting payload")
	}
}
