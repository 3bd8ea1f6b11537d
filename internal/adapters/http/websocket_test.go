package http

import "testing"

const (
	wsRouteA = "7a1c0000-0000-4000-8000-0000000000a1"
	wsRouteB = "7a1c0000-0000-4000-8000-0000000000b2"
)

func TestRouteFilter_NewClientMatchesEverything(t *testing.T) {
	f := newRouteFilter()
	if !f.match(wsRouteA) || !f.match(wsRouteB) {
		t.Fatal("new client should receive every route")
	}
}

func TestRouteFilter_Subscribe(t *testing.T) {
	f := newRouteFilter()

	reply := f.handle(wsMessage{Action: "subscribe", Route: wsRouteA})
	if reply["status"] != "subscribed" {
		t.Fatalf("unexpected reply %v", reply)
	}
	if !f.match(wsRouteA) {
		t.Error("expected subscribed route to match")
	}
	if f.match(wsRouteB) {
		t.Error("expected other route to be filtered out")
	}

	reply = f.handle(wsMessage{Action: "subscribe", Route: wsRouteA})
	if reply["status"] != "already subscribed" {
		t.Errorf("expected already subscribed, got %v", reply)
	}
}

func TestRouteFilter_Unsubscribe(t *testing.T) {
	f := newRouteFilter()
	f.handle(wsMessage{Action: "subscribe", Route: wsRouteA})
	f.handle(wsMessage{Action: "subscribe", Route: wsRouteB})

	reply := f.handle(wsMessage{Action: "unsubscribe", Route: wsRouteA})
	if reply["status"] != "unsubscribed" {
		t.Fatalf("unexpected reply %v", reply)
	}
	if f.match(wsRouteA) {
		t.Error("expected unsubscribed route to be filtered out")
	}

	reply = f.handle(wsMessage{Action: "unsubscribe", Route: wsRouteA})
	if reply["error"] == "" {
		t.Error("expected error for route that is not subscribed")
	}
}

func TestRouteFilter_UnsubscribeLastRoute(t *testing.T) {
	f := newRouteFilter()
	f.handle(wsMessage{Action: "subscribe", Route: wsRouteA})

	reply := f.handle(wsMessage{Action: "unsubscribe", Route: wsRouteA})
	if reply["status"] != "unsubscribed" {
		t.Fatalf("unexpected reply %v", reply)
	}
	if f.match(wsRouteA) || f.match(wsRouteB) {
		t.Error("client with no subscriptions left should receive nothing")
	}
}

func TestRouteFilter_UnsubscribeWildcard(t *testing.T) {
	f := newRouteFilter()

	reply := f.handle(wsMessage{Action: "unsubscribe"})
	if reply["route"] != "*" {
		t.Fatalf("expected wildcard reply, got %v", reply)
	}
	if f.match(wsRouteA) {
		t.Error("expected nothing to match after leaving the wildcard")
	}
	if reply := f.handle(wsMessage{Action: "unsubscribe"}); reply["error"] == "" {
		t.Errorf("expected error on second wildcard unsubscribe, got %v", reply)
	}

	f.handle(wsMessage{Action: "subscribe"})
	if !f.match(wsRouteB) {
		t.Error("wildcard subscription should match every route")
	}
}

func TestRouteFilter_WildcardClears(t *testing.T) {
	f := newRouteFilter()
	f.handle(wsMessage{Action: "subscribe", Route: wsRouteA})

	reply := f.handle(wsMessage{Action: "subscribe"})
	if reply["route"] != "*" {
		t.Fatalf("expected wildcard reply, got %v", reply)
	}
	if !f.match(wsRouteB) {
		t.Error("wildcard subscription should match every route")
	}
}

func TestRouteFilter_RejectsBadInput(t *testing.T) {
	f := newRouteFilter()

	tests := []wsMessage{
		{Action: "subscribe", Route: "line-1"},
		{Action: "follow", Route: wsRouteA},
	}
	for _, m := range tests {
		if reply := f.handle(m); reply["error"] == "" {
			t.Errorf("expected error for %+v, got %v", m, reply)
		}
	}
	if !f.match(wsRouteB) {
		t.Error("rejected messages must not change the filter")
	}
}
