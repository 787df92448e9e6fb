package common

import "testing"

func TestHasAny(t *testing.T) {
	if !HasAny("epsg:3857", "900913", "3857") {
		t.Fatalf("expected match ignoring case")
	}
	if HasAny("EPSG:4326", "3857") {
		t.Fatalf("unexpected match")
	}
	if HasAny("EPSG:4326") {
		t.Fatalf("no substrings must not match")
	}
}
