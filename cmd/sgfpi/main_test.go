package main

import (
	"testing"

	"sgf/hal"
)

func TestParseButtonMap(t *testing.T) {
	got, err := parseButtonMap(" left=GPIO5, FIRE=GPIO26 ,")
	if err != nil {
		t.Fatalf("parseButtonMap: %v", err)
	}
	want := []buttonPin{{hal.ButtonLeft, "GPIO5"}, {hal.ButtonFire, "GPIO26"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %v, want %v", i, got[i], want[i])
		}
	}

	for _, bad := range []string{"left", "jump=GPIO1", "up="} {
		if _, err := parseButtonMap(bad); err == nil {
			t.Fatalf("parseButtonMap(%q) accepted", bad)
		}
	}
	if got, err := parseButtonMap(""); err != nil || len(got) != 0 {
		t.Fatalf("empty map = %v, %v", got, err)
	}
}
