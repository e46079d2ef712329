package main

import (
	"bytes"
	"strings"
	"testing"

	"sgf/app"
)

func TestRunWritesWebP(t *testing.T) {
	o := options{Frames: 30, DtMs: 16, FireEvery: 10, Width: 96, Height: 128, Scale: 2}
	cfg := app.DefaultConfig()
	cfg.StatsEveryMs = 200

	var out bytes.Buffer
	rep, err := run(o, cfg, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b := out.Bytes()
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Fatalf("output is not WebP: % x", b[:min(len(b), 12)])
	}
	if rep.Bytes != len(b) || rep.Blits == 0 || rep.Pixels < 96*128 {
		t.Fatalf("report=%+v", rep)
	}
	if rep.RawOffset == cfg.HUDLines {
		t.Fatalf("scroll window never moved")
	}

	text := render(rep)
	for _, want := range []string{"sgfshot", "frames", "app: sgf ", "stats: frames="} {
		if !strings.Contains(text, want) {
			t.Fatalf("report missing %q:\n%s", want, text)
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	if _, err := run(options{Frames: 0, Width: 96, Height: 128}, app.DefaultConfig(), &out); err == nil {
		t.Fatalf("zero frames accepted")
	}
	if _, err := run(options{Frames: 1, Width: 20, Height: 20}, app.DefaultConfig(), &out); err == nil {
		t.Fatalf("panel too small for the bands accepted")
	}
}
