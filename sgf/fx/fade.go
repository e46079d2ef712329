package fx

// BacklightFade linearly interpolates a backlight level over time.
//
// Times are millisecond clock readings; elapsed time is computed with unsigned
// subtraction so a clock wraparound mid-fade is harmless.
type BacklightFade struct {
	active   bool
	from     uint8
	to       uint8
	startMs  uint32
	duration uint32
}

// Start begins a fade from level from to level to.
func (f *BacklightFade) Start(from, to uint8, nowMs, durationMs uint32) {
	f.active = true
	f.from = from
	f.to = to
	f.startMs = nowMs
	f.duration = durationMs
}

func (f *BacklightFade) Stop()         { f.active = false }
func (f *BacklightFade) Active() bool  { return f.active }
func (f *BacklightFade) Target() uint8 { return f.to }

// LevelAt returns the interpolated level at nowMs.
func (f *BacklightFade) LevelAt(nowMs uint32) uint8 {
	if !f.active || f.duration == 0 {
		return f.to
	}
	elapsed := nowMs - f.startMs
	if elapsed >= f.duration {
		return f.to
	}
	delta := int64(f.to) - int64(f.from)
	return uint8(int64(f.from) + delta*int64(elapsed)/int64(f.duration))
}

// Complete reports whether the fade has reached its target at nowMs.
func (f *BacklightFade) Complete(nowMs uint32) bool {
	return !f.active || f.duration == 0 || nowMs-f.startMs >= f.duration
}
