package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Peek())
	}
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected a fixed clock to stay put")
	}
}

func TestSteppingClock(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewSteppingClock(start, time.Second)
	nowFn := clock.NowFunc()

	if got := nowFn(); !got.Equal(start) {
		t.Fatalf("expected %v first, got %v", start, got)
	}
	if got := nowFn(); !got.Equal(start.Add(time.Second)) {
		t.Fatalf("expected clock to step, got %v", got)
	}

	if got := clock.Advance(time.Hour); !got.Equal(start.Add(time.Hour + 2*time.Second)) {
		t.Fatalf("advance returned %v", got)
	}
	if !clock.Peek().Equal(clock.Now()) {
		t.Fatalf("expected Peek to report the next reading")
	}
}
