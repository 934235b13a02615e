package domain

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Date
// ═══════════════════════════════════════════════════════════════════════════

func TestDateOf_UsesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	instant := time.Date(2026, 3, 2, 3, 30, 0, 0, time.UTC) // 22:30 the previous day in EST

	if got := DateOf(instant, time.UTC); got != (Date{2026, time.March, 2}) {
		t.Errorf("DateOf(UTC) = %v", got)
	}
	if got := DateOf(instant, est); got != (Date{2026, time.March, 1}) {
		t.Errorf("DateOf(EST) = %v", got)
	}
	if got := DateOf(instant, nil); got != (Date{2026, time.March, 2}) {
		t.Errorf("DateOf(nil) = %v, want UTC day", got)
	}
}

func TestDate_DaysSince(t *testing.T) {
	tests := []struct {
		a, b Date
		want int
	}{
		{Date{2026, 5, 4}, Date{2026, 5, 4}, 0},
		{Date{2026, 5, 5}, Date{2026, 5, 4}, 1},
		{Date{2026, 3, 1}, Date{2026, 2, 28}, 1},
		{Date{2024, 3, 1}, Date{2024, 2, 28}, 2}, // leap year
		{Date{2027, 1, 1}, Date{2026, 12, 31}, 1},
		{Date{2026, 5, 1}, Date{2026, 5, 4}, -3},
	}
	for _, tt := range tests {
		if got := tt.a.DaysSince(tt.b); got != tt.want {
			t.Errorf("%v.DaysSince(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDate_AddDaysAndText(t *testing.T) {
	d := Date{2026, time.December, 31}
	if got := d.AddDays(1); got != (Date{2027, time.January, 1}) {
		t.Errorf("AddDays(1) = %v", got)
	}
	if d.String() != "2026-12-31" {
		t.Errorf("String() = %q", d.String())
	}

	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{d})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"d":"2026-12-31"}` {
		t.Errorf("json = %s", b)
	}

	var back struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal(b, &back); err != nil || back.D != d {
		t.Errorf("Unmarshal = %v, %v", back.D, err)
	}
	if _, err := ParseDate("2026-13-01"); err == nil {
		t.Error("ParseDate(invalid) expected error")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// KeySet
// ═══════════════════════════════════════════════════════════════════════════

func TestKeySet(t *testing.T) {
	s := NewKeySet("b", "a")
	if !s.Add("c") || s.Add("a") {
		t.Error("Add() should report whether the key was new")
	}
	if !s.Remove("b") || s.Remove("b") {
		t.Error("Remove() should report whether the key was present")
	}
	if got := s.Sorted(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Sorted() = %v", got)
	}

	c := s.Clone()
	c.Add("z")
	if s.Has("z") {
		t.Error("Clone() shares storage with the original")
	}

	b, _ := json.Marshal(s)
	if string(b) != `["a","c"]` {
		t.Errorf("json = %s", b)
	}
	var back KeySet
	if err := json.Unmarshal(b, &back); err != nil || !back.Has("a") || !back.Has("c") {
		t.Errorf("Unmarshal = %v, %v", back, err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Workouts
// ═══════════════════════════════════════════════════════════════════════════

func TestStrengthVolume_BodyweightFloor(t *testing.T) {
	if got := (StrengthMetrics{Weight: 0, Reps: 10, Sets: 3}).Volume(); got != 30 {
		t.Errorf("bodyweight Volume() = %v, want 30", got)
	}
	if got := (StrengthMetrics{Weight: 100, Reps: 5, Sets: 5}).Volume(); got != 2500 {
		t.Errorf("Volume() = %v, want 2500", got)
	}
}

func TestWorkoutType_Valid(t *testing.T) {
	for _, wt := range []WorkoutType{WorkoutStrength, WorkoutCardio} {
		if !wt.Valid() {
			t.Errorf("%q.Valid() = false", wt)
		}
	}
	if WorkoutType("yoga").Valid() {
		t.Error(`"yoga".Valid() = true`)
	}
}
