package roster

import (
	"testing"
	"time"
)

func TestParseWeekdays(t *testing.T) {
	got, err := parseWeekdays("1,3,5")
	if err != nil {
		t.Fatal(err)
	}
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := parseWeekdays("1,9"); err == nil {
		t.Fatal("expected error for out-of-range weekday")
	}
	if out, err := parseWeekdays(""); err != nil || out != nil {
		t.Fatalf("empty input: %v, %v", out, err)
	}
}

func TestScheduleContainsWeekday(t *testing.T) {
	s := Schedule{Weekdays: []time.Weekday{time.Monday, time.Friday}}
	mon := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	tue := mon.AddDate(0, 0, 1)
	if !s.ContainsWeekday(mon) {
		t.Fatal("Monday should match")
	}
	if s.ContainsWeekday(tue) {
		t.Fatal("Tuesday should not match")
	}
}
