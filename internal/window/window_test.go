package window

import (
	"strings"
	"testing"
	"time"

	"roomcal/internal/config"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error = %v", name, err)
	}
	return loc
}

func TestLookbackHorizonKnownVector(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, paris)

	w := Compute(now, paris, config.WindowConfig{
		Policy:       config.WindowPolicyLookback,
		LookbackDays: 5,
		HorizonDays:  10,
	})

	if got, want := EncodeStart(w.Start), "2024-06-09T22:00:00.000Z"; got != want {
		t.Fatalf("dateStart = %q, want %q", got, want)
	}
	if got, want := EncodeEnd(w.End), "2024-06-25T21:59:59.999Z"; got != want {
		t.Fatalf("dateEnd = %q, want %q", got, want)
	}
	if !w.Start.Before(w.End) {
		t.Fatalf("window start %v not before end %v", w.Start, w.End)
	}
}

func TestEncodingSuffixesAreLiteral(t *testing.T) {
	// The upstream API distinguishes the bounds purely by suffix: start
	// is .000Z, end is .999Z, regardless of the instant's own sub-second
	// value.
	instants := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		time.Date(2024, 7, 14, 8, 30, 15, 123456789, time.UTC),
	}
	for _, ts := range instants {
		if s := EncodeStart(ts); !strings.HasSuffix(s, ".000Z") {
			t.Fatalf("EncodeStart(%v) = %q, want .000Z suffix", ts, s)
		}
		if e := EncodeEnd(ts); !strings.HasSuffix(e, ".999Z") {
			t.Fatalf("EncodeEnd(%v) = %q, want .999Z suffix", ts, e)
		}
	}
}

func TestEncodeConvertsToUTC(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, paris) // UTC+1 in winter

	if got, want := EncodeStart(ts), "2024-03-01T08:00:00.000Z"; got != want {
		t.Fatalf("EncodeStart = %q, want %q", got, want)
	}
}

func TestWeekAligned(t *testing.T) {
	paris := mustLocation(t, "Europe/Paris")

	t.Run("midweek snaps back to Monday", func(t *testing.T) {
		// 2024-06-15 is a Saturday; the week's Monday is 2024-06-10.
		now := time.Date(2024, 6, 15, 12, 0, 0, 0, paris)
		w := Compute(now, paris, config.WindowConfig{Policy: config.WindowPolicyWeek, Weeks: 2})

		wantStart := time.Date(2024, 6, 10, 0, 0, 0, 0, paris).UTC()
		if !w.Start.Equal(wantStart) {
			t.Fatalf("start = %v, want %v", w.Start, wantStart)
		}
		wantEnd := time.Date(2024, 6, 24, 0, 0, 0, 0, paris).Add(-time.Millisecond).UTC()
		if !w.End.Equal(wantEnd) {
			t.Fatalf("end = %v, want %v", w.End, wantEnd)
		}
	})

	t.Run("Monday stays on Monday", func(t *testing.T) {
		now := time.Date(2024, 6, 10, 0, 30, 0, 0, paris)
		w := Compute(now, paris, config.WindowConfig{Policy: config.WindowPolicyWeek, Weeks: 1})

		wantStart := time.Date(2024, 6, 10, 0, 0, 0, 0, paris).UTC()
		if !w.Start.Equal(wantStart) {
			t.Fatalf("start = %v, want %v", w.Start, wantStart)
		}
	})

	t.Run("Sunday belongs to the started week", func(t *testing.T) {
		now := time.Date(2024, 6, 16, 22, 0, 0, 0, paris)
		w := Compute(now, paris, config.WindowConfig{Policy: config.WindowPolicyWeek, Weeks: 1})

		wantStart := time.Date(2024, 6, 10, 0, 0, 0, 0, paris).UTC()
		if !w.Start.Equal(wantStart) {
			t.Fatalf("start = %v, want %v", w.Start, wantStart)
		}
	})
}
