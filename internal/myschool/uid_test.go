package myschool

import (
	"strings"
	"testing"
)

func TestHashUIDDeterministic(t *testing.T) {
	s := HashUID{Prefix: "myschool-"}

	a := s.UID("42", "2024-03-01T09:00:00+01:00", "2024-03-01T10:30:00+01:00", "e.090", "Rehearsal")
	b := s.UID("42", "2024-03-01T09:00:00+01:00", "2024-03-01T10:30:00+01:00", "e.090", "Rehearsal")
	if a != b {
		t.Fatalf("same inputs produced %q and %q", a, b)
	}
	if !strings.HasPrefix(a, "myschool-") {
		t.Fatalf("UID %q missing prefix", a)
	}
	if len(a) != len("myschool-")+24 {
		t.Fatalf("UID %q has unexpected length %d", a, len(a))
	}
}

func TestHashUIDSensitivity(t *testing.T) {
	s := HashUID{Prefix: "myschool-"}
	base := []string{"42", "2024-03-01T09:00:00+01:00", "2024-03-01T10:30:00+01:00", "e.090", "Rehearsal"}
	ref := s.UID(base[0], base[1], base[2], base[3], base[4])

	// Changing any single identity field must change the UID.
	for i := range base {
		mutated := append([]string(nil), base...)
		mutated[i] = mutated[i] + "x"
		if got := s.UID(mutated[0], mutated[1], mutated[2], mutated[3], mutated[4]); got == ref {
			t.Fatalf("mutating field %d did not change the UID", i)
		}
	}
}

func TestConcatUID(t *testing.T) {
	s := ConcatUID{}
	got := s.UID("42", "2024-03-01T09:00:00+01:00", "x", "y", "z")
	if got != "42-2024-03-01T09:00:00+01:00" {
		t.Fatalf("UID = %q", got)
	}
	if again := s.UID("42", "2024-03-01T09:00:00+01:00", "a", "b", "c"); again != got {
		t.Fatalf("ConcatUID not deterministic over id+start: %q vs %q", again, got)
	}
}
