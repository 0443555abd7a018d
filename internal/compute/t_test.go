package compute

import (
	"bytes"
	"testing"

	"github.com/csvquery/routestat/internal/routestream"
)

func TestRunTTiny(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;3;A\n1;2;Y;Z;3;A\n2;1;Y;W;4;B\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunT(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "Y;2;1\nW;1;0\nX;1;1\nZ;1;0\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunTHeaderOnly(t *testing.T) {
	path := writeRoutesCSV(t, "")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunT(s, &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

// TestRunTDistinctnessP6 checks a town visited twice within the same
// route (town_a repeats as town_b of a later step) is only credited
// once to that route's passed count.
func TestRunTDistinctnessP6(t *testing.T) {
	// Route 1 visits X, Y, then back to X: X must be "passed" once,
	// not twice.
	path := writeRoutesCSV(t, "1;1;X;Y;1;A\n1;2;Y;X;1;A\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunT(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "X;1;1\nY;1;0\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunTWithSpill(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;3;A\n1;2;Y;Z;3;A\n2;1;Y;W;4;B\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunT(s, &out, WithSpill(1)); err != nil {
		t.Fatal(err)
	}
	want := "Y;2;1\nW;1;0\nX;1;1\nZ;1;0\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}
