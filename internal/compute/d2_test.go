package compute

import (
	"bytes"
	"testing"

	"github.com/csvquery/routestat/internal/routestream"
)

func TestRunD2Tiny(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;5;A\n2;1;X;Y;2;B\n2;2;Y;X;2;A\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD2(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "A;17.000000\nB;2.000000\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

// TestRunD2TieBreak checks that drivers tied on total distance print in
// name-descending order, not ascending.
func TestRunD2TieBreak(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;5;A\n2;1;X;Y;5;B\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD2(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "B;5.000000\nA;5.000000\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunD2HeaderOnly(t *testing.T) {
	path := writeRoutesCSV(t, "")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD2(s, &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
