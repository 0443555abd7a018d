package compute

import (
	"bytes"
	"testing"

	"github.com/csvquery/routestat/internal/routestream"
)

func TestRunSTiny(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;4;A\n1;3;Z;W;6;A\n2;1;X;Y;5;B\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunS(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "1;1;4.000000;6.666667;10.000000;6.000000\n2;2;5.000000;5.000000;5.000000;0.000000\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

// TestRunSTieBreak checks that routes tied on spread print in
// route_id-descending order, not ascending.
func TestRunSTieBreak(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;4;A\n2;1;X;Y;10;B\n2;2;Y;Z;4;B\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunS(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "1;2;4.000000;7.000000;10.000000;6.000000\n2;1;4.000000;7.000000;10.000000;6.000000\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunSHeaderOnly(t *testing.T) {
	path := writeRoutesCSV(t, "")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunS(s, &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
