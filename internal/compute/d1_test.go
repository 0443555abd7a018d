package compute

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/csvquery/routestat/internal/routestream"
)

func writeRoutesCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.csv")
	content := "a;b;c;d;e;f\n" + body
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunD1Tiny(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;5;A\n2;1;X;Y;2;B\n2;2;Y;X;2;A\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD1(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "A;2\nB;1\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunD1HeaderOnly(t *testing.T) {
	path := writeRoutesCSV(t, "")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD1(s, &out); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestRunD1DistinctnessP6(t *testing.T) {
	// Driver A drives two steps of route 1: route_count must be 1 for
	// that route, not 2 — P6 distinctness.
	path := writeRoutesCSV(t, "1;1;X;Y;1;A\n1;2;Y;Z;1;A\n1;3;Z;W;1;A\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD1(s, &out); err != nil {
		t.Fatal(err)
	}
	want := "A;1\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestRunD1WithSpill(t *testing.T) {
	path := writeRoutesCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;5;A\n2;1;X;Y;2;B\n2;2;Y;X;2;A\n")
	s, err := routestream.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var out bytes.Buffer
	if err := RunD1(s, &out, WithSpill(1)); err != nil {
		t.Fatal(err)
	}
	want := "A;2\nB;1\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}
