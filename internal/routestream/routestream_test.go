package routestream

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.csv")
	content := "a;b;c;d;e;f\n" + body
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSkipsHeaderAndYieldsAllRows(t *testing.T) {
	path := writeTempCSV(t, "1;1;X;Y;10;A\n1;2;Y;Z;5;A\n2;1;X;Y;2;B\n")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	n := 0
	for s.Read(&step, AllFields) {
		n++
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("got %d rows, want 3", n)
	}
}

func TestReadFieldValues(t *testing.T) {
	path := writeTempCSV(t, "1;2;Paris;Lyon;12.5;Alice\n")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	if !s.Read(&step, AllFields) {
		t.Fatalf("expected one row, err=%v", s.Err())
	}
	if step.RouteID != 1 || step.StepID != 2 {
		t.Fatalf("got routeId=%d stepId=%d", step.RouteID, step.StepID)
	}
	if string(step.TownA) != "Paris" || string(step.TownB) != "Lyon" {
		t.Fatalf("got townA=%q townB=%q", step.TownA, step.TownB)
	}
	if string(step.DriverName) != "Alice" {
		t.Fatalf("got driver=%q", step.DriverName)
	}
	if step.Distance < 12.49 || step.Distance > 12.51 {
		t.Fatalf("got distance=%v", step.Distance)
	}
}

func TestReadPartialFieldMask(t *testing.T) {
	path := writeTempCSV(t, "1;2;Paris;Lyon;12.5;Alice\n")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	if !s.Read(&step, RouteID|DriverName) {
		t.Fatalf("expected one row, err=%v", s.Err())
	}
	if step.RouteID != 1 {
		t.Fatalf("got routeId=%d", step.RouteID)
	}
	if string(step.DriverName) != "Alice" {
		t.Fatalf("got driver=%q", step.DriverName)
	}
	if step.StepID != 0 || step.Distance != 0 {
		t.Fatalf("unread fields should stay zero, got stepId=%d distance=%v", step.StepID, step.Distance)
	}
}

func TestHeaderOnlyFileYieldsNoRows(t *testing.T) {
	path := writeTempCSV(t, "")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	if s.Read(&step, AllFields) {
		t.Fatal("expected no rows for a header-only file")
	}
	if s.Err() != nil {
		t.Fatalf("unexpected error: %v", s.Err())
	}
}

func TestMalformedRowAborts(t *testing.T) {
	path := writeTempCSV(t, "1;2;X\n") // only two of the five ';' before the newline
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	if s.Read(&step, AllFields) {
		t.Fatal("expected malformed row to abort the run")
	}
	if s.Err() != ErrMalformedRow {
		t.Fatalf("got err=%v, want ErrMalformedRow", s.Err())
	}
}

func TestReadAcrossBufferRefill(t *testing.T) {
	// Many short rows so the 128 KiB buffer definitely needs more than
	// one refill, exercising the line-boundary rollback path.
	dir := t.TempDir()
	path := filepath.Join(dir, "big.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, "a;b;c;d;e;f\n")
	const n = 50000
	for i := 0; i < n; i++ {
		fmt.Fprintf(f, "%d;1;X;Y;1.5;A\n", i%1000)
	}
	f.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var step RouteStep
	count := 0
	for s.Read(&step, RouteID) {
		count++
	}
	if err := s.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != n {
		t.Fatalf("got %d rows, want %d", count, n)
	}
}
