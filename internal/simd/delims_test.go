package simd

import "testing"

func TestFindRowDelimitersWellFormed(t *testing.T) {
	row := []byte("1;2;X;Y;10;A\n")
	pos, ok := FindRowDelimiters(row)
	if !ok {
		t.Fatal("expected well-formed row to parse")
	}
	for i := 0; i < 5; i++ {
		if row[pos[i]] != ';' {
			t.Fatalf("pos[%d]=%d does not point at ';'", i, pos[i])
		}
	}
	if row[pos[5]] != '\n' {
		t.Fatalf("pos[5]=%d does not point at '\\n'", pos[5])
	}
}

func TestFindRowDelimitersSixthSemicolon(t *testing.T) {
	row := []byte("1;2;X;Y;10;11;A\n")
	if _, ok := FindRowDelimiters(row); ok {
		t.Fatal("expected a sixth ';' before the newline to be rejected")
	}
}

func TestFindRowDelimitersEarlyNewline(t *testing.T) {
	row := []byte("1;2;X\n")
	if _, ok := FindRowDelimiters(row); ok {
		t.Fatal("expected a newline before the fifth ';' to be rejected")
	}
}

func TestFindRowDelimitersLongRow(t *testing.T) {
	row := []byte("123456789;2222222222;TownNameIsLong;AnotherTown;9999;DriverNameIsAlsoLong\n")
	pos, ok := FindRowDelimiters(row)
	if !ok {
		t.Fatal("expected long well-formed row to parse")
	}
	if row[pos[5]] != '\n' {
		t.Fatal("final delimiter should be the newline")
	}
}
