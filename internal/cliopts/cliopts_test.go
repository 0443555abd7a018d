package cliopts

import "testing"

func TestParseValidFlags(t *testing.T) {
	cases := []struct {
		flag string
		want Computation
	}{
		{"-t", T}, {"-s", S}, {"-d1", D1}, {"-d2", D2}, {"-l", L},
	}
	for _, c := range cases {
		opts, err := Parse([]string{c.flag, "routes.csv"})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.flag, err)
		}
		if opts.Computation != c.want {
			t.Fatalf("%s: got computation %v, want %v", c.flag, opts.Computation, c.want)
		}
		if opts.Path != "routes.csv" {
			t.Fatalf("%s: got path %q", c.flag, opts.Path)
		}
	}
}

func TestParseDuplicateComputation(t *testing.T) {
	_, err := Parse([]string{"-t", "-s", "routes.csv"})
	if err == nil {
		t.Fatal("expected an error for duplicate computation flags")
	}
	want := "« -s » invalide : traitement déjà spécifié"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse([]string{"-t"})
	if err == nil || err.Error() != "Aucun fichier spécifié" {
		t.Fatalf("got %v, want missing-file error", err)
	}
}

func TestParseNoComputation(t *testing.T) {
	_, err := Parse([]string{"routes.csv"})
	if err == nil || err.Error() != "Aucun traitement spécifié" {
		t.Fatalf("got %v, want no-computation error", err)
	}
}

func TestParseUnknownOption(t *testing.T) {
	_, err := Parse([]string{"-x", "routes.csv"})
	if err == nil {
		t.Fatal("expected error for unknown option")
	}
	want := "Option inconnue : « -x »"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestParseUnexpectedExtraArgument(t *testing.T) {
	_, err := Parse([]string{"-t", "routes.csv", "extra.csv"})
	if err == nil {
		t.Fatal("expected error for unexpected extra argument")
	}
	want := "Argument inattendu : « extra.csv »"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestParseAmbientFlags(t *testing.T) {
	opts, err := Parse([]string{"-profile", "-mmap", "-spill", "-d1", "routes.csv"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Profile || !opts.Mmap || !opts.Spill {
		t.Fatalf("ambient flags not recorded: %+v", opts)
	}
}
