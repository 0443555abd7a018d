// Package cliopts parses routestat's command line. Grounded on
// options.c for the overall loop shape (iterate args, recognize
// exactly one computation flag, track "already specified", require one
// positional file path).
package cliopts

import (
	"fmt"
	"strings"
)

// Computation selects which of the five reports to produce.
type Computation int

const (
	None Computation = iota
	D1
	D2
	L
	S
	T
)

// Options is the parsed result of Parse.
type Options struct {
	Computation Computation
	Path        string

	// Profile enables internal/profiler span timing on stderr.
	Profile bool
	// Mmap selects the mmap-backed stream reader instead of the
	// default buffered 128 KiB reader.
	Mmap bool
	// Spill enables partition spilling once SpillBudget bytes of
	// live partitioned data accumulate.
	Spill       bool
	SpillBudget int
}

// ArgError is returned for every parse failure; callers exit with code
// 2 and print Error() to stderr.
type ArgError struct {
	msg string
}

func (e *ArgError) Error() string { return e.msg }

func argErrorf(format string, args ...any) error {
	return &ArgError{msg: fmt.Sprintf(format, args...)}
}

const defaultSpillBudget = 64 * 1024 * 1024

// Parse parses args (typically os.Args[1:]) into Options.
func Parse(args []string) (Options, error) {
	var opts Options
	opts.SpillBudget = defaultSpillBudget

	haveComputation := false
	havePath := false

	for _, a := range args {
		switch a {
		case "-t":
			if haveComputation {
				return opts, duplicateComputation(a)
			}
			haveComputation = true
			opts.Computation = T
		case "-s":
			if haveComputation {
				return opts, duplicateComputation(a)
			}
			haveComputation = true
			opts.Computation = S
		case "-d1":
			if haveComputation {
				return opts, duplicateComputation(a)
			}
			haveComputation = true
			opts.Computation = D1
		case "-d2":
			if haveComputation {
				return opts, duplicateComputation(a)
			}
			haveComputation = true
			opts.Computation = D2
		case "-l":
			if haveComputation {
				return opts, duplicateComputation(a)
			}
			haveComputation = true
			opts.Computation = L
		case "-profile":
			opts.Profile = true
		case "-mmap":
			opts.Mmap = true
		case "-spill":
			opts.Spill = true
		default:
			if strings.HasPrefix(a, "-") {
				return opts, argErrorf("Option inconnue : « %s »", a)
			}
			if havePath {
				return opts, argErrorf("Argument inattendu : « %s »", a)
			}
			opts.Path = a
			havePath = true
		}
	}

	if !havePath {
		return opts, argErrorf("Aucun fichier spécifié")
	}
	if !haveComputation {
		return opts, argErrorf("Aucun traitement spécifié")
	}
	return opts, nil
}

func duplicateComputation(flag string) error {
	return argErrorf("« %s » invalide : traitement déjà spécifié", flag)
}
