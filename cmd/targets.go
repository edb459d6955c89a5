package cmd

import (
	"os"
	"strings"

	"github.com/khanhnv2901/fdscan/internal/checker"
	sharederrors "github.com/khanhnv2901/fdscan/internal/shared/errors"
)

// loadTargets collects hostnames from --url and --list. The single URL comes
// first; list entries keep their file order and duplicates. Blank input is
// skipped, so a source holding only whitespace yields an empty target set.
func loadTargets(url, listFile string) ([]string, error) {
	if url == "" && listFile == "" {
		return nil, sharederrors.ErrNoTargetSource
	}

	targets := []string{}
	if host := strings.TrimSpace(url); host != "" {
		targets = append(targets, host)
	}

	if listFile != "" {
		// #nosec G304 -- list path is supplied by the operator
		f, err := os.Open(listFile)
		if err != nil {
			return nil, &ListFileError{Path: listFile, Err: err}
		}
		defer f.Close()

		list, err := checker.ReadTargets(f)
		if err != nil {
			return nil, &ListFileError{Path: listFile, Err: err}
		}
		targets = append(targets, list...)
	}

	return targets, nil
}
