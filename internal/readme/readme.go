// Package readme rewrites the fixed metric lines of a profile README.
package readme

import (
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Apply rewrites every line matched by a rule whose metric has a value and
// returns how many lines matched, whether or not the value differed. The
// first matching rule wins for a line. Metrics missing from values leave
// their lines untouched.
func Apply(content string, rules []Rule, values map[string]string) (string, int) {
	lines := strings.Split(content, "\n")
	replaced := 0
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		for _, r := range rules {
			v, ok := values[r.Metric]
			if !ok {
				continue
			}
			out, matched := r.rewrite(body, v)
			if !matched {
				continue
			}
			replaced++
			if cr {
				out += "\r"
			}
			lines[i] = out
			break
		}
	}
	return strings.Join(lines, "\n"), replaced
}

type Result struct {
	Replaced int
	Changed  bool
	Digest   uint64 // xxhash of the content now on disk
}

// UpdateFile applies rules to the file at path and writes it back only
// when its digest changed.
func UpdateFile(path string, rules []Rule, values map[string]string) (Result, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Result{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	before := xxhash.Sum64(b)
	out, n := Apply(string(b), rules, values)
	after := xxhash.Sum64String(out)

	res := Result{Replaced: n, Changed: before != after, Digest: after}
	if !res.Changed {
		return res, nil
	}
	if err := os.WriteFile(path, []byte(out), fi.Mode().Perm()); err != nil {
		return Result{}, err
	}
	return res, nil
}
