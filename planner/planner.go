package planner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lexiport/episode-media-uploader/common"
	"github.com/lexiport/episode-media-uploader/types"
)

const DefaultPadWidth = 3
const DefaultStartIndex = 1

type Options struct {
	// ExplicitIds maps one-to-one onto the input files. Length must match the
	// file count when supplied.
	ExplicitIds []string

	// PadWidth is the minimum width of generated and inferred numeric ids.
	// Ids naturally longer than this are never truncated.
	PadWidth int

	// StartIndex seeds the sequential counter.
	StartIndex int

	// InferFromName extracts the trailing digit run of each file name.
	InferFromName bool
}

// Plan assigns a unique logical id to every input file. When ids were
// inferred from file names the result is sorted ascending by numeric value,
// otherwise input order is kept.
func Plan(files []types.MediaItem, opts Options) ([]types.PlanEntry, error) {
	if len(opts.ExplicitIds) > 0 && len(opts.ExplicitIds) != len(files) {
		return nil, common.ErrIdCountMismatch
	}

	pad := opts.PadWidth
	if pad <= 0 {
		pad = DefaultPadWidth
	}
	next := opts.StartIndex
	if next <= 0 {
		next = DefaultStartIndex
	}

	useExplicit := len(opts.ExplicitIds) == len(files) && len(files) > 0

	used := make(map[string]bool)
	entries := make([]types.PlanEntry, 0, len(files))
	anyInferred := false
	for i, f := range files {
		var candidate string
		if useExplicit {
			candidate = opts.ExplicitIds[i]
		} else if opts.InferFromName {
			if run, ok := trailingDigitRun(f.Name); ok {
				candidate = leftPad(run, pad)
				anyInferred = true
			} else {
				candidate = fmt.Sprintf("%0*d", pad, next)
				next++
			}
		} else {
			candidate = fmt.Sprintf("%0*d", pad, next)
			next++
		}

		candidate = deduplicate(candidate, used)
		used[candidate] = true
		entries = append(entries, types.PlanEntry{Item: f, LogicalId: candidate})
	}

	if opts.InferFromName && anyInferred {
		sortByIdValue(entries)
	}

	return entries, nil
}

// trailingDigitRun returns the run of consecutive digits immediately before
// the file extension. Digits elsewhere in the name (resolution markers and
// the like) do not count.
func trailingDigitRun(name string) (string, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	end := len(base)
	start := end
	for start > 0 && base[start-1] >= '0' && base[start-1] <= '9' {
		start--
	}
	if start == end {
		return "", false
	}
	return base[start:end], true
}

func leftPad(id string, width int) string {
	for len(id) < width {
		id = "0" + id
	}
	return id
}

// deduplicate resolves candidate collisions against ids already handed out.
// Numeric candidates are incremented (keeping at least their own width),
// anything else gets a suffix character until it is unique.
func deduplicate(candidate string, used map[string]bool) string {
	for used[candidate] {
		if n, err := strconv.ParseInt(candidate, 10, 64); err == nil {
			candidate = fmt.Sprintf("%0*d", len(candidate), n+1)
		} else {
			candidate = candidate + "x"
		}
	}
	return candidate
}

// sortByIdValue orders entries ascending by numeric id value. Non-numeric
// ids sort after all numeric ones, lexicographically among themselves.
func sortByIdValue(entries []types.PlanEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, aOk := parseIdValue(entries[i].LogicalId)
		b, bOk := parseIdValue(entries[j].LogicalId)
		if aOk && bOk {
			if a != b {
				return a < b
			}
			return entries[i].LogicalId < entries[j].LogicalId
		}
		if aOk != bOk {
			return aOk
		}
		return entries[i].LogicalId < entries[j].LogicalId
	})
}

func parseIdValue(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}
