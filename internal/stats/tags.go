package stats

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/modgrid/modgrid-cli/internal/manifest"
)

// TagCount is one tag and how many modules carry it.
type TagCount struct {
	Tag   string
	Count int
}

// TagCounts tallies tag usage across records, sorted by popularity and then
// by collated tag name so ties order the way a human would list them.
func TagCounts(records []manifest.ModuleRecord) []TagCount {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, tag := range rec.Tags {
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}

	c := collate.New(language.English, collate.IgnoreCase)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return c.CompareString(out[i].Tag, out[j].Tag) < 0
	})
	return out
}

// Totals returns the total number of tag occurrences and the number of
// distinct tags across records.
func Totals(records []manifest.ModuleRecord) (total, unique int) {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, tag := range rec.Tags {
			total++
			seen[tag] = struct{}{}
		}
	}
	return total, len(seen)
}
