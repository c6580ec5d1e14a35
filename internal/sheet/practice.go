package sheet

import (
	"sort"
	"strconv"
)

// PracticeLabel groups questions that carry no exam year.
const PracticeLabel = "Practice"

type YearGroup struct {
	Label     string     `json:"label"`
	Year      int        `json:"year,omitempty"`
	Questions []Question `json:"questions"`
}

// GroupByYear buckets questions by exam year, newest first, with undated
// questions last under PracticeLabel. Order inside a bucket is preserved.
func GroupByYear(questions []Question) []YearGroup {
	idx := map[int]int{}
	var groups []YearGroup
	for _, q := range questions {
		year := q.Year
		if year < 0 {
			year = 0
		}
		i, ok := idx[year]
		if !ok {
			g := YearGroup{Year: year, Label: PracticeLabel}
			if year > 0 {
				g.Label = strconv.Itoa(year)
			}
			groups = append(groups, g)
			i = len(groups) - 1
			idx[year] = i
		}
		groups[i].Questions = append(groups[i].Questions, q)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		ya, yb := groups[a].Year, groups[b].Year
		if ya == 0 {
			return false
		}
		if yb == 0 {
			return true
		}
		return ya > yb
	})
	return groups
}
