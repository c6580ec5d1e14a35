package sheet

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultFullMarks is shown when the first question of a section carries no marks.
const DefaultFullMarks = 4

var sectionTitles = map[SectionID]string{
	SectionA: "Section A (MCQ)",
	SectionB: "Section B (Numerical)",
	SectionC: "Section C",
}

// MarkingScheme is the per-section marking display. It reflects the first
// question of the section only; uniformity is not checked.
type MarkingScheme struct {
	Full     float64 `json:"full"`
	Zero     float64 `json:"zero"`
	Negative float64 `json:"negative"`
}

// String renders "+4/0/-1", dropping the negative part when it is zero.
func (m MarkingScheme) String() string {
	s := "+" + formatMarks(m.Full) + "/" + formatMarks(m.Zero)
	if m.Negative > 0 {
		s += "/-" + formatMarks(m.Negative)
	}
	return s
}

func schemeFor(first Question) MarkingScheme {
	full := first.Marks
	if full == 0 {
		full = DefaultFullMarks
	}
	// only a positive deduction is printed
	neg := first.NegMarks
	if neg < 0 {
		neg = 0
	}
	return MarkingScheme{Full: full, Negative: neg}
}

type Section struct {
	ID           SectionID        `json:"id"`
	Title        string           `json:"title"`
	Scheme       MarkingScheme    `json:"scheme"`
	Instructions []string         `json:"instructions"`
	Entries      []QuestionBlocks `json:"entries"`
}

// ComposeSections builds the non-empty sections in A, B, C order. Question
// numbers start at 1 and continue across sections.
func ComposeSections(questions []Question, prefs DisplayPreferences, b Builder) []Section {
	parts := Partition(questions)
	var out []Section
	next := 1
	for _, id := range SectionOrder {
		qs := parts[id]
		if len(qs) == 0 {
			continue
		}
		sec := Section{
			ID:     id,
			Title:  sectionTitles[id],
			Scheme: schemeFor(qs[0]),
		}
		sec.Entries = make([]QuestionBlocks, 0, len(qs))
		for _, q := range qs {
			qb := b.Build(q, prefs)
			qb.Number = next
			next++
			sec.Entries = append(sec.Entries, qb)
		}
		sec.Instructions = instructions(id, qs, prefs, sec.Scheme)
		out = append(out, sec)
	}
	return out
}

func instructions(id SectionID, qs []Question, prefs DisplayPreferences, scheme MarkingScheme) []string {
	lines := []string{fmt.Sprintf("This section contains %d questions.", len(qs))}
	switch id {
	case SectionA:
		if line := optionPattern(qs[0], prefs.Language); line != "" {
			lines = append(lines, line)
		}
	case SectionB:
		lines = append(lines, "The answer to each question is a NUMERICAL VALUE.")
	}
	ms := "Marking scheme: Full Marks: +" + formatMarks(scheme.Full) + "; Zero Marks: " + formatMarks(scheme.Zero)
	if scheme.Negative > 0 {
		ms += "; Negative Marks: -" + formatMarks(scheme.Negative)
	}
	return append(lines, ms+".")
}

// optionPattern describes the options of the section's first question, e.g.
// "Each question has FOUR options (A), (B), (C) and (D). ONLY ONE is correct."
func optionPattern(first Question, lang Language) string {
	p, _, ok := first.Resolve(lang)
	if !ok || len(p.Options) == 0 {
		return ""
	}
	labels := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		labels = append(labels, "("+o.Identifier+")")
	}
	list := labels[0]
	if n := len(labels); n > 1 {
		list = strings.Join(labels[:n-1], ", ") + " and " + labels[n-1]
	}
	pattern := "ONLY ONE is correct."
	if first.Kind == KindMSQ {
		pattern = "ONE OR MORE may be correct."
	}
	return fmt.Sprintf("Each question has %s options %s. %s", countWord(len(labels)), list, pattern)
}

var countWords = []string{"ZERO", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE", "TEN"}

func countWord(n int) string {
	if n >= 0 && n < len(countWords) {
		return countWords[n]
	}
	return strconv.Itoa(n)
}

func formatMarks(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
