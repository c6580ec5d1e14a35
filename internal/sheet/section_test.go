package sheet_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		kind sheet.Kind
		want sheet.SectionID
	}{
		{sheet.KindMCQ, sheet.SectionA},
		{sheet.KindMSQ, sheet.SectionA},
		{sheet.KindTrueFalse, sheet.SectionA},
		{sheet.KindInteger, sheet.SectionB},
		{sheet.KindFillBlank, sheet.SectionB},
		{sheet.KindComprehension, sheet.SectionC},
		{"MATCH_THE_COLUMN", sheet.SectionC},
		{"", sheet.SectionC},
	}
	for _, c := range cases {
		if got := sheet.Classify(c.kind); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.kind, got, c.want)
		}
	}
}

func TestComposeSectionsNumbersAcrossSections(t *testing.T) {
	qs := []sheet.Question{
		question("c1", sheet.KindComprehension, 5, 0),
		question("b1", sheet.KindInteger, 3, 0),
		question("a1", sheet.KindMSQ, 4, 2),
		question("a2", sheet.KindMCQ, 4, 1),
	}
	secs := sheet.ComposeSections(qs, sheet.DefaultPreferences(), sheet.Builder{})
	if len(secs) != 3 {
		t.Fatalf("sections = %d, want 3", len(secs))
	}

	var ids, numbers []string
	for _, s := range secs {
		for _, e := range s.Entries {
			ids = append(ids, e.QuestionID)
			numbers = append(numbers, strconv.Itoa(e.Number))
		}
	}
	if got := strings.Join(ids, ","); got != "a1,a2,b1,c1" {
		t.Fatalf("order = %s", got)
	}
	if got := strings.Join(numbers, ","); got != "1,2,3,4" {
		t.Fatalf("numbers = %s", got)
	}

	a := secs[0]
	if a.Scheme.String() != "+4/0/-2" {
		t.Fatalf("section A uses first question scheme, got %s", a.Scheme)
	}
	if a.Instructions[1] != "Each question has FOUR options (A), (B), (C) and (D). ONE OR MORE may be correct." {
		t.Fatalf("option line = %q", a.Instructions[1])
	}
	if secs[1].Instructions[1] != "The answer to each question is a NUMERICAL VALUE." {
		t.Fatalf("section B line = %q", secs[1].Instructions[1])
	}
	if secs[2].Title != "Section C" || len(secs[2].Instructions) != 2 {
		t.Fatalf("section C = %q %q", secs[2].Title, secs[2].Instructions)
	}
}

func TestSchemeDefaultsZeroMarks(t *testing.T) {
	secs := sheet.ComposeSections([]sheet.Question{question("b1", sheet.KindInteger, 0, 0)}, sheet.DefaultPreferences(), sheet.Builder{})
	if len(secs) != 1 {
		t.Fatalf("sections = %d", len(secs))
	}
	if got := secs[0].Scheme.String(); got != "+4/0" {
		t.Fatalf("scheme = %s, want +4/0", got)
	}
	if last := secs[0].Instructions[len(secs[0].Instructions)-1]; last != "Marking scheme: Full Marks: +4; Zero Marks: 0." {
		t.Fatalf("marking line = %q", last)
	}
}

func TestComposeSectionsEmpty(t *testing.T) {
	if secs := sheet.ComposeSections(nil, sheet.DefaultPreferences(), sheet.Builder{}); len(secs) != 0 {
		t.Fatalf("sections = %d, want 0", len(secs))
	}
}

func TestSchemeHidesNonPositiveNegative(t *testing.T) {
	secs := sheet.ComposeSections([]sheet.Question{question("a1", sheet.KindMCQ, 4, -1)}, sheet.DefaultPreferences(), sheet.Builder{})
	if got := secs[0].Scheme.String(); got != "+4/0" {
		t.Fatalf("scheme = %s, want +4/0", got)
	}
	if last := secs[0].Instructions[len(secs[0].Instructions)-1]; last != "Marking scheme: Full Marks: +4; Zero Marks: 0." {
		t.Fatalf("marking line = %q", last)
	}
}
