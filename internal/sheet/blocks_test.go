package sheet_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

func options(ids ...string) []sheet.Option {
	out := make([]sheet.Option, 0, len(ids))
	for _, id := range ids {
		out = append(out, sheet.Option{Identifier: id, Content: "option " + id})
	}
	return out
}

func images(n int) []sheet.Image {
	out := make([]sheet.Image, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sheet.Image{URL: fmt.Sprintf("https://img.example/%d.png", i)})
	}
	return out
}

func mcq(id string, opts ...string) sheet.Question {
	return sheet.Question{
		ID:       id,
		Kind:     sheet.KindMCQ,
		Marks:    4,
		NegMarks: 1,
		Prompt: map[sheet.Language]sheet.LocalizedPrompt{
			sheet.LangPrimary: {Content: "Question " + id, Options: options(opts...)},
		},
	}
}

func optionIDs(row []sheet.OptionView) string {
	ids := make([]string, 0, len(row))
	for _, o := range row {
		ids = append(ids, o.Identifier)
	}
	return strings.Join(ids, ",")
}

func TestBuildBlocksOptionsLead(t *testing.T) {
	q := mcq("q1", "A", "B", "C", "D")
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{Language: sheet.LangPrimary, ShowOptions: true})

	if len(qb.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(qb.Blocks))
	}
	lead := qb.Lead()
	if lead.Kind != sheet.BlockLead || !lead.Atomic || lead.Role != sheet.RoleOptions {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.Text != "Question q1" {
		t.Fatalf("lead text = %q", lead.Text)
	}
	if got := optionIDs(lead.Options); got != "A,B" {
		t.Fatalf("lead options = %s, want A,B", got)
	}
	cont := qb.Blocks[1]
	if cont.Kind != sheet.BlockContinuation || !cont.Atomic || optionIDs(cont.Options) != "C,D" {
		t.Fatalf("unexpected continuation: %+v", cont)
	}
	for _, o := range append(lead.Options, cont.Options...) {
		if o.Correct {
			t.Fatalf("option %s flagged correct with solutions hidden", o.Identifier)
		}
	}
}

func TestBuildBlocksCorrectFlagIndependentOfOrder(t *testing.T) {
	q := mcq("q1", "D", "B", "A", "C")
	q.Correct = sheet.Answer{Identifiers: []string{"B"}}
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true, ShowSolution: true})

	var flagged []string
	for _, b := range qb.Blocks {
		for _, o := range b.Options {
			if o.Correct {
				flagged = append(flagged, o.Identifier)
			}
		}
	}
	if strings.Join(flagged, ",") != "B" {
		t.Fatalf("flagged = %v, want [B]", flagged)
	}
}

func TestBuildBlocksImagesLead(t *testing.T) {
	q := mcq("q1")
	p := q.Prompt[sheet.LangPrimary]
	p.Images = images(7)
	q.Prompt[sheet.LangPrimary] = p

	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: false})
	if len(qb.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(qb.Blocks))
	}
	lead := qb.Lead()
	if !lead.Atomic || len(lead.Images) != 3 || lead.Images[0].Src != "https://img.example/0.png" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	for i, want := range []int{3, 1} {
		b := qb.Blocks[i+1]
		if b.Kind != sheet.BlockContinuation || b.Atomic || len(b.Images) != want {
			t.Fatalf("continuation %d: %+v", i, b)
		}
	}
}

func TestBuildBlocksImagesTakePrecedenceOverOptions(t *testing.T) {
	q := mcq("q1", "A", "B", "C", "D")
	p := q.Prompt[sheet.LangPrimary]
	p.Images = images(4)
	q.Prompt[sheet.LangPrimary] = p

	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true})
	roles := make([]string, 0, len(qb.Blocks))
	for _, b := range qb.Blocks {
		roles = append(roles, fmt.Sprintf("%s/%s/%v", b.Kind, b.Role, b.Atomic))
	}
	want := "lead/images/true continuation/images/false continuation/options/true continuation/options/true"
	if got := strings.Join(roles, " "); got != want {
		t.Fatalf("blocks = %s\nwant     %s", got, want)
	}
	if len(qb.Lead().Options) != 0 {
		t.Fatalf("options joined an image lead")
	}
	if optionIDs(qb.Blocks[2].Options) != "A,B" {
		t.Fatalf("first option row should be its own block")
	}
}

func TestBuildBlocksTextOnly(t *testing.T) {
	q := sheet.Question{
		ID: "n1", Kind: sheet.KindInteger, Marks: 3,
		Prompt: map[sheet.Language]sheet.LocalizedPrompt{sheet.LangPrimary: {Content: "Find $$x$$"}},
	}
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true})
	if len(qb.Blocks) != 1 {
		t.Fatalf("expected a single block, got %d", len(qb.Blocks))
	}
	lead := qb.Lead()
	if lead.Role != sheet.RoleText || !lead.Atomic || lead.Text != `Find \(x\)` {
		t.Fatalf("unexpected lead: %+v", lead)
	}
}

func TestBuildBlocksLanguageFallback(t *testing.T) {
	q := sheet.Question{
		ID: "h1", Kind: sheet.KindMCQ,
		Prompt: map[sheet.Language]sheet.LocalizedPrompt{
			sheet.LangSecondary: {Content: "हिंदी प्रश्न", Options: options("A", "B")},
		},
	}
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{Language: sheet.LangPrimary, ShowOptions: true})
	if qb.Language != sheet.LangSecondary {
		t.Fatalf("resolved language = %s", qb.Language)
	}
	if qb.Lead().Text != "हिंदी प्रश्न" {
		t.Fatalf("lead text = %q", qb.Lead().Text)
	}
	if qb.Lead().Text == sheet.MissingContent {
		t.Fatalf("placeholder used despite secondary prompt")
	}
}

func TestBuildBlocksNullPromptFallsBack(t *testing.T) {
	q := sheet.Question{
		ID: "h2",
		Prompt: map[sheet.Language]sheet.LocalizedPrompt{
			sheet.LangPrimary:   {},
			sheet.LangSecondary: {Content: "second"},
		},
	}
	if got := sheet.BuildBlocks(q, sheet.DisplayPreferences{}).Lead().Text; got != "second" {
		t.Fatalf("lead text = %q", got)
	}
}

func TestBuildBlocksMissingPrompt(t *testing.T) {
	q := sheet.Question{ID: "x", Kind: sheet.KindMCQ}
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true, ShowSolution: true})
	if len(qb.Blocks) != 1 || qb.Lead().Text != sheet.MissingContent {
		t.Fatalf("unexpected blocks: %+v", qb.Blocks)
	}
}

func TestBuildBlocksSkipsImagesWithoutSource(t *testing.T) {
	q := mcq("q1")
	p := q.Prompt[sheet.LangPrimary]
	p.Images = []sheet.Image{{}, {PublicID: "diagrams/lens", Version: "1712"}, {Alt: "nothing"}}
	q.Prompt[sheet.LangPrimary] = p

	lead := sheet.BuildBlocks(q, sheet.DisplayPreferences{}).Lead()
	if len(lead.Images) != 1 {
		t.Fatalf("expected 1 resolvable image, got %d", len(lead.Images))
	}
	want := "https://res.cloudinary.com/" + sheet.DefaultCloudinaryCloud + "/image/upload/v1712/diagrams/lens"
	if lead.Images[0].Src != want {
		t.Fatalf("src = %s, want %s", lead.Images[0].Src, want)
	}
}

func TestBuildBlocksSolution(t *testing.T) {
	q := mcq("q1", "A", "B")
	p := q.Prompt[sheet.LangPrimary]
	p.Explanation = `Use $$F=ma$$`
	p.ExplanationImages = images(4)
	q.Prompt[sheet.LangPrimary] = p

	hidden := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true})
	if len(hidden.Blocks) != 1 {
		t.Fatalf("explanation shown without ShowSolution: %d blocks", len(hidden.Blocks))
	}

	shown := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowOptions: true, ShowSolution: true})
	if len(shown.Blocks) != 4 {
		t.Fatalf("expected lead + explanation + 2 image rows, got %d", len(shown.Blocks))
	}
	exp := shown.Blocks[1]
	if exp.Role != sheet.RoleExplanation || exp.Text != `Use \(F=ma\)` || exp.Kind != sheet.BlockContinuation {
		t.Fatalf("unexpected explanation block: %+v", exp)
	}
	if shown.Blocks[2].Role != sheet.RoleExplanationImages || len(shown.Blocks[2].Images) != 3 || len(shown.Blocks[3].Images) != 1 {
		t.Fatalf("unexpected explanation image rows")
	}
}

func TestBuildBlocksValueAnswer(t *testing.T) {
	q := sheet.Question{
		ID: "n1", Kind: sheet.KindInteger, Marks: 3,
		Correct: sheet.Answer{Value: "42"},
		Prompt:  map[sheet.Language]sheet.LocalizedPrompt{sheet.LangPrimary: {Content: "How many?"}},
	}
	qb := sheet.BuildBlocks(q, sheet.DisplayPreferences{ShowSolution: true})
	if len(qb.Blocks) != 2 || qb.Blocks[1].Role != sheet.RoleAnswer || qb.Blocks[1].Text != "42" {
		t.Fatalf("unexpected blocks: %+v", qb.Blocks)
	}
}

func TestBuilderCustomLayout(t *testing.T) {
	b := sheet.Builder{Layout: sheet.Layout{OptionsPerRow: 4}}
	qb := b.Build(mcq("q1", "A", "B", "C", "D"), sheet.DisplayPreferences{ShowOptions: true})
	if len(qb.Blocks) != 1 || len(qb.Lead().Options) != 4 {
		t.Fatalf("layout not honored: %+v", qb.Blocks)
	}
}
