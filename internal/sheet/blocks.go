package sheet

import "strings"

// MissingContent replaces the text of a question whose prompt is absent in
// both languages.
const MissingContent = "Question content not available"

type BlockKind string

const (
	BlockLead         BlockKind = "lead"
	BlockContinuation BlockKind = "continuation"
)

// BlockRole names what a block carries besides (or instead of) question text.
type BlockRole string

const (
	RoleText              BlockRole = "text"
	RoleImages            BlockRole = "images"
	RoleOptions           BlockRole = "options"
	RoleAnswer            BlockRole = "answer"
	RoleExplanation       BlockRole = "explanation"
	RoleExplanationImages BlockRole = "explanation_images"
)

// OptionView is an option ready for display.
type OptionView struct {
	Identifier string     `json:"identifier"`
	Content    string     `json:"content"`
	Images     []ImageRef `json:"images,omitempty"`
	Correct    bool       `json:"correct,omitempty"`
}

// Block is one renderable unit of a question. An atomic block must never be
// split by a column or page break. Images and Options each hold at most one
// chunked row.
type Block struct {
	Kind    BlockKind    `json:"kind"`
	Role    BlockRole    `json:"role"`
	Atomic  bool         `json:"atomic"`
	Text    string       `json:"text,omitempty"`
	Images  []ImageRef   `json:"images,omitempty"`
	Options []OptionView `json:"options,omitempty"`
}

// QuestionBlocks is the block list of one question plus the metadata the
// section layer and renderers need.
type QuestionBlocks struct {
	Number     int      `json:"number"`
	QuestionID string   `json:"question_id"`
	Kind       Kind     `json:"kind"`
	Marks      float64  `json:"marks"`
	NegMarks   float64  `json:"neg_marks"`
	Language   Language `json:"language"`
	Year       int      `json:"year,omitempty"`
	PaperTitle string   `json:"paper_title,omitempty"`
	Blocks     []Block  `json:"blocks"`
}

// Lead returns the first block, which is always the atomic lead.
func (qb QuestionBlocks) Lead() Block {
	if len(qb.Blocks) == 0 {
		return Block{}
	}
	return qb.Blocks[0]
}

// Builder turns a question into its block list.
type Builder struct {
	Layout Layout
	Images ImageResolver
}

// BuildBlocks builds with the default layout and image resolver.
func BuildBlocks(q Question, prefs DisplayPreferences) QuestionBlocks {
	return Builder{}.Build(q, prefs)
}

func (b Builder) Build(q Question, prefs DisplayPreferences) QuestionBlocks {
	p, lang, ok := q.Resolve(prefs.Language)
	text := MissingContent
	if ok && strings.TrimSpace(p.Content) != "" {
		text = NormalizeMath(p.Content)
	}

	imageRows := Chunk(b.Images.Resolve(p.Images, "Question image"), b.Layout.imagesPerRow())
	var optionRows [][]OptionView
	if prefs.ShowOptions {
		optionRows = Chunk(b.options(q, p, prefs), b.Layout.optionsPerRow())
	}

	blocks := make([]Block, 0, 1+len(imageRows)+len(optionRows)+2)
	switch {
	case len(imageRows) > 0:
		blocks = append(blocks, Block{Kind: BlockLead, Role: RoleImages, Atomic: true, Text: text, Images: imageRows[0]})
		for _, row := range imageRows[1:] {
			blocks = append(blocks, Block{Kind: BlockContinuation, Role: RoleImages, Images: row})
		}
		for _, row := range optionRows {
			blocks = append(blocks, Block{Kind: BlockContinuation, Role: RoleOptions, Atomic: true, Options: row})
		}
	case len(optionRows) > 0:
		blocks = append(blocks, Block{Kind: BlockLead, Role: RoleOptions, Atomic: true, Text: text, Options: optionRows[0]})
		for _, row := range optionRows[1:] {
			blocks = append(blocks, Block{Kind: BlockContinuation, Role: RoleOptions, Atomic: true, Options: row})
		}
	default:
		blocks = append(blocks, Block{Kind: BlockLead, Role: RoleText, Atomic: true, Text: text})
	}

	if prefs.ShowSolution {
		blocks = append(blocks, b.solution(q, p)...)
	}

	return QuestionBlocks{
		QuestionID: q.ID,
		Kind:       q.Kind,
		Marks:      q.Marks,
		NegMarks:   q.NegMarks,
		Language:   lang,
		Year:       q.Year,
		PaperTitle: q.PaperTitle,
		Blocks:     blocks,
	}
}

func (b Builder) options(q Question, p LocalizedPrompt, prefs DisplayPreferences) []OptionView {
	out := make([]OptionView, 0, len(p.Options))
	for _, o := range p.Options {
		out = append(out, OptionView{
			Identifier: o.Identifier,
			Content:    NormalizeMath(o.Content),
			Images:     b.Images.Resolve(o.Images, "Option "+o.Identifier+" image"),
			Correct:    prefs.ShowSolution && q.Correct.Has(o.Identifier),
		})
	}
	return out
}

// solution returns the blocks appended after the question body when
// solutions are shown. None of them join the lead.
func (b Builder) solution(q Question, p LocalizedPrompt) []Block {
	var out []Block
	if v := strings.TrimSpace(q.Correct.Value); v != "" && len(q.Correct.Identifiers) == 0 {
		out = append(out, Block{Kind: BlockContinuation, Role: RoleAnswer, Atomic: true, Text: NormalizeMath(v)})
	}
	if strings.TrimSpace(p.Explanation) != "" {
		out = append(out, Block{Kind: BlockContinuation, Role: RoleExplanation, Text: NormalizeMath(p.Explanation)})
	}
	for _, row := range Chunk(b.Images.Resolve(p.ExplanationImages, "Explanation image"), b.Layout.imagesPerRow()) {
		out = append(out, Block{Kind: BlockContinuation, Role: RoleExplanationImages, Images: row})
	}
	return out
}
