package sheet

// Input is everything one render invocation needs.
type Input struct {
	Questions   []Question         `json:"questions"`
	Preferences DisplayPreferences `json:"preferences"`
	Header      Header             `json:"header"`
	Subject     string             `json:"subject"`
}

// Document is the complete, constraint-annotated description of an exam
// sheet. Unsectioned is only used when no section has questions.
type Document struct {
	Header        Header             `json:"header"`
	Subject       string             `json:"subject"`
	Preferences   DisplayPreferences `json:"preferences"`
	TotalMarks    float64            `json:"total_marks"`
	QuestionCount int                `json:"question_count"`
	Sections      []Section          `json:"sections,omitempty"`
	Unsectioned   []QuestionBlocks   `json:"unsectioned,omitempty"`
}

// Entries returns every question's blocks in document order.
func (d Document) Entries() []QuestionBlocks {
	if len(d.Sections) == 0 {
		return d.Unsectioned
	}
	var out []QuestionBlocks
	for _, s := range d.Sections {
		out = append(out, s.Entries...)
	}
	return out
}

// Assembler composes documents with a configured block builder.
type Assembler struct {
	Builder Builder
}

// Assemble composes with the default builder.
func Assemble(in Input) Document { return Assembler{}.Assemble(in) }

func (a Assembler) Assemble(in Input) Document {
	prefs := in.Preferences
	if prefs.Language == "" {
		prefs.Language = LangPrimary
	}
	doc := Document{
		Header:        in.Header,
		Subject:       in.Subject,
		Preferences:   prefs,
		TotalMarks:    TotalMarks(in.Questions),
		QuestionCount: len(in.Questions),
		Sections:      ComposeSections(in.Questions, prefs, a.Builder),
	}
	if len(doc.Sections) == 0 {
		doc.Unsectioned = make([]QuestionBlocks, 0, len(in.Questions))
		for i, q := range in.Questions {
			qb := a.Builder.Build(q, prefs)
			qb.Number = i + 1
			doc.Unsectioned = append(doc.Unsectioned, qb)
		}
	}
	return doc
}

// TotalMarks sums marks over all questions regardless of sections.
func TotalMarks(questions []Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.Marks
	}
	return total
}
