// Package sheet composes exam questions into print-safe sheet documents.
package sheet

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Language selects a localized prompt.
type Language string

const (
	LangPrimary   Language = "en"
	LangSecondary Language = "hi"
)

// Other returns the single fallback language.
func (l Language) Other() Language {
	if l == LangSecondary {
		return LangPrimary
	}
	return LangSecondary
}

// Kind is the upstream question kind.
type Kind string

const (
	KindMCQ           Kind = "MCQ"
	KindMSQ           Kind = "MSQ"
	KindTrueFalse     Kind = "TRUE_FALSE"
	KindInteger       Kind = "INTEGER"
	KindFillBlank     Kind = "FILL_BLANK"
	KindComprehension Kind = "COMPREHENSION_PASSAGE"
)

// ImageVersion accepts both numeric and string versions from upstream JSON.
type ImageVersion string

func (v *ImageVersion) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*v = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = ImageVersion(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = ImageVersion(n.String())
	return nil
}

type Image struct {
	URL      string       `json:"url,omitempty"`
	PublicID string       `json:"publicId,omitempty"`
	Version  ImageVersion `json:"version,omitempty"`
	Alt      string       `json:"alt,omitempty"`
}

type Option struct {
	Identifier string  `json:"identifier"`
	Content    string  `json:"content"`
	Images     []Image `json:"images,omitempty"`
}

type LocalizedPrompt struct {
	Content           string   `json:"content"`
	Options           []Option `json:"options,omitempty"`
	Images            []Image  `json:"images,omitempty"`
	Explanation       string   `json:"explanation,omitempty"`
	ExplanationImages []Image  `json:"explanationImages,omitempty"`
}

// Answer is the correct-answer descriptor: either a set of option identifiers
// or a single integer/free-text value.
type Answer struct {
	Identifiers []string `json:"identifiers,omitempty"`
	Value       string   `json:"value,omitempty"`
}

func (a Answer) Has(identifier string) bool {
	for _, id := range a.Identifiers {
		if id == identifier {
			return true
		}
	}
	return false
}

// UnmarshalJSON tolerates numeric values ("value": 42) as well as strings.
func (a *Answer) UnmarshalJSON(b []byte) error {
	var raw struct {
		Identifiers []string        `json:"identifiers"`
		Value       json.RawMessage `json:"value"`
		Integer     json.RawMessage `json:"integer"`
		Text        string          `json:"text"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	a.Identifiers = raw.Identifiers
	a.Value = ""
	for _, v := range []json.RawMessage{raw.Value, raw.Integer} {
		if s := rawScalar(v); s != "" {
			a.Value = s
			return nil
		}
	}
	a.Value = raw.Text
	return nil
}

func rawScalar(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
		return ""
	}
	return s
}

type Question struct {
	ID         string                       `json:"_id"`
	Kind       Kind                         `json:"kind"`
	Marks      float64                      `json:"marks"`
	NegMarks   float64                      `json:"negMarks"`
	Correct    Answer                       `json:"correct"`
	Prompt     map[Language]LocalizedPrompt `json:"prompt"`
	Year       int                          `json:"year,omitempty"`
	PaperTitle string                       `json:"paperTitle,omitempty"`
	IsActive   *bool                        `json:"isActive,omitempty"`
}

// Active reports whether the question is active; a missing flag counts as active.
func (q Question) Active() bool { return q.IsActive == nil || *q.IsActive }

// Resolve returns the prompt for the preferred language, falling back to the
// other supported language. ok is false when neither exists.
func (q Question) Resolve(pref Language) (LocalizedPrompt, Language, bool) {
	if pref != LangPrimary && pref != LangSecondary {
		pref = LangPrimary
	}
	for _, l := range []Language{pref, pref.Other()} {
		if p, ok := q.Prompt[l]; ok && !p.empty() {
			return p, l, true
		}
	}
	return LocalizedPrompt{}, pref, false
}

// empty reports a prompt that carries nothing, as decoded from a JSON null.
func (p LocalizedPrompt) empty() bool {
	return p.Content == "" && len(p.Options) == 0 && len(p.Images) == 0 &&
		p.Explanation == "" && len(p.ExplanationImages) == 0
}

type DisplayPreferences struct {
	Language     Language `json:"language"`
	ShowOptions  bool     `json:"show_options"`
	ShowSolution bool     `json:"show_solution"`
}

// DefaultPreferences mirrors the print dialog's initial toggles.
func DefaultPreferences() DisplayPreferences {
	return DisplayPreferences{Language: LangPrimary, ShowOptions: true}
}

type Header struct {
	InstituteName string `json:"institute_name"`
	StudentName   string `json:"student_name,omitempty"`
	TestName      string `json:"test_name"`
	Date          string `json:"date"`
	Duration      string `json:"duration"`
}
