package sheet

// SectionID identifies a document section.
type SectionID string

const (
	SectionA SectionID = "A"
	SectionB SectionID = "B"
	SectionC SectionID = "C"
)

// SectionOrder is the order sections appear in a document.
var SectionOrder = []SectionID{SectionA, SectionB, SectionC}

// Classify maps a question kind to its section. Choice kinds go to A,
// numerical kinds to B and everything else to C.
func Classify(k Kind) SectionID {
	switch k {
	case KindMCQ, KindMSQ, KindTrueFalse:
		return SectionA
	case KindInteger, KindFillBlank:
		return SectionB
	default:
		return SectionC
	}
}

// Partition splits questions by section, keeping input order inside each.
func Partition(questions []Question) map[SectionID][]Question {
	out := make(map[SectionID][]Question, len(SectionOrder))
	for _, q := range questions {
		id := Classify(q.Kind)
		out[id] = append(out[id], q)
	}
	return out
}
