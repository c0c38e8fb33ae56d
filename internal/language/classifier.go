package language

// NegativePenalty is subtracted from a language's score for every matching negative pattern.
const NegativePenalty = 2

// LabelNone is the verdict label when no language scores above zero.
const LabelNone = "none"

// Verdict is the classifier's best guess for a snippet.
type Verdict struct {
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Detected reports whether the verdict names a language.
func (v Verdict) Detected() bool {
	return v.Label != LabelNone
}

// Score is the per-language breakdown of a classification.
type Score struct {
	Label     string `json:"label"`
	Positives int    `json:"positives"`
	Negatives int    `json:"negatives"`
	Score     int    `json:"score"`
}

// Classify scores snippet against the registered signatures.
func Classify(snippet string) Verdict {
	return ClassifyWith(signatures, snippet)
}

// ClassifyWith scores snippet against table. Each pattern counts at most once.
// The strictly greatest positive score wins; ties keep the earliest entry.
func ClassifyWith(table []Signature, snippet string) Verdict {
	best := Verdict{Label: LabelNone}
	for _, s := range ScoresWith(table, snippet) {
		if s.Score > 0 && s.Score > best.Score {
			best = Verdict{Label: s.Label, Score: s.Score}
		}
	}
	return best
}

// Scores returns every registered language's score for snippet, in declaration order.
func Scores(snippet string) []Score {
	return ScoresWith(signatures, snippet)
}

// ScoresWith returns every entry's score in table order.
func ScoresWith(table []Signature, snippet string) []Score {
	scores := make([]Score, 0, len(table))
	for _, sig := range table {
		s := Score{Label: sig.Name}
		for _, re := range sig.Positive {
			if re.MatchString(snippet) {
				s.Positives++
			}
		}
		for _, re := range sig.Negative {
			if re.MatchString(snippet) {
				s.Negatives++
			}
		}
		s.Score = s.Positives - NegativePenalty*s.Negatives
		scores = append(scores, s)
	}
	return scores
}
