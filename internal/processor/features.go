package processor

import (
	"sort"
	"strings"

	"interpreteval/internal/loader"
)

// Tokenize splits text on whitespace. All length, OOV and frequency
// features share this tokenization.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// TrainingStats holds vocabulary statistics accumulated from a training
// set, backing the features that need them.
type TrainingStats struct {
	counts map[string]int
	rank   map[string]int // 1 = most frequent
}

// NewTrainingStats builds vocabulary counts and frequency ranks from
// training texts.
func NewTrainingStats(texts []string) *TrainingStats {
	counts := map[string]int{}
	for _, t := range texts {
		for _, tok := range Tokenize(t) {
			counts[tok]++
		}
	}
	type tc struct {
		tok string
		n   int
	}
	ordered := make([]tc, 0, len(counts))
	for tok, n := range counts {
		ordered = append(ordered, tc{tok, n})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].n != ordered[j].n {
			return ordered[i].n > ordered[j].n
		}
		return ordered[i].tok < ordered[j].tok
	})
	rank := make(map[string]int, len(ordered))
	for i, e := range ordered {
		rank[e.tok] = i + 1
	}
	return &TrainingStats{counts: counts, rank: rank}
}

// TrainingFromSamples builds TrainingStats from one field of training
// samples. Text fields are tokenized; token-slice fields (CoNLL sentences)
// contribute their tokens directly. Samples missing the field are skipped.
func TrainingFromSamples(samples []loader.Sample, field string) *TrainingStats {
	var texts []string
	for _, s := range samples {
		switch v := s[field].(type) {
		case string:
			texts = append(texts, v)
		case []string:
			texts = append(texts, strings.Join(v, " "))
		}
	}
	return NewTrainingStats(texts)
}

// VocabSize returns the number of distinct training tokens.
func (tr *TrainingStats) VocabSize() int { return len(tr.counts) }

// Contains reports whether the token was seen during training.
func (tr *TrainingStats) Contains(tok string) bool {
	_, ok := tr.counts[tok]
	return ok
}

// Rank returns the token's frequency rank, or vocab size + 1 for unseen
// tokens so that rarer always means larger.
func (tr *TrainingStats) Rank(tok string) int {
	if r, ok := tr.rank[tok]; ok {
		return r
	}
	return len(tr.rank) + 1
}

// --- derived feature constructors ---

// tokenCount counts tokens of a text field.
func tokenCount(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		t, ok := s[field].(string)
		if !ok {
			return nil, false
		}
		return float64(len(Tokenize(t))), true
	}
}

// charCount counts characters of a text field.
func charCount(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		t, ok := s[field].(string)
		if !ok {
			return nil, false
		}
		return float64(len([]rune(t))), true
	}
}

// oovCount counts tokens unseen in the training vocabulary.
func oovCount(field string) featureFunc {
	return func(s loader.Sample, tr *TrainingStats) (any, bool) {
		t, ok := s[field].(string)
		if !ok || tr == nil {
			return nil, false
		}
		n := 0.0
		for _, tok := range Tokenize(t) {
			if !tr.Contains(tok) {
				n++
			}
		}
		return n, true
	}
}

// freqRank averages the training-frequency rank over the tokens of a text
// field. Larger means rarer words.
func freqRank(field string) featureFunc {
	return func(s loader.Sample, tr *TrainingStats) (any, bool) {
		t, ok := s[field].(string)
		if !ok || tr == nil {
			return nil, false
		}
		toks := Tokenize(t)
		if len(toks) == 0 {
			return 0.0, true
		}
		sum := 0.0
		for _, tok := range toks {
			sum += float64(tr.Rank(tok))
		}
		return sum / float64(len(toks)), true
	}
}

// tokenRatio divides the token counts of two text fields.
func tokenRatio(num, den string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		n, nok := s[num].(string)
		d, dok := s[den].(string)
		if !nok || !dok {
			return nil, false
		}
		dTokens := len(Tokenize(d))
		if dTokens == 0 {
			return nil, false
		}
		return float64(len(Tokenize(n))) / float64(dTokens), true
	}
}

// seqLength counts elements of a string-slice field, such as tokens of a
// tagged sentence.
func seqLength(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		seq, err := sampleStrings(s, field)
		if err != nil {
			return nil, false
		}
		return float64(len(seq)), true
	}
}

// spanCount counts BIO spans of a tag-sequence field.
func spanCount(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		tags, err := sampleStrings(s, field)
		if err != nil {
			return nil, false
		}
		n := 0.0
		prevType := ""
		for _, tag := range tags {
			switch {
			case tag == "O" || tag == "":
				prevType = ""
			case strings.HasPrefix(tag, "B-"):
				n++
				prevType = tag[2:]
			case strings.HasPrefix(tag, "I-"):
				if tag[2:] != prevType {
					n++
					prevType = tag[2:]
				}
			default:
				n++
				prevType = ""
			}
		}
		return n, true
	}
}

// copyFloat exposes a numeric sample field as a feature when present.
func copyFloat(field string) featureFunc {
	return func(s loader.Sample, _ *TrainingStats) (any, bool) {
		v, err := sampleFloat(s, field)
		if err != nil {
			return nil, false
		}
		return v, true
	}
}
