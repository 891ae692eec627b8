package predict

import (
	"context"
	"sort"
	"strings"

	"github.com/iw2rmb/quill/protocol"
)

var commonWords = strings.Fields(`the be to of and a in that have i it for not on with he as you
do at this but his by from they we say her she or an will my one all would there their what so
up out if about who get which go me when make can like time no just him know take people into
year your good some could them see other than then now look only come its over think also back
after use two how our work first well way even new want because any these give day most us`)

var bigramTable = map[string][]string{
	"the":   {"quick", "best", "most", "first", "last", "only", "same", "next"},
	"a":     {"new", "good", "great", "small", "large", "simple", "quick", "long"},
	"an":    {"example", "important", "interesting", "easy", "effective", "old"},
	"is":    {"a", "the", "not", "very", "also", "often", "always", "still"},
	"was":   {"a", "the", "not", "very", "also", "once", "never", "still"},
	"are":   {"not", "also", "very", "often", "always", "still", "usually"},
	"will":  {"be", "not", "also", "never", "always", "probably", "definitely"},
	"can":   {"be", "not", "also", "never", "always", "often", "sometimes"},
	"have":  {"been", "not", "also", "never", "always", "often", "already"},
	"this":  {"is", "was", "will", "can", "should", "might", "would"},
	"that":  {"is", "was", "will", "can", "should", "might", "would"},
	"in":    {"the", "a", "this", "that", "order", "fact", "general"},
	"on":    {"the", "a", "this", "that", "top", "behalf", "time"},
	"at":    {"the", "a", "this", "that", "least", "most", "first"},
	"for":   {"the", "a", "this", "that", "example", "instance"},
	"with":  {"the", "a", "this", "that", "respect", "regard"},
	"by":    {"the", "a", "this", "that", "way", "means", "using"},
	"to":    {"be", "have", "do", "get", "make", "take", "go", "come"},
	"of":    {"the", "a", "this", "that", "course", "all", "some"},
	"and":   {"the", "a", "this", "that", "then", "so", "also"},
	"or":    {"not", "a", "the", "more", "less", "other", "another"},
	"but":   {"not", "also", "the", "it", "they", "we", "I"},
	"if":    {"you", "we", "they", "it", "the", "not", "possible"},
	"when":  {"you", "we", "they", "it", "the", "not", "possible"},
	"where": {"you", "we", "they", "it", "the", "not", "possible"},
	"how":   {"to", "do", "can", "will", "would", "should", "might"},
	"what":  {"is", "was", "will", "can", "should", "might", "would"},
	"who":   {"is", "was", "will", "can", "should", "might", "would"},
	"why":   {"is", "was", "will", "can", "should", "might", "would"},
}

var completions = map[string][]string{
	"th": {"the", "that", "this", "then", "they", "them", "there", "think", "through"},
	"wh": {"what", "when", "where", "which", "who", "why", "while", "white"},
	"st": {"start", "stop", "still", "study", "student", "strong", "story"},
	"pr": {"provide", "problem", "process", "program", "project", "present", "previous"},
	"ex": {"example", "experience", "expect", "explain", "express", "excellent"},
	"in": {"information", "include", "increase", "interest", "important", "instead"},
	"de": {"development", "design", "decision", "description", "detail", "determine"},
	"re": {"result", "research", "report", "reason", "remember", "really", "recent"},
	"co": {"company", "computer", "continue", "complete", "consider", "control"},
	"un": {"understand", "under", "university", "until", "unless", "unique"},
}

var questionWords = []string{"what", "how", "why", "when", "where", "who"}

// Rules predicts from fixed tables: completion of a partial word, the
// usual follower of a finished word, and sentence-shape heuristics.
type Rules struct{}

func NewRules() *Rules { return &Rules{} }

func (*Rules) Name() string { return Statistical }

func (r *Rules) Predict(ctx context.Context, req protocol.PredictionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	before, after := split(req)
	if strings.TrimSpace(before) == "" {
		return "", nil
	}
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return "", nil
	}
	last := strings.ToLower(fields[len(fields)-1])
	finished := strings.HasSuffix(before, " ")

	if !finished {
		if c := partialCompletions(last); len(c) > 0 && strings.HasPrefix(c[0], last) {
			if rest := c[0][len(last):]; rest != "" {
				// The completion continues the word, so it takes no prefix.
				p := rest
				if after != "" && !strings.HasPrefix(after, " ") {
					p += " "
				}
				return p, nil
			}
		}
	}
	if finished {
		if next, ok := bigramTable[last]; ok {
			return pad(next[0], before, after), nil
		}
	}

	lower := strings.ToLower(before)
	trimmed := strings.TrimSpace(lower)
	var p string
	switch {
	case hasAnyPrefix(trimmed, questionWords):
		p = "is the answer to this question"
	case len(fields) == 1 && finished:
		switch last {
		case "the", "a", "an":
			p = "user"
		case "this", "that":
			p = "is"
		case "i", "we", "you", "they":
			p = "are"
		default:
			p = "is"
		}
	}
	if p == "" {
		p = byEnding(last)
	}
	return pad(p, before, after), nil
}

func partialCompletions(partial string) []string {
	if len([]rune(partial)) < 2 {
		return nil
	}
	seen := make(map[string]struct{})
	for prefix, ws := range completions {
		if !strings.HasPrefix(partial, prefix) {
			continue
		}
		for _, w := range ws {
			if strings.HasPrefix(w, partial) {
				seen[w] = struct{}{}
			}
		}
	}
	for _, w := range commonWords {
		if strings.HasPrefix(w, partial) && w != partial {
			seen[w] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func byEnding(w string) string {
	switch {
	case strings.HasSuffix(w, "ing"), strings.HasSuffix(w, "ly"):
		return "the"
	case strings.HasSuffix(w, "ed"):
		return "and"
	case strings.HasSuffix(w, "er"):
		return "is"
	default:
		return "and"
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
