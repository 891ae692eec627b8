// Package predict holds the assistant server's next-token predictors.
package predict

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/iw2rmb/quill/protocol"
)

const (
	FrequencyBased = "frequency_based"
	Statistical    = "statistical"
)

// ErrUnknownEngine is returned by New for an unregistered engine name.
var ErrUnknownEngine = errors.New("predict: unknown engine")

// Predictor continues the text at a request's cursor. An empty prediction
// means there is nothing to suggest.
type Predictor interface {
	Name() string
	Predict(ctx context.Context, req protocol.PredictionRequest) (string, error)
}

// Engines lists the registered engine names.
func Engines() []string { return []string{FrequencyBased, Statistical} }

// New returns the predictor registered under name.
func New(name string) (Predictor, error) {
	switch name {
	case FrequencyBased, "frequency":
		return NewFrequency(), nil
	case Statistical, "traditional":
		return NewRules(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

func words(s string) []string {
	return wordRE.FindAllString(strings.ToLower(s), -1)
}

// split cuts the current paragraph at the request cursor, in runes.
func split(req protocol.PredictionRequest) (before, after string) {
	rs := []rune(req.CurrentText)
	c := req.Cursor
	if c < 0 {
		c = 0
	}
	if c > len(rs) {
		c = len(rs)
	}
	return string(rs[:c]), string(rs[c:])
}

// pad surrounds p with the spaces needed to sit between before and after.
func pad(p, before, after string) string {
	if p == "" {
		return ""
	}
	if before != "" && !strings.HasSuffix(before, " ") {
		p = " " + p
	}
	if after != "" && !strings.HasPrefix(after, " ") {
		p += " "
	}
	return p
}

// counter counts words, breaking ties by first appearance.
type counter struct {
	n     map[string]int
	order map[string]int
}

func newCounter() *counter {
	return &counter{n: make(map[string]int), order: make(map[string]int)}
}

func (c *counter) add(w string) {
	if _, ok := c.order[w]; !ok {
		c.order[w] = len(c.order)
	}
	c.n[w]++
}

// top returns up to k words, most frequent first.
func (c *counter) top(k int) []string {
	out := make([]string, 0, len(c.n))
	for w := range c.n {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c.n[a] != c.n[b] {
			return c.n[a] > c.n[b]
		}
		return c.order[a] < c.order[b]
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func (c *counter) best() (string, bool) {
	top := c.top(1)
	if len(top) == 0 {
		return "", false
	}
	return top[0], true
}
