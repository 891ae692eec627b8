package predict

import (
	"context"
	"strings"
	"sync"

	"github.com/iw2rmb/quill/protocol"
)

const seedText = `
The quick brown fox jumps over the lazy dog. This is a sample text.
We need to provide some basic patterns for prediction. The system
should be able to predict common word sequences. For example, when
you type the word the, it might suggest quick or best or most.
A good prediction system will help users write more efficiently.
`

// Frequency predicts from word, bigram and trigram counts. It starts from a
// small seed text and learns from every text passed to Learn.
type Frequency struct {
	mu       sync.RWMutex
	unigrams *counter
	bigrams  map[string]*counter
	trigrams map[string]*counter
}

func NewFrequency() *Frequency {
	f := &Frequency{
		unigrams: newCounter(),
		bigrams:  make(map[string]*counter),
		trigrams: make(map[string]*counter),
	}
	f.Learn(seedText)
	return f
}

func (f *Frequency) Name() string { return FrequencyBased }

// Learn adds the word sequences of text to the model.
func (f *Frequency) Learn(text string) {
	ws := words(text)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, w := range ws {
		f.unigrams.add(w)
		if i+1 < len(ws) {
			bump(f.bigrams, w, ws[i+1])
		}
		if i+2 < len(ws) {
			bump(f.trigrams, w+" "+ws[i+1], ws[i+2])
		}
	}
}

func bump(m map[string]*counter, key, w string) {
	c, ok := m[key]
	if !ok {
		c = newCounter()
		m[key] = c
	}
	c.add(w)
}

// Predict tries the trigram of the last two words, then the bigram of the
// last word, then the most frequent word other than the last one.
func (f *Frequency) Predict(ctx context.Context, req protocol.PredictionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	before, after := split(req)
	if strings.TrimSpace(before) == "" {
		return "", nil
	}
	ws := words(before)
	if len(ws) == 0 {
		return "", nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var p string
	if len(ws) >= 2 {
		if c, ok := f.trigrams[ws[len(ws)-2]+" "+ws[len(ws)-1]]; ok {
			p, _ = c.best()
		}
	}
	last := ws[len(ws)-1]
	if p == "" {
		if c, ok := f.bigrams[last]; ok {
			p, _ = c.best()
		}
	}
	if p == "" {
		for _, w := range f.unigrams.top(10) {
			if w != last {
				p = w
				break
			}
		}
	}
	return pad(p, before, after), nil
}
