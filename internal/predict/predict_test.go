package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/quill/protocol"
)

func atEnd(text string) protocol.PredictionRequest {
	return protocol.PredictionRequest{CurrentText: text, Cursor: len([]rune(text))}
}

func TestFrequency_Predict(t *testing.T) {
	f := NewFrequency()
	cases := []struct {
		name string
		req  protocol.PredictionRequest
		want string
	}{
		{"trigram", atEnd("Please type the "), "word"},
		{"bigram", atEnd("I saw the "), "quick"},
		{"prefix space", atEnd("I saw the"), " quick"},
		{"suffix space", protocol.PredictionRequest{CurrentText: "the dog", Cursor: 4}, "quick "},
		{"unigram fallback", atEnd("xyzzy "), "the"},
		{"blank", atEnd("   "), ""},
		{"cursor clamped", protocol.PredictionRequest{CurrentText: "I saw the ", Cursor: 99}, "quick"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.Predict(context.Background(), tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFrequency_Learn(t *testing.T) {
	f := NewFrequency()
	f.Learn("zebra crossing. zebra crossing.")
	got, err := f.Predict(context.Background(), atEnd("a zebra "))
	require.NoError(t, err)
	assert.Equal(t, "crossing", got)
}

func TestRules_Predict(t *testing.T) {
	r := NewRules()
	cases := []struct {
		text, want string
	}{
		{"I like th", "e"},
		{"in the ", "quick"},
		{"What ", "is"},
		{"Hello ", "is"},
		{"We walked ", "and"},
		{"", ""},
	}
	for _, tc := range cases {
		got, err := r.Predict(context.Background(), atEnd(tc.text))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestPredict_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFrequency().Predict(ctx, atEnd("the "))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	for _, name := range Engines() {
		p, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}
	_, err := New("mock_ai")
	assert.ErrorIs(t, err, ErrUnknownEngine)
}
