package qbank

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-practice/internal/model"
)

func raw(question string, options []string, keys ...model.AnswerKey) model.RawQuestion {
	return model.RawQuestion{Question: question, Options: options, Answer: keys}
}

func TestAnswerIndex(t *testing.T) {
	tests := []struct {
		name string
		key  model.AnswerKey
		want int
		ok   bool
	}{
		{"upper letter", model.LetterKey("A"), 1, true},
		{"lower letter", model.LetterKey("b"), 2, true},
		{"padded letter", model.LetterKey("  c "), 3, true},
		{"numeric string", model.LetterKey("4"), 4, true},
		{"int", model.IndexKey(2), 2, true},
		{"nil key", model.AnswerKey{}, 0, false},
		{"word", model.LetterKey("AB"), 0, false},
		{"empty", model.LetterKey(""), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AnswerIndex(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnswerIndex_JSONNumbers(t *testing.T) {
	var keys model.AnswerKeys
	require.NoError(t, json.Unmarshal([]byte(`[2, 3.0, 1.5]`), &keys))
	require.Len(t, keys, 3)

	idx, ok := AnswerIndex(keys[0])
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = AnswerIndex(keys[1])
	assert.True(t, ok)
	assert.Equal(t, 3, idx)

	_, ok = AnswerIndex(keys[2])
	assert.False(t, ok)
}

func TestNormalize_LetterAndNumberAreEquivalent(t *testing.T) {
	opts := []string{"red", "green", "blue"}
	byLetter, err := Normalize([]model.RawQuestion{raw("q", opts, model.LetterKey("b"))})
	require.NoError(t, err)
	byNumber, err := Normalize([]model.RawQuestion{raw("q", opts, model.IndexKey(2))})
	require.NoError(t, err)
	byString, err := Normalize([]model.RawQuestion{raw("q", opts, model.LetterKey("2"))})
	require.NoError(t, err)

	assert.Equal(t, []int{2}, byLetter[0].Answer)
	assert.Equal(t, byLetter[0].Answer, byNumber[0].Answer)
	assert.Equal(t, byLetter[0].Answer, byString[0].Answer)
}

func TestNormalize_Defaults(t *testing.T) {
	in := []model.RawQuestion{
		raw("one", []string{"a", "b"}, model.LetterKey("A")),
		raw("many", []string{"a", "b", "c"}, model.LetterKey("c"), model.LetterKey("a"), model.LetterKey("A")),
	}
	in[1].Weight = -3

	out, err := Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "1", out[0].ID.String())
	assert.True(t, out[0].ID.IsNumeric())
	assert.Equal(t, model.QuestionTypeSingle, out[0].Type)
	assert.Equal(t, 1.0, out[0].Weight)

	assert.Equal(t, "2", out[1].ID.String())
	assert.Equal(t, model.QuestionTypeMultiple, out[1].Type)
	assert.Equal(t, []int{1, 3}, out[1].Answer)
	assert.Equal(t, 1.0, out[1].Weight)
}

func TestNormalize_AnswerIndicesInRange(t *testing.T) {
	in := []model.RawQuestion{
		raw("a", []string{"x", "y"}, model.LetterKey("B")),
		raw("b", []string{"x", "y", "z", "w"}, model.IndexKey(4), model.LetterKey("a")),
	}
	in[1].Type = "multiple"

	out, err := Normalize(in)
	require.NoError(t, err)
	for _, q := range out {
		require.NotEmpty(t, q.Answer)
		for _, a := range q.Answer {
			assert.GreaterOrEqual(t, a, 1)
			assert.LessOrEqual(t, a, len(q.Options))
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		rec   model.RawQuestion
		field string
	}{
		{"out of range letter", raw("q", []string{"a", "b"}, model.LetterKey("E")), "answer"},
		{"zero index", raw("q", []string{"a", "b"}, model.IndexKey(0)), "answer"},
		{"unrecognized key", raw("q", []string{"a", "b"}, model.LetterKey("yes")), "answer"},
		{"no options", raw("q", nil, model.LetterKey("A")), "options"},
		{"blank option", raw("q", []string{"a", "  "}, model.LetterKey("A")), "options[1]"},
		{"missing question", raw("", []string{"a"}, model.LetterKey("A")), "question"},
		{"missing answer", raw("q", []string{"a"}), "answer"},
		{"unknown type", model.RawQuestion{Type: "essay", Question: "q", Options: []string{"a"}, Answer: model.AnswerKeys{model.LetterKey("A")}}, "type"},
		{"infinite weight", model.RawQuestion{Question: "q", Options: []string{"a"}, Answer: model.AnswerKeys{model.LetterKey("A")}, Weight: math.Inf(1)}, "weight"},
		{"negative infinite weight", model.RawQuestion{Question: "q", Options: []string{"a"}, Answer: model.AnswerKeys{model.LetterKey("A")}, Weight: math.Inf(-1)}, "weight"},
		{"single with two keys", model.RawQuestion{Type: "single", Question: "q", Options: []string{"a", "b"}, Answer: model.AnswerKeys{model.LetterKey("A"), model.LetterKey("B")}}, "answer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize([]model.RawQuestion{tt.rec})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrInvalidQuestion))

			ves := ValidationErrors(err)
			require.Len(t, ves, 1)
			assert.Equal(t, 0, ves[0].Index)
			assert.Contains(t, ves[0].Fields, tt.field)
		})
	}
}

func TestNormalize_RejectsYAMLInfinity(t *testing.T) {
	recs, err := DecodeYAML([]byte("- {question: q, options: [a, b], answer: A, weight: .inf}\n"))
	require.NoError(t, err)

	_, err = Normalize(recs)
	require.ErrorIs(t, err, ErrInvalidQuestion)
	ves := ValidationErrors(err)
	require.Len(t, ves, 1)
	assert.Contains(t, ves[0].Fields, "weight")
}

func TestNormalize_OneBadRecordAbortsBank(t *testing.T) {
	in := []model.RawQuestion{
		raw("good", []string{"a", "b"}, model.LetterKey("A")),
		raw("bad", []string{"a", "b"}, model.LetterKey("Z")),
		raw("good", []string{"a", "b"}, model.LetterKey("B")),
		raw("", []string{"a"}, model.LetterKey("A")),
	}

	out, err := Normalize(in)
	require.Error(t, err)
	assert.Nil(t, out)

	ves := ValidationErrors(err)
	require.Len(t, ves, 2)
	assert.Equal(t, 1, ves[0].Index)
	assert.Equal(t, 3, ves[1].Index)
	assert.Contains(t, err.Error(), "question #2 (id 2)")
}

func TestNormalize_DuplicateIDs(t *testing.T) {
	a := raw("a", []string{"x"}, model.LetterKey("A"))
	a.ID = model.StringID("q-1")
	b := raw("b", []string{"x"}, model.LetterKey("A"))
	b.ID = model.StringID("q-1")

	_, err := Normalize([]model.RawQuestion{a, b})
	require.Error(t, err)

	ves := ValidationErrors(err)
	require.Len(t, ves, 1)
	assert.Equal(t, 1, ves[0].Index)
	assert.Contains(t, ves[0].Fields["id"], "duplicate of question #1")
}
