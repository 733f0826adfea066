package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// QuestionType distinguishes single-answer from multi-answer questions.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "single"
	QuestionTypeMultiple QuestionType = "multiple"
)

// Question is the canonical, normalized form of a bank record.
// Answer holds sorted, distinct 1-based option indices.
type Question struct {
	ID          QuestionID   `json:"id"`
	Type        QuestionType `json:"type"`
	Question    string       `json:"question"`
	Options     []string     `json:"options"`
	Answer      []int        `json:"answer"`
	Weight      float64      `json:"weight"`
	Explanation string       `json:"explanation,omitempty"`
	Image       string       `json:"image,omitempty"`
}

// RawQuestion is a bank record as authored, before normalization.
type RawQuestion struct {
	ID          QuestionID `json:"id" yaml:"id"`
	Type        string     `json:"type" yaml:"type"`
	Question    string     `json:"question" yaml:"question" binding:"required"`
	Options     []string   `json:"options" yaml:"options" binding:"required,min=1,dive,required"`
	Answer      AnswerKeys `json:"answer" yaml:"answer" binding:"required,min=1"`
	Weight      float64    `json:"weight,omitempty" yaml:"weight"`
	Explanation string     `json:"explanation,omitempty" yaml:"explanation"`
	Image       string     `json:"image,omitempty" yaml:"image"`
}

// ─── Question ID ───────────────────────────────────────────────────────

// QuestionID is a stable question identifier. Bank files use either
// numbers or strings; the original form is kept so exports round-trip.
type QuestionID struct {
	value   string
	numeric bool
}

// StringID builds a string identifier.
func StringID(s string) QuestionID {
	return QuestionID{value: s}
}

// NumericID builds a numeric identifier.
func NumericID(n int) QuestionID {
	return QuestionID{value: strconv.Itoa(n), numeric: true}
}

// NewQuestionID rebuilds an identifier from its stored text form.
func NewQuestionID(value string, numeric bool) QuestionID {
	return QuestionID{value: value, numeric: numeric}
}

func (id QuestionID) String() string { return id.value }
func (id QuestionID) IsZero() bool { return id.value == "" }
func (id QuestionID) IsNumeric() bool {
	return id.numeric
}

func (id QuestionID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = QuestionID{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("question id: %w", err)
		}
		*id = QuestionID{value: n.String(), numeric: true}
	}
	return nil
}

// UnmarshalYAML keeps YAML numbers numeric but stores them in JSON number
// syntax, so hex, octal and signed forms export cleanly.
func (id *QuestionID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("question id: expected scalar at line %d", node.Line)
	}
	switch node.Tag {
	case "!!int":
		var n int64
		if err := node.Decode(&n); err != nil {
			// Out of int64 range; keep the digits as text.
			*id = StringID(node.Value)
			return nil
		}
		*id = QuestionID{value: strconv.FormatInt(n, 10), numeric: true}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			*id = StringID(node.Value)
			return nil
		}
		if json.Valid([]byte(node.Value)) {
			*id = QuestionID{value: node.Value, numeric: true}
			return nil
		}
		*id = QuestionID{value: strconv.FormatFloat(f, 'f', -1, 64), numeric: true}
	case "!!null":
		*id = QuestionID{}
	default:
		*id = StringID(node.Value)
	}
	return nil
}

// ─── Answer keys ───────────────────────────────────────────────────────

// AnswerKey is one raw answer key: a letter ("A", "b"), a numeric string
// ("2") or a number (2). Anything else is kept as-is so the normalizer can
// report it.
type AnswerKey struct {
	raw any
}

// LetterKey and IndexKey build keys in code and tests.
func LetterKey(s string) AnswerKey { return AnswerKey{raw: s} }
func IndexKey(n int) AnswerKey     { return AnswerKey{raw: n} }

// Raw returns the decoded value: string, int, json.Number, float64 or nil.
func (k AnswerKey) Raw() any { return k.raw }

func (k AnswerKey) String() string { return fmt.Sprint(k.raw) }

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.raw)
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("answer key: %w", err)
	}
	k.raw = v
	return nil
}

func (k *AnswerKey) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		k.raw = v
		return nil
	}
	switch node.Tag {
	case "!!int":
		n, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("answer key: %w", err)
		}
		k.raw = n
	case "!!float":
		k.raw = json.Number(node.Value)
	default:
		k.raw = node.Value
	}
	return nil
}

// AnswerKeys accepts either a list of keys or a single scalar key.
type AnswerKeys []AnswerKey

func (ks *AnswerKeys) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ks = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []AnswerKey
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*ks = list
		return nil
	}
	var single AnswerKey
	if err := single.UnmarshalJSON(data); err != nil {
		return err
	}
	*ks = AnswerKeys{single}
	return nil
}

func (ks *AnswerKeys) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		list := make([]AnswerKey, 0, len(node.Content))
		for _, child := range node.Content {
			var k AnswerKey
			if err := k.UnmarshalYAML(child); err != nil {
				return err
			}
			list = append(list, k)
		}
		*ks = list
		return nil
	}
	var single AnswerKey
	if err := single.UnmarshalYAML(node); err != nil {
		return err
	}
	*ks = AnswerKeys{single}
	return nil
}
