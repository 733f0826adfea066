package qbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stemsi/exstem-practice/internal/model"
)

// Format is the serialization of a bank document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnsupportedFormat is returned for bank files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported bank format")

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Decode parses a bank document. Both a bare list of records and a
// {"questions": [...]} wrapper are accepted.
func Decode(data []byte, format Format) ([]model.RawQuestion, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func DecodeJSON(data []byte) ([]model.RawQuestion, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("decode bank: empty document")
	}

	if data[0] == '[' {
		var list []model.RawQuestion
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode bank: %w", err)
		}
		return list, nil
	}

	var doc model.QuestionBank
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if doc.Questions == nil {
		return nil, errors.New(`decode bank: object has no "questions" list`)
	}
	return doc.Questions, nil
}

func DecodeYAML(data []byte) ([]model.RawQuestion, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("decode bank: empty document")
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var list []model.RawQuestion
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode bank: %w", err)
		}
		return list, nil
	case yaml.MappingNode:
		var doc model.QuestionBank
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode bank: %w", err)
		}
		if doc.Questions == nil {
			return nil, errors.New(`decode bank: mapping has no "questions" list`)
		}
		return doc.Questions, nil
	default:
		return nil, fmt.Errorf("decode bank: unexpected yaml node at line %d", node.Line)
	}
}
