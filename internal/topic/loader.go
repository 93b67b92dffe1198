package topic

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taiwoajasa245/verse-courier/internal/corpus"
)

var ErrInvalidConfig = errors.New("invalid topic configuration")

// Load reads the topic and keyword files. Both accept YAML or JSON. The
// keyword file may be a mapping or a list of {keyword, topic}; either way
// document order is precedence order.
func Load(topicsPath, keywordsPath string) (*Catalog, error) {
	topicsData, err := os.ReadFile(topicsPath)
	if err != nil {
		return nil, fmt.Errorf("reading topics %s: %w", topicsPath, err)
	}
	topics, err := ParseTopics(topicsData)
	if err != nil {
		return nil, fmt.Errorf("parsing topics %s: %w", topicsPath, err)
	}

	var keywords []Keyword
	if keywordsPath != "" {
		kwData, err := os.ReadFile(keywordsPath)
		if err != nil {
			return nil, fmt.Errorf("reading keywords %s: %w", keywordsPath, err)
		}
		keywords, err = ParseKeywords(kwData)
		if err != nil {
			return nil, fmt.Errorf("parsing keywords %s: %w", keywordsPath, err)
		}
	}
	return NewCatalog(topics, keywords), nil
}

// ParseTopics decodes a {label: [{book, chapter, verse}, ...]} mapping,
// keeping label order.
func ParseTopics(data []byte) ([]Topic, error) {
	root, err := documentRoot(data)
	if err != nil || root == nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: topics must be a mapping", ErrInvalidConfig)
	}
	topics := make([]Topic, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		var refs []corpus.Ref
		if err := root.Content[i+1].Decode(&refs); err != nil {
			return nil, fmt.Errorf("%w: topic %q: %v", ErrInvalidConfig, root.Content[i].Value, err)
		}
		topics = append(topics, Topic{Label: root.Content[i].Value, Refs: refs})
	}
	return topics, nil
}

// ParseKeywords decodes the keyword precedence list.
func ParseKeywords(data []byte) ([]Keyword, error) {
	root, err := documentRoot(data)
	if err != nil || root == nil {
		return nil, err
	}
	switch root.Kind {
	case yaml.MappingNode:
		keywords := make([]Keyword, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			keywords = append(keywords, Keyword{
				Keyword: root.Content[i].Value,
				Topic:   root.Content[i+1].Value,
			})
		}
		return keywords, nil
	case yaml.SequenceNode:
		var keywords []Keyword
		if err := root.Decode(&keywords); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return keywords, nil
	default:
		return nil, fmt.Errorf("%w: keywords must be a mapping or a list", ErrInvalidConfig)
	}
}

func documentRoot(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return doc.Content[0], nil
}
