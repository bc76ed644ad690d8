package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset is an ordered collection of evaluation test cases.
type Dataset struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Items       []Item `json:"items" yaml:"items"`
}

// Item is one test case: an input query plus the expectations the
// judges score against.
type Item struct {
	ID                     string     `json:"id" yaml:"id"`
	Category               string     `json:"category" yaml:"category"`
	Input                  string     `json:"input" yaml:"input"`
	ExpectedAgent          string     `json:"expected_agent" yaml:"expected-agent"`
	ExpectedTopics         []string   `json:"expected_topics,omitempty" yaml:"expected-topics"`
	QualityCriteria        string     `json:"quality_criteria,omitempty" yaml:"quality-criteria"`
	ExpectedAnswerContains StringList `json:"expected_answer_contains,omitempty" yaml:"expected-answer-contains"`
}

// StringList allows unmarshalling a string or a slice of strings.
type StringList []string

// UnmarshalJSON makes StringList accept a string or a slice.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*s = []string{single}
		}
		return nil
	}
	var vals []string
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("expected string or list of strings")
	}
	*s = vals
	return nil
}

// UnmarshalYAML makes StringList accept a string or a slice.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v string
		if err := value.Decode(&v); err != nil {
			return err
		}
		if v != "" {
			*s = []string{v}
		}
		return nil
	case yaml.SequenceNode:
		var vals []string
		if err := value.Decode(&vals); err != nil {
			return err
		}
		*s = vals
		return nil
	case 0:
		// missing field is fine
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", value.Kind)
	}
}

// Join renders the list for embedding into a judge prompt.
func (s StringList) Join() string {
	return strings.Join(s, ", ")
}

// Load reads a dataset from a .json, .yml or .yaml file.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &ds)
	default:
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Validate checks required fields.
func Validate(ds *Dataset) error {
	if ds.Name == "" {
		return errors.New("dataset name is required")
	}
	if len(ds.Items) == 0 {
		return errors.New("dataset has no items")
	}
	for i, item := range ds.Items {
		if item.ID == "" {
			return fmt.Errorf("item %d: id is required", i)
		}
		if strings.TrimSpace(item.Input) == "" {
			return fmt.Errorf("item %s: input is required", item.ID)
		}
	}
	return nil
}
