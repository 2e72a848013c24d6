// interview.go
package models

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Question struct to match the YAML structure
type Question struct {
	ID         string   `yaml:"id" json:"id"`
	Category   string   `yaml:"category" json:"category"`
	Text       string   `yaml:"text" json:"text"`
	Difficulty string   `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	FollowUps  []string `yaml:"follow_ups,omitempty" json:"followUps,omitempty"`
}

// QuestionBank holds every interview question available for practice
type QuestionBank struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestionBank reads and parses the questions.yaml file
func LoadQuestionBank(path string) (*QuestionBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank file: %w", err)
	}

	var bank QuestionBank
	err = yaml.Unmarshal(data, &bank)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal question bank YAML: %w", err)
	}

	return &bank, nil
}

// Categories returns the distinct categories in the order they first appear.
func (b *QuestionBank) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, q := range b.Questions {
		if !seen[q.Category] {
			seen[q.Category] = true
			categories = append(categories, q.Category)
		}
	}
	return categories
}

// Pick draws a random question, restricted to a category when one is given.
func (b *QuestionBank) Pick(category string) (Question, error) {
	var pool []Question
	for _, q := range b.Questions {
		if category == "" || q.Category == category {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return Question{}, fmt.Errorf("no questions available for category %q", category)
	}
	return pool[rand.Intn(len(pool))], nil
}
