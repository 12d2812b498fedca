package qa

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fallbackTerms seeds the lexicon when no terms file is configured. The
// default set targets medical documents, the pipeline's primary domain.
var fallbackTerms = []string{
	"prescription", "medication", "dosage", "tablet", "capsule", "mg", "ml",
	"patient", "diagnosis", "symptoms", "treatment", "therapy", "doctor",
	"hospital", "clinic", "medical", "health", "blood", "pressure", "heart",
	"diabetes", "hypertension", "cholesterol", "infection", "antibiotics",
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// TermLexicon holds the lowercase domain vocabulary used for the
// term-preservation metric.
type TermLexicon struct {
	terms map[string]struct{}
}

// NewTermLexicon builds a lexicon from the built-in fallback set.
func NewTermLexicon() *TermLexicon {
	l := &TermLexicon{terms: make(map[string]struct{}, len(fallbackTerms))}
	for _, t := range fallbackTerms {
		l.terms[t] = struct{}{}
	}
	return l
}

// LoadTermLexicon reads a YAML terms file and merges it over the fallback
// set. The file may be a flat list of terms or a map of category to term
// list.
func LoadTermLexicon(path string) (*TermLexicon, error) {
	l := NewTermLexicon()
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}

	var byCategory map[string][]string
	if err := yaml.Unmarshal(data, &byCategory); err == nil {
		for _, terms := range byCategory {
			l.addAll(terms)
		}
		return l, nil
	}

	var flat []string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parsing terms file %s: %w", path, err)
	}
	l.addAll(flat)
	return l, nil
}

func (l *TermLexicon) addAll(terms []string) {
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			l.terms[t] = struct{}{}
		}
	}
}

// Len returns the vocabulary size.
func (l *TermLexicon) Len() int { return len(l.terms) }

// Extract returns the set of lexicon terms present in text.
func (l *TermLexicon) Extract(text string) map[string]struct{} {
	found := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if _, ok := l.terms[w]; ok {
			found[w] = struct{}{}
		}
	}
	return found
}

// Count returns how many distinct lexicon terms occur in text.
func (l *TermLexicon) Count(text string) int {
	return len(l.Extract(text))
}

// Preservation returns the fraction of before-text terms still present in
// after-text. With no terms to preserve the score is 1.
func (l *TermLexicon) Preservation(before, after string) float64 {
	beforeTerms := l.Extract(before)
	if len(beforeTerms) == 0 {
		return 1.0
	}
	afterTerms := l.Extract(after)
	preserved := 0
	for t := range beforeTerms {
		if _, ok := afterTerms[t]; ok {
			preserved++
		}
	}
	return float64(preserved) / float64(len(beforeTerms))
}
