package ingest

import (
	"reflect"
	"strings"
	"testing"
)

type lowerNormalizer struct{}

func (lowerNormalizer) Normalize(s string) string { return strings.ToLower(s) }

func TestAliasTableMultiToken(t *testing.T) {
	table := NewAliasTable([]AliasEntry{
		{Canonical: "machine learning", Variants: []string{"ml"}},
		{Canonical: "neural network", Variants: []string{"nn"}},
	}, lowerNormalizer{})

	result := table.Apply([]string{"deep", "machine", "learning", "uses", "neural", "network"})

	expected := []string{"deep", "machine_learning", "uses", "neural_network"}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestAliasTableSynonym(t *testing.T) {
	table := NewAliasTable([]AliasEntry{
		{Canonical: "Kubernetes", Variants: []string{"K8S"}},
		{Canonical: "postgresql", Variants: []string{"postgres", "pg"}},
	}, lowerNormalizer{})

	result := table.Apply([]string{"k8s", "postgres", "redis"})

	expected := []string{"kubernetes", "postgresql", "redis"}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestAliasTableGreedyLongest(t *testing.T) {
	table := NewAliasTable([]AliasEntry{
		{Canonical: "language model"},
		{Canonical: "large language model", Variants: []string{"llm"}},
	}, nil)

	result := table.Apply([]string{"large", "language", "model", "training"})

	if result[0] != "large_language_model" {
		t.Errorf("Should match longest phrase, got %v", result)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 tokens, got %v", result)
	}
}

func TestAliasTableEmptyPassesThrough(t *testing.T) {
	var table *AliasTable
	tokens := []string{"hello", "world"}

	if !reflect.DeepEqual(table.Apply(tokens), tokens) {
		t.Error("Nil table should pass tokens through")
	}

	empty := NewAliasTable(nil, nil)
	if !reflect.DeepEqual(empty.Apply(tokens), tokens) {
		t.Error("Empty table should pass tokens through")
	}
}

func TestAliasTableRestrictDropsFilteredTargets(t *testing.T) {
	table := NewAliasTable([]AliasEntry{
		{Canonical: "Node.js", Variants: []string{"nodejs"}},
		{Canonical: "R", Variants: []string{"rlang"}},
		{Canonical: "golang", Variants: []string{"go lang"}},
	}, lowerNormalizer{})

	restricted := table.Restrict(NewFilter(lowerNormalizer{}, nil))

	if restricted.Len() != 2 {
		t.Errorf("Expected only the golang phrases to remain, got %d", restricted.Len())
	}
	result := restricted.Apply([]string{"nodejs", "rlang", "go", "lang"})
	expected := []string{"nodejs", "rlang", "golang"}
	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, got %v", expected, result)
	}
	if table.Len() != 6 {
		t.Errorf("Restrict should leave the source table alone, got %d phrases", table.Len())
	}
}
