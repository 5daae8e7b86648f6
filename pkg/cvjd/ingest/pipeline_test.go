package ingest

import (
	"testing"
)

func newTestPipeline() *Pipeline {
	return NewPipeline(NewTokenizer(spaceSegmenter{}), NewFilter(lowerNormalizer{}, nil))
}

func TestPipelineBasic(t *testing.T) {
	p := newTestPipeline()
	rec := Record{ID: "jd-1", Fields: map[string]string{
		"title":         "Senior Go Engineer",
		"category_name": "Backend",
		"tags":          "Go,Kubernetes/2020",
	}}

	doc := p.Process(rec, []string{"title", "category_name", "tags"})

	if doc.ID != "jd-1" {
		t.Errorf("Expected ID jd-1, got %s", doc.ID)
	}
	want := "senior go engineer backend go kubernetes"
	if doc.Merged != want {
		t.Errorf("Expected merged %q, got %q", want, doc.Merged)
	}
	if len(doc.Columns["tags"]) != 2 {
		t.Errorf("Expected 2 tag tokens, got %v", doc.Columns["tags"])
	}
	if len(doc.Malformed) != 0 {
		t.Errorf("Expected no malformed fields, got %v", doc.Malformed)
	}
}

func TestPipelineAllEmpty(t *testing.T) {
	p := newTestPipeline()
	rec := Record{ID: "cv-1", Fields: map[string]string{"currentPosition": "", "desiredPosition": ""}}

	doc := p.Process(rec, []string{"currentPosition", "desiredPosition"})

	if doc.Merged != "" {
		t.Errorf("All-empty fields should merge to empty string, got %q", doc.Merged)
	}
}

func TestPipelineMalformedFieldDegrades(t *testing.T) {
	p := newTestPipeline()
	rec := Record{ID: "cv-9", Fields: map[string]string{
		"skills":          "[Java, Go",
		"desiredPosition": "architect",
	}}

	doc := p.Process(rec, []string{"skills", "desiredPosition"})

	if doc.Merged != "go architect" {
		t.Errorf("Expected bracketed token dropped, got %q", doc.Merged)
	}
	if len(doc.Malformed) != 0 {
		t.Errorf("'[Java, Go' is not list-like and should be split, got %v", doc.Malformed)
	}

	rec.Fields["skills"] = "[Java, Go]"
	doc = p.Process(rec, []string{"skills", "desiredPosition"})
	if len(doc.Malformed) != 1 {
		t.Fatalf("Expected 1 malformed field, got %d", len(doc.Malformed))
	}
	if doc.Malformed[0].Record != "cv-9" || doc.Malformed[0].Field != "skills" {
		t.Errorf("Unexpected malformed error: %v", doc.Malformed[0])
	}
	if doc.Merged != "architect" {
		t.Errorf("Expected only the healthy column, got %q", doc.Merged)
	}
	if toks, ok := doc.Columns["skills"]; !ok || len(toks) != 0 {
		t.Errorf("Malformed column should be an empty sequence, got %v", toks)
	}
}

func TestPipelineRawPolicyForTracks(t *testing.T) {
	p := newTestPipeline()
	rec := Record{ID: "cv-2", Fields: map[string]string{
		"jobTracks": "[{'company': 'Acme'}]",
	}}

	doc := p.Process(rec, []string{"jobTracks"})

	if len(doc.Malformed) != 0 {
		t.Errorf("Raw columns never fail decoding, got %v", doc.Malformed)
	}
}

func TestPipelineExplicitPolicy(t *testing.T) {
	p := newTestPipeline()
	p.SetPolicy("description", ColumnPolicy{Field: PolicyRaw, StripMarkup: true})

	rec := Record{ID: "jd-3", Fields: map[string]string{
		"description": "<p>Design APIs</p><p>Review code</p>",
	}}
	doc := p.Process(rec, []string{"description"})

	want := "design apis review code"
	if doc.Merged != want {
		t.Errorf("Expected %q, got %q", want, doc.Merged)
	}
	if p.PolicyFor("tags").Field != PolicyStructured {
		t.Error("Columns without an override should use the default policy")
	}
}

func TestPipelineAliases(t *testing.T) {
	p := newTestPipeline()
	p.SetAliases(NewAliasTable([]AliasEntry{{Canonical: "kubernetes", Variants: []string{"k8s"}}}, lowerNormalizer{}))

	doc := p.Process(Record{ID: "1", Fields: map[string]string{"skills": "K8S,Docker"}}, []string{"skills"})

	if doc.Merged != "kubernetes docker" {
		t.Errorf("Expected aliases to apply, got %q", doc.Merged)
	}
}

func TestPipelineAliasTargetsAreFiltered(t *testing.T) {
	p := newTestPipeline()
	p.SetAliases(NewAliasTable([]AliasEntry{
		{Canonical: "Node.js", Variants: []string{"nodejs"}},
		{Canonical: "R", Variants: []string{"rlang"}},
		{Canonical: "golang", Variants: []string{"go lang"}},
	}, lowerNormalizer{}))

	doc := p.Process(Record{ID: "1", Fields: map[string]string{"title": "nodejs rlang go lang"}}, []string{"title"})

	if doc.Merged != "nodejs rlang golang" {
		t.Errorf("Canonical terms the filter rejects should not be emitted, got %q", doc.Merged)
	}
}

func TestPipelineProcessAllKeepsOrder(t *testing.T) {
	p := newTestPipeline()
	records := []Record{
		{ID: "a", Fields: map[string]string{"title": "cook"}},
		{ID: "b", Fields: map[string]string{"title": "chef"}},
		{ID: "c", Fields: map[string]string{}},
	}

	docs := p.ProcessAll(records, []string{"title"})

	if len(docs) != 3 {
		t.Fatalf("Expected 3 docs, got %d", len(docs))
	}
	for i, id := range []string{"a", "b", "c"} {
		if docs[i].ID != id {
			t.Errorf("doc %d: expected ID %s, got %s", i, id, docs[i].ID)
		}
	}
	if docs[2].Merged != "" {
		t.Errorf("Missing field should merge to empty, got %q", docs[2].Merged)
	}
}
