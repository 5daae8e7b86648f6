package ingest

import "strings"

// AliasTable rewrites synonyms and multi-token phrases to one canonical
// term after filtering, e.g. "k8s" -> "kubernetes" or
// "machine learning" -> "machine_learning".
type AliasTable struct {
	dict   map[string]string // normalized phrase -> canonical term
	maxLen int
}

// AliasEntry is one canonical term with its variant spellings.
type AliasEntry struct {
	Canonical string
	Variants  []string
}

// NewAliasTable builds a table from entries. Phrases are matched on
// normalized tokens, so entries are normalized with norm (nil keeps them).
func NewAliasTable(entries []AliasEntry, norm Normalizer) *AliasTable {
	canon := func(s string) string {
		if norm != nil {
			s = norm.Normalize(s)
		}
		return strings.Join(strings.Fields(s), " ")
	}

	dict := make(map[string]string)
	maxLen := 1
	for _, e := range entries {
		target := strings.ReplaceAll(canon(e.Canonical), " ", "_")
		if target == "" {
			continue
		}
		for _, phrase := range append([]string{e.Canonical}, e.Variants...) {
			key := canon(phrase)
			if key == "" {
				continue
			}
			dict[key] = target
			if l := phraseLen(key); l > maxLen {
				maxLen = l
			}
		}
	}
	return &AliasTable{dict: dict, maxLen: maxLen}
}

// Len returns the number of phrases the table recognizes.
func (a *AliasTable) Len() int {
	if a == nil {
		return 0
	}
	return len(a.dict)
}

// Restrict returns a copy without the phrases whose canonical term would
// itself be dropped by f, e.g. "node.js" or the single rune "r".
// Those variants then pass through unchanged.
func (a *AliasTable) Restrict(f *Filter) *AliasTable {
	if a.Len() == 0 || f == nil {
		return a
	}

	dict := make(map[string]string, len(a.dict))
	maxLen := 1
	for key, target := range a.dict {
		word, ok := f.Keep(target)
		if !ok {
			continue
		}
		dict[key] = word
		if l := phraseLen(key); l > maxLen {
			maxLen = l
		}
	}
	return &AliasTable{dict: dict, maxLen: maxLen}
}

// Apply replaces recognized phrases using greedy longest match.
func (a *AliasTable) Apply(tokens []string) []string {
	if a.Len() == 0 {
		return tokens
	}

	result := make([]string, 0, len(tokens))
	i := 0
	for i < len(tokens) {
		matched := ""
		matchLen := 1

		maxPhrase := a.maxLen
		if remaining := len(tokens) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			if target, ok := a.dict[strings.Join(tokens[i:i+n], " ")]; ok {
				matched = target
				matchLen = n
				break
			}
		}

		if matched != "" {
			result = append(result, matched)
			i += matchLen
			continue
		}
		if target, ok := a.dict[tokens[i]]; ok {
			result = append(result, target)
		} else {
			result = append(result, tokens[i])
		}
		i++
	}

	return result
}

func phraseLen(phrase string) int {
	if phrase == "" {
		return 1
	}
	return len(strings.Fields(phrase))
}
