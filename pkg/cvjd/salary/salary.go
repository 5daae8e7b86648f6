// Package salary parses free-text salary strings from CVs into an annual
// figure in thousands of yuan.
package salary

import (
	"regexp"
	"strconv"
)

// Normalizer canonicalizes script and case before matching
type Normalizer interface {
	Normalize(s string) string
}

// Salary is an annual amount in thousands of yuan. Rule is the 1-based
// index of the pattern that produced it.
type Salary struct {
	Annual int
	Rule   int
}

type rule struct {
	re    *regexp.Regexp
	apply func(m []string) (int, bool)
}

// Rules are tried in order; the first match wins.
var rules = []rule{
	// 10.5k*15.5
	{regexp.MustCompile(`(\d+\.*\d*)([k,w])[\*,x,·, ]+(\d+\.*\d*)`), func(m []string) (int, bool) {
		n1, ok1 := number(m[1])
		n3, ok3 := number(m[3])
		if !ok1 || !ok3 {
			return 0, false
		}
		return scaleUnit(int(n1*n3), m[2]), true
	}},
	// 10.5*15.5k
	{regexp.MustCompile(`(\d+\.*\d*)[\*,x,·, ]+(\d+\.*\d*)([k,w])`), func(m []string) (int, bool) {
		n1, ok1 := number(m[1])
		n2, ok2 := number(m[2])
		if !ok1 || !ok2 {
			return 0, false
		}
		return scaleUnit(int(n1*n2), m[3]), true
	}},
	// 10万/年
	{regexp.MustCompile(`(\d+)([万,w,元])/年`), func(m []string) (int, bool) {
		n, ok := number(m[1])
		if !ok {
			return 0, false
		}
		return perPeriod(n, m[2]), true
	}},
	// 2w/月, twelve months assumed
	{regexp.MustCompile(`(\d+)([万,w,元])/月`), func(m []string) (int, bool) {
		n, ok := number(m[1])
		if !ok {
			return 0, false
		}
		return perPeriod(n, m[2]) * 12, true
	}},
	// 30k
	{regexp.MustCompile(`(\d+)k`), func(m []string) (int, bool) {
		n, ok := number(m[1])
		if !ok {
			return 0, false
		}
		return int(n * 12), true
	}},
	// 42万
	{regexp.MustCompile(`(\d+)[万,w]`), func(m []string) (int, bool) {
		n, ok := number(m[1])
		if !ok {
			return 0, false
		}
		return int(n * 10), true
	}},
	// 9000元/月*12月
	{regexp.MustCompile(`(\d+)元/月[\*,x,·, ]+(\d+)`), func(m []string) (int, bool) {
		n1, ok1 := number(m[1])
		n2, ok2 := number(m[2])
		if !ok1 || !ok2 {
			return 0, false
		}
		return int(n1 * n2 / 1000), true
	}},
}

// Parser turns salary strings into annual figures
type Parser struct {
	norm Normalizer
}

// NewParser creates a parser. norm may be nil when input is already
// simplified and lowercase.
func NewParser(norm Normalizer) *Parser {
	return &Parser{norm: norm}
}

// Parse normalizes raw and applies the first matching rule. ok is false
// when no rule matches.
func (p *Parser) Parse(raw string) (Salary, bool) {
	s := raw
	if p.norm != nil {
		s = p.norm.Normalize(s)
	}

	for i, r := range rules {
		m := r.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if v, ok := r.apply(m); ok {
			return Salary{Annual: v, Rule: i + 1}, true
		}
	}
	return Salary{}, false
}

func number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// scaleUnit converts a k-based product, where w (万) is ten k.
func scaleUnit(v int, unit string) int {
	if unit == "k" {
		return v
	}
	return v * 10
}

// perPeriod converts one period's pay to thousands.
func perPeriod(n float64, unit string) int {
	if unit == "万" || unit == "w" {
		return int(n * 10)
	}
	return int(n / 1000)
}
