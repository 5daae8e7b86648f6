package salary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// simplifier stands in for the OpenCC normalizer on the few characters
// these tests use.
type simplifier struct{}

func (simplifier) Normalize(s string) string {
	return strings.ToLower(strings.NewReplacer("萬", "万").Replace(s))
}

func TestParse(t *testing.T) {
	p := NewParser(simplifier{})

	tests := []struct {
		raw    string
		annual int
		rule   int
	}{
		{"10.5k*15.5", 162, 1},
		{"2w*13", 260, 1},
		{"25K·14薪", 350, 1},
		{"15*13k", 195, 2},
		{"20万/年", 200, 3},
		{"20萬/年", 200, 3},
		{"9000元/年", 9, 3},
		{"2万/月", 240, 4},
		{"9000元/月*12月", 108, 4},
		{"30K", 360, 5},
		{"42万", 420, 6},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := p.Parse(tt.raw)
			assert.True(t, ok)
			assert.Equal(t, tt.annual, got.Annual)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestParseNoMatch(t *testing.T) {
	p := NewParser(simplifier{})
	for _, raw := range []string{"", "面议", "negotiable", "保密"} {
		_, ok := p.Parse(raw)
		assert.False(t, ok, raw)
	}
}

func TestParseWithoutNormalizer(t *testing.T) {
	p := NewParser(nil)

	_, ok := p.Parse("30K")
	assert.False(t, ok, "uppercase unit only matches after lowercasing")

	got, ok := p.Parse("30k")
	assert.True(t, ok)
	assert.Equal(t, 360, got.Annual)
}

func TestMonthlyYuanRule(t *testing.T) {
	m := rules[6].re.FindStringSubmatch("9000元/月*12")
	if assert.NotNil(t, m) {
		v, ok := rules[6].apply(m)
		assert.True(t, ok)
		assert.Equal(t, 108, v)
	}
}
