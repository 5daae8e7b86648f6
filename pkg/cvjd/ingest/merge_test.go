package ingest

import "testing"

func TestMerge(t *testing.T) {
	cases := []struct {
		name  string
		parts []string
		want  string
	}{
		{"middle empty", []string{"a", "", "b"}, "a b"},
		{"all empty", []string{"", "", ""}, ""},
		{"leading empty", []string{"", "java go"}, "java go"},
		{"trailing empty", []string{"cook chef", ""}, "cook chef"},
		{"padded", []string{" a ", "b "}, "a b"},
		{"none", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Merge(tc.parts...); got != tc.want {
				t.Errorf("Merge(%q) = %q, want %q", tc.parts, got, tc.want)
			}
		})
	}
}
