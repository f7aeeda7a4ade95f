package grader

import "testing"

func TestComparison_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		policy   Comparison
		actual   string
		expected string
		want     bool
	}{
		{"identical", CompareTrimTrailing, "2\n", "2\n", true},
		{"trailing newline on actual", CompareTrimTrailing, "2\n", "2", true},
		{"trailing blank lines on expected", CompareTrimTrailing, "2", "2\n\n\n", true},
		{"trailing spaces and tabs", CompareTrimTrailing, "a b \t\n", "a b", true},
		{"leading whitespace significant", CompareTrimTrailing, " 2", "2", false},
		{"leading blank line significant", CompareTrimTrailing, "\n2", "2", false},
		{"inner whitespace significant", CompareTrimTrailing, "a  b", "a b", false},
		{"content mismatch", CompareTrimTrailing, "0", "2", false},
		{"both empty", CompareTrimTrailing, "", "\n", true},
		{"trim all ignores leading", CompareTrimAll, "\n  2\n", "2", true},
		{"trim all keeps inner", CompareTrimAll, "a\n\nb", "a\nb", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.policy.Match(tt.actual, tt.expected); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestComparison_TrailingBlankLinesNeverChangeVerdict(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{{"1 2\n3", "1 2\n3"}, {"x", "y"}, {"", ""}, {"  a", "a"}}
	for _, policy := range []Comparison{CompareTrimTrailing, CompareTrimAll} {
		for _, p := range pairs {
			base := policy.Match(p[0], p[1])
			for _, pad := range []string{"\n", "\n\n", " \n\t\n"} {
				if got := policy.Match(p[0]+pad, p[1]); got != base {
					t.Errorf("%s: Match(%q+pad, %q) = %v, want %v", policy, p[0], p[1], got, base)
				}
				if got := policy.Match(p[0], p[1]+pad); got != base {
					t.Errorf("%s: Match(%q, %q+pad) = %v, want %v", policy, p[0], p[1], got, base)
				}
			}
		}
	}
}

func TestComparison_Reflexive(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "a", " a \n", "\t\n x"} {
		for _, policy := range []Comparison{CompareTrimTrailing, CompareTrimAll} {
			if !policy.Match(s, s) {
				t.Errorf("%s: Match(%q, %q) = false", policy, s, s)
			}
		}
	}
}

func TestParseComparison(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Comparison
		wantErr bool
	}{
		{"", CompareTrimTrailing, false},
		{"trailing", CompareTrimTrailing, false},
		{"all", CompareTrimAll, false},
		{"exact", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseComparison(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseComparison(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseComparison(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
