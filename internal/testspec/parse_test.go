package testspec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndreyAkinshin/automark/internal/model"
)

func TestParse_TwoCases(t *testing.T) {
	t.Parallel()
	raw := "header notes\n### in 1\n1\n1\n### out 1\n2\n### in 2\n1\n-1\n### out 2\n0\n"

	cases, err := Parse(raw, DefaultPrefix)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []model.TestCase{
		{Input: "1\n1\n", Expected: "2\n"},
		{Input: "1\n-1\n", Expected: "0\n"},
	}
	if len(cases) != len(want) {
		t.Fatalf("len(cases) = %d, want %d", len(cases), len(want))
	}
	for i := range want {
		if cases[i] != want[i] {
			t.Errorf("cases[%d] = %+v, want %+v", i, cases[i], want[i])
		}
	}
}

func TestParse_SectionCountProperty(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 6; n++ {
		var b strings.Builder
		b.WriteString("preamble\n")
		for k := 1; k <= n; k++ {
			fmt.Fprintf(&b, "###input %d\nin%d\n###output %d\nout%d", k, k, k, k)
			if k < n {
				b.WriteString("\n")
			}
		}

		cases, err := Parse(b.String(), DefaultPrefix)
		if err != nil {
			t.Fatalf("n=%d: Parse() error = %v", n, err)
		}
		if len(cases) != n {
			t.Fatalf("n=%d: len(cases) = %d", n, len(cases))
		}
		for k, c := range cases {
			if want := fmt.Sprintf("in%d\n", k+1); c.Input != want {
				t.Errorf("n=%d: cases[%d].Input = %q, want %q", n, k, c.Input, want)
			}
		}
	}
}

func TestParse_InvalidSectionCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"no delimiters", "just text\n"},
		{"one delimiter", "### only\nsomething\n"},
		{"trailing delimiter makes count even", "### a\n1\n### b\n2\n### end\n"},
		{"three delimiters", "###\na\n###\nb\n###\nc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cases, err := Parse(tt.raw, DefaultPrefix)
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("Parse() error = %v, want ErrInvalidSpec", err)
			}
			if cases != nil {
				t.Errorf("Parse() cases = %v, want nil", cases)
			}
		})
	}
}

func TestParse_DelimiterRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		prefix string
		want   []model.TestCase
	}{
		{
			name:   "prefix must start the line",
			raw:    "##\n a ## not a delimiter\n##\nb\n",
			prefix: "##",
			want:   []model.TestCase{{Input: " a ## not a delimiter\n", Expected: "b\n"}},
		},
		{
			name:   "delimiter without newline is content",
			raw:    "@@\nx\n@@\ny\n@@",
			prefix: "@@",
			want:   []model.TestCase{{Input: "x\n", Expected: "y\n@@"}},
		},
		{
			name:   "regex metacharacters are literal",
			raw:    "[*]\n1\n[*]\n2\n",
			prefix: "[*]",
			want:   []model.TestCase{{Input: "1\n", Expected: "2\n"}},
		},
		{
			name:   "empty sections allowed",
			raw:    "###\n###\n",
			prefix: "###",
			want:   []model.TestCase{{Input: "", Expected: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.raw, tt.prefix)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len(Parse()) = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Parse()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse_EmptyPrefix(t *testing.T) {
	t.Parallel()
	if _, err := Parse("###\na\n###\nb\n", ""); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Parse() error = %v, want ErrInvalidSpec", err)
	}
}

func TestSuite_FailedParseClearsPreviousCases(t *testing.T) {
	t.Parallel()
	s := NewSuite("")

	if err := s.SetRaw("###\n1\n###\n2\n"); err != nil {
		t.Fatalf("SetRaw() error = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	if err := s.SetRaw("###\nonly input\n"); err == nil {
		t.Fatal("SetRaw() expected error")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after failed parse, want 0", s.Len())
	}
	if s.Raw() != "" {
		t.Errorf("Raw() = %q after failed parse, want empty", s.Raw())
	}
}

func TestSuite_PrefixChangeReparses(t *testing.T) {
	t.Parallel()
	s := NewSuite("")
	raw := "--\na\n--\nb\n"

	if err := s.SetRaw(raw); err == nil {
		t.Fatal("SetRaw() with default prefix expected error")
	}
	if err := s.SetPrefix("--"); err != nil {
		t.Fatalf("SetPrefix() with no stored text error = %v", err)
	}
	if err := s.SetRaw(raw); err != nil {
		t.Fatalf("SetRaw() error = %v", err)
	}
	if got := s.Cases(); len(got) != 1 || got[0].Input != "a\n" {
		t.Errorf("Cases() = %+v", got)
	}

	if err := s.SetPrefix("###"); err == nil {
		t.Fatal("SetPrefix() to incompatible prefix expected error")
	}
	if s.Cases() != nil {
		t.Error("Cases() should be nil after incompatible prefix")
	}
}

func TestSuite_CasesReturnsCopy(t *testing.T) {
	t.Parallel()
	s := NewSuite("###")
	if err := s.SetRaw("###\n1\n###\n2\n"); err != nil {
		t.Fatal(err)
	}
	got := s.Cases()
	got[0].Input = "mutated"
	if s.Cases()[0].Input != "1\n" {
		t.Error("Cases() exposed internal slice")
	}
}

func TestLoadFile_NormalizesCRLF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.txt")
	if err := os.WriteFile(path, []byte("###\r\n1\r\n###\r\n2\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cases, err := LoadFile(path, DefaultPrefix)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(cases) != 1 || cases[0].Input != "1\n" || cases[0].Expected != "2\n" {
		t.Errorf("LoadFile() = %+v", cases)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), DefaultPrefix)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want ErrNotExist", err)
	}
}
