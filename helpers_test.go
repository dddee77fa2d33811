package shopengine

import (
	"reflect"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Green Tea", "green-tea"},
		{"  Trimmed  Title  ", "trimmed-title"},
		{"Açaí & Guaraná Mix", "acai-guarana-mix"},
		{"Crème Brûlée", "creme-brulee"},
		{"What's New?!", "what-s-new"},
		{"--already--slugged--", "already-slugged"},
		{"100% Organic", "100-organic"},
		{"UPPER case", "upper-case"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyLength(t *testing.T) {
	long := strings.Repeat("word ", 40)
	slug := Slugify(long)
	if len(slug) > maxSlugLen {
		t.Errorf("slug length = %d, want <= %d", len(slug), maxSlugLen)
	}
	if strings.HasSuffix(slug, "-") {
		t.Errorf("truncated slug %q should not end with a hyphen", slug)
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"tea, health, recipes", []string{"tea", "health", "recipes"}},
		{"tea,,health,  ", []string{"tea", "health"}},
		{"", nil},
		{"  ,  ,  ", nil},
		{"single", []string{"single"}},
	}

	for _, tt := range tests {
		got := SplitCSV(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitCSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJoinTags(t *testing.T) {
	if got := JoinTags([]string{"tea", "health"}); got != "tea, health" {
		t.Errorf("JoinTags = %q, want %q", got, "tea, health")
	}
	if got := JoinTags(nil); got != "" {
		t.Errorf("JoinTags(nil) = %q, want empty", got)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", []string{"products", "green-tea"}, "https://example.com/products/green-tea/"},
		{"https://example.com/", []string{"blog"}, "https://example.com/blog/"},
		{"https://example.com", nil, "https://example.com"},
	}

	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}
