package keywords

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/maine/feedwatch/internal/news"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want news.KeywordSpec
	}{
		{
			name: "empty text",
			raw:  "",
			want: news.KeywordSpec{Include: []news.KeywordTerm{}, Exclude: []string{}},
		},
		{
			name: "weights, plain phrases and excludes",
			raw:  "election:3\nclimate\n-sports",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{
					{Phrase: "election", Weight: 3},
					{Phrase: "climate", Weight: 1},
				},
				Exclude: []string{"sports"},
			},
		},
		{
			name: "trims and lowercases",
			raw:  "  Climate Change : 5  \n\n   - Celebrity Gossip  \n",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{{Phrase: "climate change", Weight: 5}},
				Exclude: []string{"celebrity gossip"},
			},
		},
		{
			name: "malformed weight degrades to whole line",
			raw:  "budget:high\nratio:1:2\nwhat:",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{
					{Phrase: "budget:high", Weight: 1},
					{Phrase: "ratio:1:2", Weight: 1},
					{Phrase: "what:", Weight: 1},
				},
				Exclude: []string{},
			},
		},
		{
			name: "integer prefix is accepted",
			raw:  "nasa:7 points\nspacex:-2",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{
					{Phrase: "nasa", Weight: 7},
					{Phrase: "spacex", Weight: -2},
				},
				Exclude: []string{},
			},
		},
		{
			name: "empty phrases and bare markers are dropped",
			raw:  ":4\n-\n-  \nok",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{{Phrase: "ok", Weight: 1}},
				Exclude: []string{},
			},
		},
		{
			name: "windows line endings",
			raw:  "alpha:2\r\n-beta\r\n",
			want: news.KeywordSpec{
				Include: []news.KeywordTerm{{Phrase: "alpha", Weight: 2}},
				Exclude: []string{"beta"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_WeightEqualsSuffix(t *testing.T) {
	for _, n := range []int{-5, 0, 1, 2, 10, 250} {
		spec := Parse("term:" + strconv.Itoa(n))
		if len(spec.Include) != 1 || spec.Include[0].Weight != n {
			t.Errorf("Parse(term:%d) = %+v, want weight %d", n, spec.Include, n)
		}
	}
}

func TestParse_HasCriteria(t *testing.T) {
	if Parse("-only excludes").HasCriteria() {
		t.Error("spec with only excludes must not have criteria")
	}
	if !Parse("x").HasCriteria() {
		t.Error("spec with an include term must have criteria")
	}
}

func TestMergeUpload(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		uploaded string
		want     string
	}{
		{name: "empty current", current: "", uploaded: "a,b", want: "a\nb"},
		{name: "append", current: "x:2", uploaded: "a, b", want: "x:2\na\n b"},
		{name: "no commas", current: "x", uploaded: "y\nz", want: "x\ny\nz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeUpload(tt.current, tt.uploaded); got != tt.want {
				t.Errorf("MergeUpload() = %q, want %q", got, tt.want)
			}
		})
	}
}
