package sources

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddFeeds(t *testing.T) {
	tests := []struct {
		name      string
		feeds     []string
		input     string
		extra     []string
		want      []string
		wantAdded int
	}{
		{
			name:      "split on whitespace and commas",
			feeds:     nil,
			input:     "https://a.com/rss, https://b.com/rss\nc.com/feed",
			want:      []string{"https://a.com/rss", "https://b.com/rss", "c.com/feed"},
			wantAdded: 3,
		},
		{
			name:      "duplicates skipped",
			feeds:     []string{"https://a.com/rss"},
			input:     "https://a.com/rss https://a.com/rss https://b.com/rss",
			want:      []string{"https://a.com/rss", "https://b.com/rss"},
			wantAdded: 1,
		},
		{
			name:      "extra comes first",
			feeds:     []string{"https://a.com/rss"},
			input:     "https://b.com/rss",
			extra:     []string{"https://found.com/atom.xml"},
			want:      []string{"https://a.com/rss", "https://found.com/atom.xml", "https://b.com/rss"},
			wantAdded: 2,
		},
		{
			name:      "invalid skipped",
			feeds:     []string{},
			input:     "http:// ::: https://ok.com/rss",
			want:      []string{"https://ok.com/rss"},
			wantAdded: 1,
		},
		{
			name:      "empty input",
			feeds:     []string{"https://a.com/rss"},
			input:     "   ",
			want:      []string{"https://a.com/rss"},
			wantAdded: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, added := AddFeeds(tt.feeds, tt.input, tt.extra...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AddFeeds() mismatch (-want +got):\n%s", diff)
			}
			if added != tt.wantAdded {
				t.Errorf("AddFeeds() added = %d, want %d", added, tt.wantAdded)
			}
		})
	}
}

func TestAddFeeds_DoesNotMutateInput(t *testing.T) {
	feeds := make([]string, 1, 4)
	feeds[0] = "https://a.com/rss"
	AddFeeds(feeds, "https://b.com/rss")
	if len(feeds) != 1 || feeds[:2][1] != "" {
		t.Error("AddFeeds() must not write into the caller's backing array")
	}
}

func TestRemoveFeed(t *testing.T) {
	feeds := []string{"a", "b", "c"}
	got, err := RemoveFeed(feeds, 1)
	if err != nil {
		t.Fatalf("RemoveFeed() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, got); diff != "" {
		t.Errorf("RemoveFeed() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, feeds); diff != "" {
		t.Errorf("RemoveFeed() mutated input (-want +got):\n%s", diff)
	}

	for _, idx := range []int{-1, 3} {
		if _, err := RemoveFeed(feeds, idx); err == nil {
			t.Errorf("RemoveFeed(%d) should fail", idx)
		}
	}
}
