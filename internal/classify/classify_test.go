package classify

import "testing"

func TestIsOtaniArticle(t *testing.T) {
	t.Parallel()

	c := New(nil)

	cases := []struct {
		name    string
		title   string
		excerpt string
		content string
		want    bool
	}{
		{
			name:  "romanized name in title",
			title: "Shohei Ohtani hits two home runs",
			want:  true,
		},
		{
			name:  "no keyword anywhere",
			title: "Local team wins game",
			want:  false,
		},
		{
			name:    "native script in excerpt",
			title:   "今日の試合結果",
			excerpt: "大谷が先発登板した",
			want:    true,
		},
		{
			name:    "keyword only in body content",
			title:   "MLB roundup",
			content: "The Dodgers star Ohtani went 3-for-4 on the night.",
			want:    true,
		},
		{
			name:  "case insensitive match",
			title: "OHTANI leads all-star voting",
			want:  true,
		},
		{
			name: "empty inputs",
			want: false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := c.IsOtaniArticle(tc.title, tc.excerpt, tc.content)
			if got != tc.want {
				t.Fatalf("IsOtaniArticle(%q, %q, %q) = %v, want %v",
					tc.title, tc.excerpt, tc.content, got, tc.want)
			}
		})
	}
}

func TestNewCustomKeywords(t *testing.T) {
	t.Parallel()

	c := New([]string{"  Dodgers  ", ""})

	if !c.IsOtaniArticle("dodgers win the pennant", "", "") {
		t.Fatalf("expected custom keyword to match after trimming")
	}
	if c.IsOtaniArticle("Shohei Ohtani hits two home runs", "", "") {
		t.Fatalf("default keywords must not apply when custom ones are given")
	}
}
