package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

// extractThumbnail resolves an entry's thumbnail URL.
// Priority: media:thumbnail > media:content > enclosure with an image type.
func extractThumbnail(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, thumb := range media["thumbnail"] {
			if u := thumb.Attrs["url"]; u != "" {
				return u
			}
		}
		for _, content := range media["content"] {
			if u := content.Attrs["url"]; u != "" {
				return u
			}
		}
	}

	for _, enc := range item.Enclosures {
		if strings.Contains(enc.Type, "image") && enc.URL != "" {
			return enc.URL
		}
	}

	return ""
}
