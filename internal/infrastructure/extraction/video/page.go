package video

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// initialDataMarkers are the assignments the watch page uses for its
// embedded data blob, most common first.
var initialDataMarkers = [][]byte{
	[]byte("var ytInitialData = "),
	[]byte(`window["ytInitialData"] = `),
	[]byte("ytInitialData = "),
}

// initialData is the slice of the embedded blob that carries the long-form
// description. Everything else in the blob is ignored.
type initialData struct {
	Contents struct {
		TwoColumnWatchNextResults struct {
			Results struct {
				Results struct {
					Contents []struct {
						VideoSecondaryInfoRenderer *struct {
							AttributedDescription *struct {
								Content string `json:"content"`
							} `json:"attributedDescription"`
						} `json:"videoSecondaryInfoRenderer"`
					} `json:"contents"`
				} `json:"results"`
			} `json:"results"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
}

// WatchPage is the metadata read from a watch page.
type WatchPage struct {
	Title       string
	Description string
}

// ParseWatchPage reads the title from og:title and the description from the
// embedded data blob, falling back to og:description.
func ParseWatchPage(page []byte) WatchPage {
	var meta WatchPage

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err == nil {
		meta.Title = metaProperty(doc, "og:title")
	}

	meta.Description = DescriptionFromInitialData(page)
	if meta.Description == "" && doc != nil {
		meta.Description = metaProperty(doc, "og:description")
	}
	return meta
}

// DescriptionFromInitialData returns the attributed description from the
// embedded data blob, or "" when the blob is absent, malformed or lacks it.
func DescriptionFromInitialData(page []byte) string {
	for _, marker := range initialDataMarkers {
		idx := bytes.Index(page, marker)
		if idx < 0 {
			continue
		}

		var data initialData
		dec := json.NewDecoder(bytes.NewReader(page[idx+len(marker):]))
		if err := dec.Decode(&data); err != nil {
			continue
		}

		for _, item := range data.Contents.TwoColumnWatchNextResults.Results.Results.Contents {
			if r := item.VideoSecondaryInfoRenderer; r != nil && r.AttributedDescription != nil {
				return strings.TrimSpace(r.AttributedDescription.Content)
			}
		}
		return ""
	}
	return ""
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
