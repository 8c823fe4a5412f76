package doctolib

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/net/html"

	"github.com/example/doctoshotgun/internal/domain/booking"
)

const searchResultClass = "js-dl-search-results-calendar"

// searchResultIDs extracts the search result ids embedded in the
// data-props attribute of every calendar placeholder of a city page.
func searchResultIDs(page []byte) ([]booking.ID, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var (
		ids  []booking.ID
		walk func(*html.Node) error
	)
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Data == "div" && attr(n, "class") == searchResultClass {
			var props struct {
				SearchResultID booking.ID `json:"searchResultId"`
			}
			if err := json.Unmarshal([]byte(attr(n, "data-props")), &props); err != nil {
				return err
			}
			ids = append(ids, props.SearchResultID)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		return nil, err
	}
	return ids, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
