// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forum

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Reference is an external link cited somewhere in the thread.
type Reference struct {
	URL        string
	Title      string
	Clicks     int
	PostNumber int
}

// References ranks the topic's tracked external links by click count,
// most-clicked first. Internal links, reflections (inbound mentions from
// other threads), and links back into the forum itself are skipped. Ties
// keep the metadata order, so the ranking is stable.
func References(topic *Topic) []Reference {
	refs := make([]Reference, 0, len(topic.Links))
	for _, l := range topic.Links {
		if l.Internal || l.Reflection {
			continue
		}
		if strings.Contains(l.URL, forumDomain()) {
			continue
		}
		title := strings.TrimSpace(strings.ReplaceAll(l.Title, "\n", " "))
		if title == "" {
			title = l.URL
		}
		refs = append(refs, Reference{
			URL:        l.URL,
			Title:      title,
			Clicks:     l.Clicks,
			PostNumber: l.PostNumber,
		})
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Clicks > refs[j].Clicks })
	return refs
}

// ReferencesFromHTML extracts external links by parsing post bodies. The
// topic's link metadata is cheaper and more reliable, so this is the path
// of last resort for forums that do not expose link tracking. Results keep
// post order and carry no click counts.
func ReferencesFromHTML(posts []Post) []Reference {
	var refs []Reference
	seen := make(map[string]bool)
	for _, p := range posts {
		if p.Hidden || p.Cooked == "" {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.Cooked))
		if err != nil {
			continue
		}
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(href)
			if !strings.HasPrefix(href, "http") ||
				strings.Contains(href, forumDomain()) ||
				seen[href] {
				return
			}
			seen[href] = true
			title := strings.Join(strings.Fields(a.Text()), " ")
			if title == "" {
				title = href
			}
			refs = append(refs, Reference{
				URL:        href,
				Title:      title,
				PostNumber: p.Number,
			})
		})
	}
	return refs
}

// forumDomain is the host part of the configured forum origin, used to
// recognize self-links.
func forumDomain() string {
	host := strings.TrimPrefix(forumBaseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	return host
}
