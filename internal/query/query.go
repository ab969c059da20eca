// Package query derives views from a post list: text and category
// filtering, the category set, and counts. Every function is pure.
package query

import (
	"sort"
	"strings"

	"github.com/jeanpaul/postdeck/internal/post"
)

// Stats summarizes a post list.
type Stats struct {
	TotalCount    int `json:"totalCount"`
	CategoryCount int `json:"categoryCount"`
}

// Filter returns the posts matching both q and category, in input order.
// q is trimmed and matched case-insensitively as a substring of the title or
// of any tag; an empty q matches everything. category must equal the post's
// category exactly; an empty category matches everything.
func Filter(posts []post.Post, q, category string) []post.Post {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" && category == "" {
		return posts
	}

	out := []post.Post{}
	for _, p := range posts {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" && !matchesText(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesText(p post.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// DistinctCategories returns the unique categories in ascending order.
func DistinctCategories(posts []post.Post) []string {
	seen := make(map[string]bool, len(posts))
	out := []string{}
	for _, p := range posts {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Summarize counts posts and distinct categories.
func Summarize(posts []post.Post) Stats {
	return Stats{
		TotalCount:    len(posts),
		CategoryCount: len(DistinctCategories(posts)),
	}
}

// Criteria is the filter state a presentation layer holds between redraws.
type Criteria struct {
	Query    string
	Category string
}

// Apply filters posts by the criteria.
func (c Criteria) Apply(posts []post.Post) []post.Post {
	return Filter(posts, c.Query, c.Category)
}

// IsZero reports whether no filter is set.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Query) == "" && c.Category == ""
}

// Reconcile clears the selected category when it is no longer among
// categories, e.g. after its last post was deleted.
func (c Criteria) Reconcile(categories []string) Criteria {
	if c.Category == "" {
		return c
	}
	for _, cat := range categories {
		if cat == c.Category {
			return c
		}
	}
	c.Category = ""
	return c
}
