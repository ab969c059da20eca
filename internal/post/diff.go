package post

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Diff returns a unified diff between two versions of a post, or "" when
// their editable fields match.
func Diff(before, after Post) string {
	a := render(before)
	b := render(after)
	if a == b {
		return ""
	}
	name := "post/" + before.ID
	edits := myers.ComputeEdits(span.URIFromPath(name), a, b)
	return fmt.Sprint(gotextdiff.ToUnified(name+" (before)", name+" (after)", a, edits))
}

func render(p Post) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "title: %s\n", p.Title)
	fmt.Fprintf(&sb, "author: %s\n", p.Author)
	fmt.Fprintf(&sb, "category: %s\n", p.Category)
	fmt.Fprintf(&sb, "tags: %s\n", strings.Join(p.Tags, ", "))
	sb.WriteString("content:\n")
	for _, line := range strings.Split(p.Content, "\n") {
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}
