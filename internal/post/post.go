// Package post owns the blog post records: their shape, validation, and the
// Store that keeps them ordered newest-first and persisted in a kv slot.
package post

import (
	"strings"
	"time"
)

// Post is a single blog entry.
type Post struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Author    string     `json:"author" yaml:"author"`
	Category  string     `json:"category" yaml:"category"`
	Tags      []string   `json:"tags" yaml:"tags"`
	Content   string     `json:"content" yaml:"content"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Input is the raw form data for create and update. Tags is the
// comma-separated string as typed.
type Input struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Category string `json:"category" yaml:"category"`
	Tags     string `json:"tags" yaml:"tags"`
	Content  string `json:"content" yaml:"content"`
}

// InputFrom turns an existing post back into form data, e.g. to prefill an
// edit form.
func InputFrom(p Post) Input {
	return Input{
		Title:    p.Title,
		Author:   p.Author,
		Category: p.Category,
		Tags:     strings.Join(p.Tags, ", "),
		Content:  p.Content,
	}
}

// ParseTags splits raw on commas, trims each piece and drops the empty ones.
// Order and duplicates are kept.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, piece := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(piece); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Edited reports whether the post has been updated since creation.
func (p Post) Edited() bool {
	return p.UpdatedAt != nil
}
