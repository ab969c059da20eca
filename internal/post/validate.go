package post

import "strings"

// Field names used as ValidationErrors keys.
const (
	FieldTitle    = "title"
	FieldAuthor   = "author"
	FieldCategory = "category"
	FieldContent  = "content"
)

// Validate reports each required field that is empty after trimming.
// Tags are optional and never validated. An empty result means valid.
func Validate(in Input) ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs[FieldTitle] = "Title is required"
	}
	if strings.TrimSpace(in.Author) == "" {
		errs[FieldAuthor] = "Author is required"
	}
	if strings.TrimSpace(in.Category) == "" {
		errs[FieldCategory] = "Category is required"
	}
	if strings.TrimSpace(in.Content) == "" {
		errs[FieldContent] = "Content is required"
	}
	return errs
}

// normalize trims the text fields of a validated input.
func normalize(in Input) Input {
	return Input{
		Title:    strings.TrimSpace(in.Title),
		Author:   strings.TrimSpace(in.Author),
		Category: strings.TrimSpace(in.Category),
		Tags:     in.Tags,
		Content:  strings.TrimSpace(in.Content),
	}
}
