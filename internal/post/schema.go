package post

import (
	"encoding/json"
	"fmt"

	"github.com/jeanpaul/postdeck/internal/schema"
)

// recordSchema describes one persisted post. Records that fail it are
// skipped on load; the rest of the list is kept.
const recordSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "title", "author", "category", "content", "createdAt"],
	"properties": {
		"id":        {"type": "string", "minLength": 1},
		"title":     {"type": "string", "pattern": "\\S"},
		"author":    {"type": "string", "pattern": "\\S"},
		"category":  {"type": "string", "pattern": "\\S"},
		"content":   {"type": "string", "pattern": "\\S"},
		"tags":      {"type": ["array", "null"], "items": {"type": "string"}},
		"createdAt": {"type": "string", "format": "date-time"},
		"updatedAt": {"type": ["string", "null"], "format": "date-time"}
	}
}`

var blobValidator = schema.NewValidator()

// RecordError is a stored record that Decode skipped.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e RecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (id %q): %v", e.Index, e.ID, e.Err)
}

// Decode parses a stored post list. err is set only when data is not a
// JSON array; individual records that fail recordSchema or do not decode
// are returned in skipped and left out of posts.
func Decode(data []byte) (posts []Post, skipped []RecordError, err error) {
	return decode(blobValidator, data)
}

func decode(v *schema.Validator, data []byte) ([]Post, []RecordError, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("stored posts are not a JSON list: %w", err)
	}

	posts := make([]Post, 0, len(raw))
	var skipped []RecordError
	for i, rec := range raw {
		var p Post
		err := v.Validate(recordSchema, rec)
		if err == nil {
			err = json.Unmarshal(rec, &p)
		}
		if err != nil {
			skipped = append(skipped, RecordError{Index: i, ID: recordID(rec), Err: err})
			continue
		}
		posts = append(posts, p)
	}
	return posts, skipped, nil
}

// recordID pulls the id out of a record that may be otherwise broken.
func recordID(rec json.RawMessage) string {
	var head struct {
		ID any `json:"id"`
	}
	if json.Unmarshal(rec, &head) != nil || head.ID == nil {
		return ""
	}
	if s, ok := head.ID.(string); ok {
		return s
	}
	return fmt.Sprint(head.ID)
}

// CheckBlob reports the first problem Load would log for data, or nil when
// every record would be kept.
func CheckBlob(data []byte) error {
	_, skipped, err := Decode(data)
	if err != nil {
		return err
	}
	if len(skipped) > 0 {
		return skipped[0]
	}
	return nil
}
