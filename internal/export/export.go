// Package export writes the post list to JSON, YAML or XLSX files and reads
// those files back as post inputs.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/postdeck/internal/post"
)

// Format is a file format, chosen from the file extension.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	XLSX Format = "xlsx"
)

// FormatOf maps a path's extension to a Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".xlsx":
		return XLSX, nil
	default:
		return "", fmt.Errorf("export: unsupported file type %q (use .json, .yaml, .yml or .xlsx)", filepath.Ext(path))
	}
}

// record is the subset of a post that import reads back. Ids and timestamps
// in the file are ignored; the store assigns fresh ones.
type record struct {
	Title    string   `json:"title" yaml:"title"`
	Author   string   `json:"author" yaml:"author"`
	Category string   `json:"category" yaml:"category"`
	Tags     []string `json:"tags" yaml:"tags"`
	Content  string   `json:"content" yaml:"content"`
}

func (r record) input() post.Input {
	return post.Input{
		Title:    r.Title,
		Author:   r.Author,
		Category: r.Category,
		Tags:     strings.Join(r.Tags, ", "),
		Content:  r.Content,
	}
}

// WriteFile writes posts to path in the format its extension names.
func WriteFile(path string, posts []post.Post) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []post.Post{}
	}

	var data []byte
	switch format {
	case JSON:
		data, err = json.MarshalIndent(posts, "", "  ")
	case YAML:
		data, err = yaml.Marshal(posts)
	case XLSX:
		return writeXLSX(path, posts)
	}
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// ReadFile reads the records in path as create inputs, in file order.
func ReadFile(path string) ([]post.Input, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if format == XLSX {
		return readXLSX(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	var records []record
	switch format {
	case JSON:
		err = json.Unmarshal(data, &records)
	case YAML:
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, fmt.Errorf("export: decode %s: %w", path, err)
	}

	inputs := make([]post.Input, 0, len(records))
	for _, r := range records {
		inputs = append(inputs, r.input())
	}
	return inputs, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
