package post

import "context"

// SampleInputs are the demo posts offered to an empty store.
func SampleInputs() []Input {
	return []Input{
		{
			Title:    "Getting Started with Go",
			Author:   "Jane Developer",
			Category: "Technology",
			Tags:     "go, programming, beginner",
			Content:  "Go is a small language with a big standard library. This post walks through the basics, from packages and modules to goroutines and channels, and ends with a tiny command line tool you can extend on your own.",
		},
		{
			Title:    "The Art of Minimalist Living",
			Author:   "John Minimalist",
			Category: "Lifestyle",
			Tags:     "minimalism, lifestyle, wellness",
			Content:  "Minimalist living is less about owning fewer things and more about making room for what matters. Here are practical ways to declutter your space and your schedule, and to build routines that feel intentional.",
		},
		{
			Title:    "Hidden Gems of Southeast Asia",
			Author:   "Sarah Explorer",
			Category: "Travel",
			Tags:     "travel, asia, adventure",
			Content:  "Southeast Asia is full of places that are still off the beaten path. Join me for quiet temples, empty beaches and night markets, with notes on getting there and when to go.",
		},
	}
}

// Seed creates the sample posts when the store is empty and reports how many
// were added.
func Seed(ctx context.Context, s *Store) (int, error) {
	if s.Len() > 0 {
		return 0, nil
	}
	n := 0
	for _, in := range SampleInputs() {
		if _, err := s.Create(ctx, in); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
