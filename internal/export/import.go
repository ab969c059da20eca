package export

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jeanpaul/postdeck/internal/post"
)

// Skipped is a record import rejected.
type Skipped struct {
	File  string
	Index int
	Err   error
}

// Result summarizes an import.
type Result struct {
	Files   []string
	Created []post.Post
	Skipped []Skipped
}

type source struct {
	file  string
	index int
	in    post.Input
}

// Import creates a post for every record in the files matching pattern.
// Patterns may use doublestar globs such as "exports/**/*.json". Records are
// created last to first so the first record of the first file ends up on top
// of the list. Invalid records are skipped and reported in the Result.
//
// A failed write in strict mode does not stop the import; the last
// persistence error is returned alongside the Result.
func Import(ctx context.Context, store *post.Store, pattern string) (Result, error) {
	var res Result

	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return res, fmt.Errorf("import: bad pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("import: no files match %q", pattern)
	}
	sort.Strings(files)
	res.Files = files

	var sources []source
	for _, file := range files {
		inputs, err := ReadFile(file)
		if err != nil {
			return res, err
		}
		for i, in := range inputs {
			sources = append(sources, source{file: file, index: i, in: in})
		}
	}

	var persistErr error
	for i := len(sources) - 1; i >= 0; i-- {
		src := sources[i]
		p, err := store.Create(ctx, src.in)
		var verr *post.ValidationError
		switch {
		case err == nil:
		case errors.As(err, &verr):
			res.Skipped = append(res.Skipped, Skipped{File: src.file, Index: src.index, Err: err})
			continue
		case errors.Is(err, post.ErrPersistence):
			persistErr = err
		default:
			return res, err
		}
		res.Created = append(res.Created, p)
	}

	// Report in file order.
	reversePosts(res.Created)
	sort.SliceStable(res.Skipped, func(a, b int) bool {
		if res.Skipped[a].File != res.Skipped[b].File {
			return res.Skipped[a].File < res.Skipped[b].File
		}
		return res.Skipped[a].Index < res.Skipped[b].Index
	})
	return res, persistErr
}

func reversePosts(posts []post.Post) {
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
}
