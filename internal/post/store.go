package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/logging"
	"github.com/jeanpaul/postdeck/internal/schema"
)

// DefaultKey is the slot key holding the serialized post list.
const DefaultKey = "postdeck_posts"

// Store is the authoritative, ordered list of posts. New posts go to the
// front; updates keep their position. Every mutation rewrites the whole list
// to the slot.
type Store struct {
	mu     sync.RWMutex
	posts  []Post
	slot   kv.Store
	key    string
	strict bool
	now    func() time.Time
	newID  func() string
	log    *logrus.Entry
	schema *schema.Validator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the entry used for load and persist diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithStrictPersistence makes mutators return a *PersistenceError when the
// slot write fails. The mutation itself is kept either way.
func WithStrictPersistence(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// NewStore returns an empty store backed by slot. Call Load to read what the
// slot already holds.
func NewStore(slot kv.Store, opts ...Option) *Store {
	s := &Store{
		posts:  []Post{},
		slot:   slot,
		key:    DefaultKey,
		now:    time.Now,
		newID:  uuid.NewString,
		schema: schema.NewValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.For("post-store")
	}
	return s
}

// Load replaces the in-memory list with the slot's contents. A missing,
// unreadable or unparsable value leaves the store empty. Records that fail
// validation are dropped one by one. Causes are logged and never returned.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = []Post{}

	data, err := s.slot.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.WithError(err).WithField("key", s.key).Error("reading posts from storage")
		}
		return
	}

	posts, skipped, err := decode(s.schema, data)
	if err != nil {
		s.log.WithError(err).WithField("key", s.key).Warn("stored posts are corrupt, starting empty")
		return
	}
	for _, rec := range skipped {
		s.log.WithError(rec.Err).WithFields(logrus.Fields{
			"key":   s.key,
			"index": rec.Index,
			"id":    rec.ID,
		}).Warn("dropping invalid post from storage")
	}

	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			s.log.WithField("id", p.ID).Warn("dropping duplicate post id from storage")
			continue
		}
		seen[p.ID] = true
		if p.Tags == nil {
			p.Tags = []string{}
		}
		s.posts = append(s.posts, p)
	}
	s.log.WithField("count", len(s.posts)).Debug("posts loaded")
}

// Validate reports the required fields of in that are empty after trimming.
func (s *Store) Validate(in Input) ValidationErrors {
	return Validate(in)
}

// Create validates in, stores it as a new post at the front of the list and
// persists. In strict mode a failed write returns the created post together
// with a *PersistenceError.
func (s *Store) Create(ctx context.Context, in Input) (Post, error) {
	if errs := Validate(in); len(errs) > 0 {
		return Post{}, &ValidationError{Fields: errs}
	}
	in = normalize(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Post{
		ID:        s.newID(),
		Title:     in.Title,
		Author:    in.Author,
		Category:  in.Category,
		Tags:      ParseTags(in.Tags),
		Content:   in.Content,
		CreatedAt: s.stamp(),
	}
	s.posts = append([]Post{p}, s.posts...)
	s.log.WithField("id", p.ID).Debug("post created")

	return p.clone(), s.persistLocked(ctx)
}

// Update replaces the editable fields of the post with the given id, keeping
// its id, creation time and position.
func (s *Store) Update(ctx context.Context, id string, in Input) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Post{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	if errs := Validate(in); len(errs) > 0 {
		return Post{}, &ValidationError{Fields: errs}
	}
	in = normalize(in)

	updated := s.stamp()
	p := s.posts[idx]
	p.Title = in.Title
	p.Author = in.Author
	p.Category = in.Category
	p.Tags = ParseTags(in.Tags)
	p.Content = in.Content
	p.UpdatedAt = &updated
	s.posts[idx] = p
	s.log.WithField("id", id).Debug("post updated")

	return p.clone(), s.persistLocked(ctx)
}

// Delete removes the post with the given id. Deleting an id that is not
// there is not an error; the list is persisted either way.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexLocked(id); idx >= 0 {
		s.posts = append(s.posts[:idx], s.posts[idx+1:]...)
		s.log.WithField("id", id).Debug("post deleted")
	}
	return s.persistLocked(ctx)
}

// List returns a snapshot of all posts, newest first. Changing it does not
// affect the store.
func (s *Store) List() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = p.clone()
	}
	return out
}

// Get returns a snapshot of one post.
func (s *Store) Get(id string) (Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Post{}, false
	}
	return s.posts[idx].clone(), true
}

// Len returns the number of stored posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Flush writes the current list to the slot and always reports the
// outcome, regardless of strict mode.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write(ctx)
}

// Snapshot serializes the list exactly as it is persisted.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.posts)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// persistLocked writes the list and applies the persistence policy: logged
// and swallowed by default, surfaced in strict mode.
func (s *Store) persistLocked(ctx context.Context) error {
	err := s.write(ctx)
	if err == nil {
		return nil
	}
	s.log.WithError(err).WithField("key", s.key).Error("saving posts to storage")
	if s.strict {
		return err
	}
	return nil
}

func (s *Store) write(ctx context.Context) error {
	data, err := json.Marshal(s.posts)
	if err != nil {
		return &PersistenceError{Key: s.key, Err: err}
	}
	if err := s.slot.Set(ctx, s.key, data); err != nil {
		return &PersistenceError{Key: s.key, Err: err}
	}
	return nil
}

func (p Post) clone() Post {
	out := p
	out.Tags = append([]string{}, p.Tags...)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
