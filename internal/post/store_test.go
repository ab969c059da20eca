package post

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeanpaul/postdeck/internal/kv"
)

// failingSlot wraps a MemoryStore and fails writes while broken is set.
type failingSlot struct {
	*kv.MemoryStore
	broken bool
	writes int
}

func (f *failingSlot) Set(ctx context.Context, key string, value []byte) error {
	f.writes++
	if f.broken {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func input(title string) Input {
	return Input{Title: title, Author: "Ada", Category: "Tech", Tags: "x", Content: "body of " + title}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *kv.MemoryStore) {
	t.Helper()
	slot := kv.NewMemoryStore()
	s := NewStore(slot, append([]Option{WithClock(newClock().Now)}, opts...)...)
	s.Load(context.Background())
	return s, slot
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func titles(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestCreate_UniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		p, err := s.Create(ctx, input(fmt.Sprintf("post %d", i)))
		require.NoError(t, err)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, s.List(), 200)
}

func TestCreate_TrimAndReject(t *testing.T) {
	s, slot := newTestStore(t)
	ctx := context.Background()

	in := input("ok")
	in.Title = "   "
	_, err := s.Create(ctx, in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title is required", verr.Fields[FieldTitle])
	assert.Len(t, verr.Fields, 1)
	assert.Empty(t, s.List())

	// Nothing was written either.
	_, err = slot.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestCreate_TrimsFieldsAndParsesTags(t *testing.T) {
	s, _ := newTestStore(t)

	p, err := s.Create(context.Background(), Input{
		Title:    "  Hello  ",
		Author:   "\tAda ",
		Category: " Tech",
		Tags:     " a, , b ,b",
		Content:  " text \n",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "Ada", p.Author)
	assert.Equal(t, "Tech", p.Category)
	assert.Equal(t, "text", p.Content)
	assert.Equal(t, []string{"a", "b", "b"}, p.Tags)
	assert.Nil(t, p.UpdatedAt)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestCreate_NewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, input("A"))
	require.NoError(t, err)
	b, err := s.Create(ctx, input("B"))
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID, a.ID}, ids(s.List()))
}

func TestUpdate_PreservesIdentityAndPosition(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, input("A"))
	b, _ := s.Create(ctx, input("B"))

	updated, err := s.Update(ctx, a.ID, Input{
		Title: "A2", Author: "Grace", Category: "Life", Tags: "p, q", Content: "new body",
	})
	require.NoError(t, err)

	list := s.List()
	require.Equal(t, []string{b.ID, a.ID}, ids(list))

	got := list[1]
	assert.Equal(t, updated, got)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	assert.Equal(t, "A2", got.Title)
	assert.Equal(t, "Grace", got.Author)
	assert.Equal(t, "Life", got.Category)
	assert.Equal(t, []string{"p", "q"}, got.Tags)
	assert.Equal(t, "new body", got.Content)
}

func TestUpdate_StampsEveryTime(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, input("A"))
	first, err := s.Update(ctx, a.ID, input("A1"))
	require.NoError(t, err)
	second, err := s.Update(ctx, a.ID, input("A2"))
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.After(*first.UpdatedAt))
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Update(context.Background(), "nope", input("A"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestUpdate_ValidationLeavesPostAlone(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, input("A"))
	_, err := s.Update(ctx, a.ID, Input{Title: "A2"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestDelete_Idempotent(t *testing.T) {
	s, slot := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, input("A"))
	b, _ := s.Create(ctx, input("B"))
	c, _ := s.Create(ctx, input("C"))

	require.NoError(t, s.Delete(ctx, b.ID))
	first := s.List()
	assert.Equal(t, []string{c.ID, a.ID}, ids(first))

	require.NoError(t, s.Delete(ctx, b.ID))
	assert.Equal(t, first, s.List())

	// The persisted value matches memory after the no-op delete too.
	data, err := slot.Get(ctx, DefaultKey)
	require.NoError(t, err)
	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.JSONEq(t, string(snap), string(data))
}

func TestList_IsSnapshot(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, input("A"))
	_, _ = s.Update(ctx, a.ID, input("A"))

	list := s.List()
	list[0].Title = "mutated"
	list[0].Tags[0] = "mutated"
	*list[0].UpdatedAt = time.Time{}

	again := s.List()
	assert.Equal(t, "A", again[0].Title)
	assert.Equal(t, []string{"x"}, again[0].Tags)
	assert.False(t, again[0].UpdatedAt.IsZero())
	assert.Len(t, again, 1)
}

func TestRoundTrip(t *testing.T) {
	s, slot := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Create(ctx, input("A"))
	_, _ = s.Create(ctx, Input{Title: "B", Author: "b", Category: "Life", Content: "no tags"})
	_, _ = s.Update(ctx, a.ID, input("A edited"))

	reloaded := NewStore(slot)
	reloaded.Load(ctx)

	assert.Empty(t, cmp.Diff(s.List(), reloaded.List()))
}

func TestLoad_AbsentOrCorrupt(t *testing.T) {
	ctx := context.Background()

	cases := map[string]string{
		"not json":       `{{{`,
		"wrong shape":    `{"id":"a"}`,
		"missing field":  `[{"id":"a","title":"t","author":"a","category":"c","createdAt":"2026-01-01T00:00:00Z"}]`,
		"blank title":    `[{"id":"a","title":"  ","author":"a","category":"c","content":"x","createdAt":"2026-01-01T00:00:00Z"}]`,
		"bad timestamp":  `[{"id":"a","title":"t","author":"a","category":"c","content":"x","createdAt":"yesterday"}]`,
		"tag not string": `[{"id":"a","title":"t","author":"a","category":"c","content":"x","tags":[1],"createdAt":"2026-01-01T00:00:00Z"}]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			slot := kv.NewMemoryStore()
			require.NoError(t, slot.Set(ctx, DefaultKey, []byte(blob)))

			s := NewStore(slot)
			s.Load(ctx)
			assert.Empty(t, s.List())
			assert.NotNil(t, s.List())
		})
	}

	t.Run("absent", func(t *testing.T) {
		s := NewStore(kv.NewMemoryStore())
		s.Load(ctx)
		assert.Empty(t, s.List())
	})
}

func TestLoad_AcceptsStoredPosts(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemoryStore()
	blob := `[
		{"id":"b","title":"B","author":"x","category":"Life","content":"b","tags":null,"createdAt":"2026-01-02T00:00:00.123Z","updatedAt":"2026-01-03T00:00:00Z"},
		{"id":"a","title":"A","author":"x","category":"Tech","content":"a","tags":["go"],"createdAt":"2026-01-01T00:00:00Z"},
		{"id":"a","title":"dup","author":"x","category":"Tech","content":"a","createdAt":"2026-01-01T00:00:00Z"}
	]`
	require.NoError(t, slot.Set(ctx, DefaultKey, []byte(blob)))

	s := NewStore(slot)
	s.Load(ctx)

	list := s.List()
	require.Equal(t, []string{"b", "a"}, ids(list))
	assert.Equal(t, []string{}, list[0].Tags)
	assert.NotNil(t, list[0].UpdatedAt)
	assert.Equal(t, "A", list[1].Title)
	assert.Equal(t, 123*time.Millisecond, time.Duration(list[0].CreatedAt.Nanosecond()))
}

func TestLoad_DropsOnlyInvalidRecords(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemoryStore()
	blob := `[
		{"id":"good","title":"Kept","author":"x","category":"Tech","content":"a","createdAt":"2026-01-01T00:00:00Z","updatedAt":null},
		{"id":"blank","title":"  ","author":"x","category":"Tech","content":"b","createdAt":"2026-01-01T00:00:00Z"},
		{"id":"when","title":"T","author":"x","category":"Tech","content":"c","createdAt":"yesterday"},
		{"id":"also","title":"Also kept","author":"y","category":"Life","content":"d","createdAt":"2026-01-02T00:00:00Z"}
	]`
	require.NoError(t, slot.Set(ctx, DefaultKey, []byte(blob)))

	s := NewStore(slot, WithClock(newClock().Now))
	s.Load(ctx)
	require.Equal(t, []string{"good", "also"}, ids(s.List()))
	assert.Nil(t, s.List()[0].UpdatedAt)

	// The next write keeps the surviving records in storage.
	_, err := s.Create(ctx, input("new"))
	require.NoError(t, err)

	reloaded := NewStore(slot)
	reloaded.Load(ctx)
	assert.Equal(t, []string{"new", "Kept", "Also kept"}, titles(reloaded.List()))
}

func TestDecode(t *testing.T) {
	posts, skipped, err := Decode([]byte(`[{"id":"a","title":"T","author":"A","category":"C","content":"x","createdAt":"2024-03-01T10:00:00Z"},{"id":7},"nope"]`))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Len(t, skipped, 2)
	assert.Equal(t, 1, skipped[0].Index)
	assert.Equal(t, "7", skipped[0].ID)
	assert.Equal(t, 2, skipped[1].Index)
	assert.Empty(t, skipped[1].ID)

	_, _, err = Decode([]byte(`{"id":"a"}`))
	assert.ErrorContains(t, err, "not a JSON list")
}

func TestPersistFailure_SwallowedByDefault(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemoryStore: kv.NewMemoryStore(), broken: true}
	s := NewStore(slot)

	p, err := s.Create(ctx, input("A"))
	assert.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids(s.List()))
	assert.Equal(t, 1, slot.writes)

	// The slot never received the post: memory and storage diverge until
	// the next good write.
	_, err = slot.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	slot.broken = false
	require.NoError(t, s.Flush(ctx))
	reloaded := NewStore(slot)
	reloaded.Load(ctx)
	assert.Equal(t, []string{p.ID}, ids(reloaded.List()))
}

func TestPersistFailure_StrictSurfaces(t *testing.T) {
	ctx := context.Background()
	slot := &failingSlot{MemoryStore: kv.NewMemoryStore(), broken: true}
	s := NewStore(slot, WithStrictPersistence(true))

	p, err := s.Create(ctx, input("A"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, DefaultKey, perr.Key)
	assert.Contains(t, err.Error(), "quota exceeded")

	// The mutation stands and is returned.
	assert.NotEmpty(t, p.ID)
	assert.Len(t, s.List(), 1)

	_, err = s.Update(ctx, p.ID, input("B"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, s.Delete(ctx, p.ID), ErrPersistence)
	assert.ErrorIs(t, s.Flush(ctx), ErrPersistence)
}

func TestWithIDGeneratorAndKey(t *testing.T) {
	ctx := context.Background()
	slot := kv.NewMemoryStore()
	n := 0
	s := NewStore(slot, WithKey("other"), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	p, err := s.Create(ctx, input("A"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID)

	_, err = slot.Get(ctx, "other")
	assert.NoError(t, err)
}

func TestSeed(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	n, err := Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "Hidden Gems of Southeast Asia", list[0].Title)

	n, err = Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, s.List(), 3)
}
