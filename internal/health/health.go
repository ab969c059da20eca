package health

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/post"
	"github.com/jeanpaul/postdeck/internal/theme"
)

type Status struct {
	Backend   string
	Location  string
	Reachable bool
	Keys      []KeyStatus
	Error     string
	Latency   time.Duration
}

// KeyStatus describes one slot key.
type KeyStatus struct {
	Key     string
	Present bool
	Bytes   int
	Records int
	Problem string
}

// Check verifies that the storage backend is reachable and inspects the
// slot keys postdeck writes.
func Check(ctx context.Context, store kv.Store) Status {
	s := Status{Backend: store.Backend(), Location: store.Location()}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		s.Error = fmt.Sprintf("cannot reach %s storage at %s: %s", s.Backend, s.Location, friendlyError(err))
		s.Latency = time.Since(start)
		return s
	}
	s.Reachable = true

	s.Keys = append(s.Keys, checkPosts(ctx, store, post.DefaultKey))
	s.Keys = append(s.Keys, checkTheme(ctx, store))

	s.Latency = time.Since(start)
	return s
}

// Healthy reports whether the backend is reachable and no key has a
// problem.
func (s Status) Healthy() bool {
	if !s.Reachable {
		return false
	}
	for _, k := range s.Keys {
		if k.Problem != "" {
			return false
		}
	}
	return true
}

func checkPosts(ctx context.Context, store kv.Store, key string) KeyStatus {
	ks := KeyStatus{Key: key}
	data, ok := read(ctx, store, &ks)
	if !ok {
		return ks
	}
	posts, skipped, err := post.Decode(data)
	if err != nil {
		ks.Problem = "stored posts are unreadable, load starts empty: " + firstLine(err.Error())
		return ks
	}
	ks.Records = len(posts)
	if len(skipped) > 0 {
		ks.Problem = fmt.Sprintf("%d of %d stored posts are invalid and skipped on load (first: %s)",
			len(skipped), len(posts)+len(skipped), firstLine(skipped[0].Error()))
	}
	return ks
}

func checkTheme(ctx context.Context, store kv.Store) KeyStatus {
	ks := KeyStatus{Key: theme.Key}
	data, ok := read(ctx, store, &ks)
	if !ok {
		return ks
	}
	if _, err := theme.Decode(data); err != nil {
		ks.Problem = fmt.Sprintf("stored theme %q is ignored", string(data))
	}
	return ks
}

func read(ctx context.Context, store kv.Store, ks *KeyStatus) ([]byte, bool) {
	data, err := store.Get(ctx, ks.Key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		ks.Problem = "cannot read: " + friendlyError(err)
		return nil, false
	}
	ks.Present = true
	ks.Bytes = len(data)
	return data, true
}

func firstLine(s string) string {
	s = strings.Replace(s, "schema validation failed:\n- ", "", 1)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func friendlyError(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "connection refused") {
		return "connection refused (is the service running?)"
	}
	if strings.Contains(msg, "no such host") {
		return "host not found (check the address)"
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return "connection timed out"
	}
	if strings.Contains(msg, "no such file or directory") {
		return "directory does not exist"
	}
	if strings.Contains(msg, "permission denied") {
		return "permission denied"
	}
	return msg
}
