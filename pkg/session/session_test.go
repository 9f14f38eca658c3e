package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/tileme/pkg/cache"
	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/tiler"
)

func heroItems() []layout.ItemSpec {
	return []layout.ItemSpec{
		{ID: "hero", Cols: 2, Rows: 2},
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}
}

func newSession(t *testing.T) *Session {
	t.Helper()
	sess, err := Create(800, tiler.DefaultConfig(), heroItems(), DefaultTTL)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return sess
}

func TestCreate(t *testing.T) {
	sess := newSession(t)

	if err := errors.ValidateID(sess.ID); err != nil {
		t.Errorf("ID %q is not a canonical uuid: %v", sess.ID, err)
	}
	if sess.IsExpired() {
		t.Error("fresh session is expired")
	}
	if got := len(sess.State.Items); got != 5 {
		t.Errorf("state items = %d, want 5", got)
	}

	l, err := sess.Layout()
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if l.ID != sess.ID {
		t.Errorf("layout ID = %q, want %q", l.ID, sess.ID)
	}
	if l.Height != 400 {
		t.Errorf("height = %v, want 400", l.Height)
	}
}

func TestCreateInvalid(t *testing.T) {
	if _, err := Create(800, tiler.DefaultConfig(), []layout.ItemSpec{{ID: "a"}, {ID: "a"}}, DefaultTTL); !errors.Is(err, errors.ErrCodeInvalidItem) {
		t.Errorf("duplicate ids: got %v, want INVALID_ITEM", err)
	}
	if _, err := Create(0, tiler.DefaultConfig(), heroItems(), DefaultTTL); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("zero width: got %v, want INVALID_CONFIG", err)
	}
}

func TestSessionAppend(t *testing.T) {
	sess := newSession(t)

	l, err := sess.Append([]layout.ItemSpec{{ID: "e"}, {}})
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if len(l.Tiles) != 7 {
		t.Fatalf("tiles = %d, want 7", len(l.Tiles))
	}
	if l.Tiles[0].X != 0 || l.Tiles[0].Y != 0 {
		t.Errorf("hero moved to (%v, %v)", l.Tiles[0].X, l.Tiles[0].Y)
	}
	e := l.Tiles[5]
	if e.ID != "e" || e.Column != 0 || e.Y != 400 {
		t.Errorf("e = %+v, want column 0 at y 400", e)
	}
	if got := l.Tiles[6].ID; got != "item-7" {
		t.Errorf("anonymous item got id %q, want item-7", got)
	}
	if l.Height != 600 {
		t.Errorf("height = %v, want 600", l.Height)
	}
	if len(sess.Items) != 7 {
		t.Errorf("session items = %d, want 7", len(sess.Items))
	}
}

func TestSessionAppendDuplicate(t *testing.T) {
	sess := newSession(t)
	before := sess.State

	if _, err := sess.Append([]layout.ItemSpec{{ID: "hero"}}); !errors.Is(err, errors.ErrCodeInvalidItem) {
		t.Fatalf("got %v, want INVALID_ITEM", err)
	}
	if !sess.State.Equal(before) || len(sess.Items) != 5 {
		t.Error("failed append changed the session")
	}
}

func TestSessionResize(t *testing.T) {
	sess := newSession(t)

	l, err := sess.Resize(400)
	if err != nil {
		t.Fatalf("Resize() error: %v", err)
	}
	if l.TotalCols != 2 || l.Height != 800 {
		t.Errorf("cols=%d height=%v, want 2 and 800", l.TotalCols, l.Height)
	}
	if sess.State.ContainerWidth != 400 {
		t.Errorf("state width = %v, want 400", sess.State.ContainerWidth)
	}

	before := sess.State
	if _, err := sess.Resize(-1); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative width: got %v, want INVALID_CONFIG", err)
	}
	if !sess.State.Equal(before) {
		t.Error("failed resize changed the session")
	}
}

func TestSessionRetile(t *testing.T) {
	sess := newSession(t)
	before, err := sess.Layout()
	if err != nil {
		t.Fatal(err)
	}

	after, err := sess.Retile()
	if err != nil {
		t.Fatalf("Retile() error: %v", err)
	}
	for i := range before.Tiles {
		b, a := before.Tiles[i], after.Tiles[i]
		if b.Column != a.Column || b.Y != a.Y || b.Seq != a.Seq {
			t.Errorf("tile %s moved: %+v -> %+v", b.ID, b, a)
		}
	}
}

func TestSessionTouch(t *testing.T) {
	sess := New(tiler.State{}, nil, time.Minute)
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if !sess.IsExpired() {
		t.Fatal("expected expired session")
	}
	sess.Touch(time.Hour)
	if sess.IsExpired() {
		t.Error("touched session still expired")
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	sess := newSession(t)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for stored session")
	}
	if !got.State.Equal(sess.State) {
		t.Error("state did not survive the store")
	}
	if len(got.Items) != len(sess.Items) {
		t.Errorf("items = %d, want %d", len(got.Items), len(sess.Items))
	}

	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if got, _ := store.Get(ctx, sess.ID); got != nil {
		t.Error("session still present after Delete()")
	}

	missing := New(tiler.State{}, nil, time.Hour)
	if got, err := store.Get(ctx, missing.ID); got != nil || err != nil {
		t.Errorf("missing session: got %v, %v; want nil, nil", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live := newSession(t)
	dead := newSession(t)
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, live)
	store.Set(ctx, dead)

	if got, _ := store.Get(ctx, dead.ID); got != nil {
		t.Error("expired session returned")
	}

	store.Set(ctx, dead)
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", store.Len())
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := newSession(t)
	store.Set(ctx, sess)

	sess.Items[0].Label = "changed"
	got, _ := store.Get(ctx, sess.ID)
	if got.Items[0].Label == "changed" {
		t.Error("store shares memory with the caller")
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	testStore(t, store)
}

func TestFileStoreRejectsBadID(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "../../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("Get(traversal) = %v, want INVALID_ID", err)
	}
	if err := store.Set(ctx, &Session{ID: "nope"}); !errors.Is(err, errors.ErrCodeInvalidID) {
		t.Errorf("Set(bad id) = %v, want INVALID_ID", err)
	}
}

func TestFileStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	live := newSession(t)
	dead := newSession(t)
	dead.ExpiresAt = time.Now().Add(-time.Minute)
	store.Set(ctx, live)
	store.Set(ctx, dead)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, dead.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, live.ID+".json")); err != nil {
		t.Error("live session file removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("unrelated file removed")
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if store.Path() != dir {
		t.Errorf("Path() = %q, want %q", store.Path(), dir)
	}
	sess := newSession(t)
	store.Set(context.Background(), sess)

	info, err := os.Stat(filepath.Join(dir, sess.ID+".json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TILEME_REDIS_ADDR")
	if addr == "" {
		t.Skip("TILEME_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisStore(client, cache.NewScopedKeyer(nil, "test:"+t.Name()))
	defer store.Close()
	testStore(t, store)
}

func TestLocker(t *testing.T) {
	l := NewLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s")
			defer unlock()

			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d goroutines held the lock at once", maxSeen)
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d after release, want 0", l.Len())
	}
}

func TestLockerIndependentIDs(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	unlockA()
}
