package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu           sync.Mutex
	objects      []string
	pages        [][]string // scripted pages; when set, returned in order
	listErr      error
	listCalls    int
	blockCall    int // 1-based list call to park on gate
	gate         chan struct{}
	presignFail  map[string]int // remaining failures per key; -1 fails forever
	presignCalls map[string]int
	putErr       map[string]error
	removeErr    map[string]error
	removed      []string
}

func newFakeStore(keys ...string) *fakeStore {
	return &fakeStore{
		objects:      keys,
		presignFail:  make(map[string]int),
		presignCalls: make(map[string]int),
		putErr:       make(map[string]error),
		removeErr:    make(map[string]error),
	}
}

func (s *fakeStore) ListPage(ctx context.Context, prefix string, pageSize int, startAfter string) ([]string, error) {
	s.mu.Lock()
	s.listCalls++
	blocked := s.blockCall == s.listCalls
	gate := s.gate
	listErr := s.listErr
	var page []string
	scripted := len(s.pages) > 0
	if scripted {
		// pages pair with calls in arrival order, even when a call is
		// parked on the gate
		page = s.pages[0]
		s.pages = s.pages[1:]
	}
	s.mu.Unlock()

	if blocked {
		<-gate
	}
	if listErr != nil {
		return nil, listErr
	}
	if scripted {
		return page, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]string, 0, len(s.objects))
	for _, key := range s.objects {
		if strings.HasPrefix(key, prefix) && key > startAfter {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	if len(matched) > pageSize {
		matched = matched[:pageSize]
	}
	return matched, nil
}

func (s *fakeStore) PresignedGetURL(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presignCalls[key]++
	if n, ok := s.presignFail[key]; ok && n != 0 {
		if n > 0 {
			s.presignFail[key] = n - 1
		}
		return "", errors.New("presign unavailable")
	}
	return fmt.Sprintf("https://signed.example.com/%s?n=%d", key, s.presignCalls[key]), nil
}

func (s *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, err := range s.putErr {
		if strings.Contains(key, name) {
			return err
		}
	}
	s.objects = append(s.objects, key)
	return nil
}

func (s *fakeStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeErr[key]; err != nil {
		return err
	}
	s.removed = append(s.removed, key)
	return nil
}

type fakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.delays = append(f.delays, d)
	f.mu.Unlock()
	return nil
}

func testBrowser(t *testing.T, store *fakeStore, mutate ...func(*Config)) (*Browser, *fakeSleeper) {
	t.Helper()

	sleeper := &fakeSleeper{}
	cfg := Config{
		Category: "library",
		Store:    store,
		Log:      zerolog.Nop(),
		Sleep:    sleeper.sleep,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	b, err := NewBrowser(cfg)
	require.NoError(t, err)
	return b, sleeper
}

func keyN(i int) string {
	return fmt.Sprintf("gallery/library/%03d.jpg", i)
}

func storeWithN(n int) *fakeStore {
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, keyN(i))
	}
	return newFakeStore(keys...)
}

func paths(images []Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Path)
	}
	return out
}

func TestListPageMergesAndDedupesByPath(t *testing.T) {
	store := newFakeStore()
	store.pages = [][]string{
		{keyN(0), keyN(1), keyN(2)},
		{keyN(2), keyN(3), keyN(4)}, // overlaps the prior page
	}

	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 3 })

	require.NoError(t, b.ListPage(context.Background(), false))
	require.NoError(t, b.ListPage(context.Background(), true))

	snapshot := b.Snapshot()
	require.Equal(t, []string{keyN(0), keyN(1), keyN(2), keyN(3), keyN(4)}, paths(snapshot))

	seen := map[string]int{}
	for _, img := range snapshot {
		seen[img.Path]++
	}
	require.Equal(t, 1, seen[keyN(2)])
}

func TestListPageEmptyResultLeavesListIntact(t *testing.T) {
	store := newFakeStore()
	store.pages = [][]string{
		{keyN(0), keyN(1), keyN(2)},
		{},
	}

	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 3 })

	require.NoError(t, b.ListPage(context.Background(), false))
	require.True(t, b.HasMore())

	require.NoError(t, b.ListPage(context.Background(), true))
	require.False(t, b.HasMore())
	require.Equal(t, 3, b.Count())
}

func TestListPageFailureKeepsPriorList(t *testing.T) {
	store := storeWithN(2)
	b, _ := testBrowser(t, store)

	require.NoError(t, b.ListPage(context.Background(), false))
	require.Equal(t, 2, b.Count())

	store.mu.Lock()
	store.listErr = errors.New("backend down")
	store.mu.Unlock()

	require.Error(t, b.ListPage(context.Background(), false))
	require.Equal(t, 2, b.Count())
}

func TestPaginationTerminates(t *testing.T) {
	store := newFakeStore()
	store.pages = [][]string{
		{keyN(0), keyN(1)},
		{keyN(2), keyN(3)},
		{keyN(4)}, // short page ends pagination
	}

	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 2 })

	require.NoError(t, b.ListPage(context.Background(), false))
	require.NoError(t, b.ListPage(context.Background(), true))
	require.NoError(t, b.ListPage(context.Background(), true))
	require.False(t, b.HasMore())
	require.Equal(t, 5, b.Count())

	store.mu.Lock()
	calls := store.listCalls
	store.mu.Unlock()

	// further load-more requests must not hit the backend
	require.NoError(t, b.ListPage(context.Background(), true))
	store.mu.Lock()
	require.Equal(t, calls, store.listCalls)
	store.mu.Unlock()
}

func TestEagerResolveLoadsPageHead(t *testing.T) {
	store := storeWithN(6)
	b, _ := testBrowser(t, store, func(c *Config) {
		c.PageSize = 6
		c.EagerResolve = 4
	})

	require.NoError(t, b.ListPage(context.Background(), false))

	require.Eventually(t, func() bool {
		loaded := 0
		for _, img := range b.Snapshot() {
			if img.Loaded {
				loaded++
			}
		}
		return loaded == 4
	}, time.Second, 5*time.Millisecond)

	for i, img := range b.Snapshot() {
		if i < 4 {
			require.True(t, img.Loaded)
			require.NotEmpty(t, img.URL)
		} else {
			require.False(t, img.Loaded)
			require.Empty(t, img.URL)
		}
	}
}

func TestResolveRetryExhaustion(t *testing.T) {
	store := storeWithN(1)
	store.presignFail[keyN(0)] = -1

	b, sleeper := testBrowser(t, store)

	// Seed the list directly so eager resolution does not race the
	// attempt counter.
	b.mu.Lock()
	b.setEntries([]*Image{{Path: keyN(0)}})
	b.mu.Unlock()

	err := b.ResolveURL(context.Background(), keyN(0))
	require.Error(t, err)

	store.mu.Lock()
	require.Equal(t, 3, store.presignCalls[keyN(0)])
	store.mu.Unlock()

	sleeper.mu.Lock()
	require.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.delays)
	sleeper.mu.Unlock()

	img := b.Snapshot()[0]
	require.False(t, img.Loaded)
	require.True(t, img.Error)
}

func TestManualRetryClearsErrorAndRestartsCounter(t *testing.T) {
	store := storeWithN(1)
	store.presignFail[keyN(0)] = -1

	b, _ := testBrowser(t, store)
	b.mu.Lock()
	b.setEntries([]*Image{{Path: keyN(0)}})
	b.mu.Unlock()

	require.Error(t, b.ResolveURL(context.Background(), keyN(0)))
	require.True(t, b.Snapshot()[0].Error)

	// Backend recovers; a manual retry must succeed from a clean slate.
	store.mu.Lock()
	store.presignFail[keyN(0)] = 0
	store.mu.Unlock()

	require.NoError(t, b.ResolveURL(context.Background(), keyN(0)))
	img := b.Snapshot()[0]
	require.True(t, img.Loaded)
	require.False(t, img.Error)
	require.NotEmpty(t, img.URL)
}

func TestResolveUnknownPathIsNoOp(t *testing.T) {
	b, _ := testBrowser(t, newFakeStore())
	err := b.ResolveURL(context.Background(), "gallery/library/ghost.jpg")
	require.ErrorIs(t, err, ErrUnknownPath)
	require.Equal(t, 0, b.Count())
}

func uploadFiles(names ...string) []File {
	files := make([]File, 0, len(names))
	for _, name := range names {
		files = append(files, File{
			Name:        name,
			Size:        4,
			ContentType: "image/jpeg",
			Reader:      bytes.NewReader([]byte("data")),
		})
	}
	return files
}

func primeWithN(t *testing.T, b *Browser, n int) {
	t.Helper()
	require.NoError(t, b.ListPage(context.Background(), false))
	require.Equal(t, n, b.Count())
}

func TestUploadRejectsBatchOverCap(t *testing.T) {
	store := storeWithN(28)
	b, _ := testBrowser(t, store, func(c *Config) {
		c.PageSize = 28
		c.ImageLimit = 30
	})
	primeWithN(t, b, 28)

	_, err := b.Upload(context.Background(), uploadFiles("a.jpg", "b.jpg", "c.jpg"))
	require.ErrorIs(t, err, ErrLimitExceeded)
	require.Equal(t, 28, b.Count())
}

func TestUploadAtCapBoundarySucceeds(t *testing.T) {
	store := storeWithN(28)
	b, _ := testBrowser(t, store, func(c *Config) {
		c.PageSize = 28
		c.ImageLimit = 30
	})
	primeWithN(t, b, 28)

	result, err := b.Upload(context.Background(), uploadFiles("a.jpg", "b.jpg"))
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	require.Equal(t, 30, b.Count())

	for _, img := range b.Snapshot()[:2] {
		require.True(t, img.Loaded)
		require.False(t, img.IsUploading)
		require.False(t, img.Error)
	}
}

func TestUploadFailureIsIsolated(t *testing.T) {
	store := newFakeStore()
	store.putErr["second"] = errors.New("write refused")

	b, _ := testBrowser(t, store)

	result, err := b.Upload(context.Background(), uploadFiles("first.jpg", "second.jpg", "third.jpg"))
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)
	require.True(t, result.Outcomes[0].OK)
	require.False(t, result.Outcomes[1].OK)
	require.True(t, result.Outcomes[2].OK)

	snapshot := b.Snapshot()
	require.Len(t, snapshot, 3)
	for _, img := range snapshot {
		require.False(t, img.IsUploading)
		if strings.Contains(img.Path, "second") {
			require.True(t, img.Error)
			require.False(t, img.Loaded)
		} else {
			require.True(t, img.Loaded)
			require.False(t, img.Error)
		}
	}
}

func TestUploadSkipsDuplicateNames(t *testing.T) {
	store := newFakeStore("gallery/library/1700000000000_tower.jpg")
	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 5 })
	primeWithN(t, b, 1)

	result, err := b.Upload(context.Background(), uploadFiles("tower.jpg", "annex.jpg"))
	require.NoError(t, err)
	require.Equal(t, []string{"tower.jpg"}, result.Skipped)
	require.Len(t, result.Outcomes, 1)
	require.Equal(t, 2, b.Count())
}

func TestUploadPlaceholderPathShape(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	store := newFakeStore()
	b, _ := testBrowser(t, store, func(c *Config) {
		c.Now = func() time.Time { return fixed }
	})

	result, err := b.Upload(context.Background(), uploadFiles("my photo (1).png"))
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 1)

	path := result.Outcomes[0].Path
	require.Equal(t, "gallery/library/1700000000000_my_photo__1_.png", path)

	filename := path[strings.LastIndex(path, "/")+1:]
	for _, r := range filename {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_'
		require.True(t, ok, "unexpected character %q in %s", r, filename)
	}
}

func TestDeleteRemovesExactlyOneEntry(t *testing.T) {
	store := storeWithN(5)
	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 5 })
	primeWithN(t, b, 5)

	require.NoError(t, b.Delete(context.Background(), keyN(2)))
	require.Equal(t, 4, b.Count())
	require.NotContains(t, paths(b.Snapshot()), keyN(2))
}

func TestFailedDeleteLeavesListUnchanged(t *testing.T) {
	store := storeWithN(5)
	store.removeErr[keyN(2)] = errors.New("permission denied")

	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 5 })
	primeWithN(t, b, 5)

	require.Error(t, b.Delete(context.Background(), keyN(2)))
	require.Equal(t, 5, b.Count())
	require.Contains(t, paths(b.Snapshot()), keyN(2))
}

func TestStaleListingResponseIsDiscarded(t *testing.T) {
	store := newFakeStore()
	store.gate = make(chan struct{})
	store.blockCall = 1
	store.pages = [][]string{
		{keyN(0), keyN(1)}, // stale response, parked on the gate
		{keyN(8), keyN(9)}, // fresh reload
	}

	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 2 })

	staleDone := make(chan error, 1)
	go func() {
		staleDone <- b.ListPage(context.Background(), false)
	}()

	// Wait until the first request is parked, then run a fresh reload past it.
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.listCalls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, b.ListPage(context.Background(), false))
	require.Equal(t, []string{keyN(8), keyN(9)}, paths(b.Snapshot()))

	close(store.gate)
	require.NoError(t, <-staleDone)

	// The parked response must not clobber the newer list.
	require.Equal(t, []string{keyN(8), keyN(9)}, paths(b.Snapshot()))
}

func TestOutOfOrderCompletionsConverge(t *testing.T) {
	store := storeWithN(8)
	b, _ := testBrowser(t, store, func(c *Config) { c.PageSize = 8 })

	require.NoError(t, b.ListPage(context.Background(), false))

	var wg sync.WaitGroup
	for i := 7; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.ResolveURL(context.Background(), keyN(i))
		}(i)
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		for _, img := range b.Snapshot() {
			if !img.Loaded || img.Error {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)

	// order is untouched by resolution
	require.Equal(t, 8, b.Count())
	for i, img := range b.Snapshot() {
		require.Equal(t, keyN(i), img.Path)
	}
}

func TestCompletionForRemovedImageIsDropped(t *testing.T) {
	store := storeWithN(2)
	b, _ := testBrowser(t, store)
	primeWithN(t, b, 2)

	require.NoError(t, b.Delete(context.Background(), keyN(1)))

	// A resolution that raced the delete must become a no-op.
	err := b.ResolveURL(context.Background(), keyN(1))
	require.ErrorIs(t, err, ErrUnknownPath)
	require.Equal(t, []string{keyN(0)}, paths(b.Snapshot()))
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"my photo (1).png": "my_photo__1_.png",
		"plain.jpg":        "plain.jpg",
		"weird/..\\name":   "weird_.._name",
		"é.png":            "_.png",
	}
	for in, want := range cases {
		require.Equal(t, want, SanitizeFilename(in))
	}
}
