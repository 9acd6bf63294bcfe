package subscription

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuzable/podkey/pkg/fetch"
	"github.com/fuzable/podkey/pkg/fs"
	"github.com/fuzable/podkey/pkg/group"
	"github.com/fuzable/podkey/pkg/hook"
	"github.com/fuzable/podkey/pkg/model"
	"github.com/fuzable/podkey/pkg/notify"
)

const (
	root = "/podcasts"
	dest = "/media/usb"
)

type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{bodies: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[url]++
	body, ok := f.bodies[url]
	if !ok {
		return nil, &fetch.StatusError{URL: url, StatusCode: http.StatusNotFound}
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// serve registers a feed with items listed newest first; every item gets an enclosure.
func (f *fakeFetcher) serve(feedURL string, titles ...string) {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>`)
	for _, title := range titles {
		url := enclosure(feedURL, title)
		fmt.Fprintf(&sb, `<item><title>%s</title><enclosure url="%s" type="audio/mpeg"/></item>`, title, url)
		f.bodies[url] = "audio:" + title
	}
	sb.WriteString(`</channel></rss>`)
	f.bodies[feedURL] = sb.String()
}

func enclosure(feedURL, title string) string {
	return strings.TrimSuffix(feedURL, ".xml") + "/" + strings.ToLower(title) + ".mp3"
}

type readyVolumes struct{}

func (readyVolumes) Inspect(string) (*group.Volume, error) {
	return &group.Volume{Free: 1 << 30, Writable: true, Removable: true}, nil
}

type fixture struct {
	mem     afero.Fs
	fetcher *fakeFetcher
	rec     *notify.Recorder
}

func setup(t *testing.T) *fixture {
	return &fixture{
		mem:     afero.NewMemMapFs(),
		fetcher: newFakeFetcher(),
		rec:     &notify.Recorder{},
	}
}

func (f *fixture) orchestrator(t *testing.T, podcasts []*model.Podcast, groups []*model.Group, opts Options) *Orchestrator {
	storage, err := fs.NewLocal(f.mem)
	require.NoError(t, err)

	opts.DownloadDir = root
	if opts.Volumes == nil {
		opts.Volumes = readyVolumes{}
	}

	return New(podcasts, groups, opts, f.fetcher, storage, f.rec)
}

func (f *fixture) write(t *testing.T, path, content string, mod time.Time) {
	require.NoError(t, afero.WriteFile(f.mem, path, []byte(content), 0644))
	require.NoError(t, f.mem.Chtimes(path, mod, mod))
}

func (f *fixture) files(t *testing.T, dir string) []string {
	infos, err := afero.ReadDir(f.mem, dir)
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		if !info.IsDir() {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestSynchronize(t *testing.T) {
	f := setup(t)
	f.fetcher.serve("https://example.com/tech.xml", "T1", "T2", "T3")

	now := time.Now()
	f.write(t, root+"/Tech/005_T2.mp3", "old T2", now)
	f.write(t, root+"/Tech/003_T3.mp3", "old T3", now)

	podcasts := []*model.Podcast{
		{Name: "Tech", URL: "https://example.com/tech.xml", RetentionCount: 2, Order: model.OrderRecent},
		{Name: "Broken", URL: "https://example.com/broken.xml", RetentionCount: 2},
	}
	o := f.orchestrator(t, podcasts, nil, Options{})

	summary, err := o.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Units)
	assert.Equal(t, 1, summary.UnitFailures)
	assert.Equal(t, 1, summary.Episodes[model.OutcomeDownloaded])
	assert.Equal(t, 1, summary.Episodes[model.OutcomeAlreadyPresent])
	assert.Equal(t, 1, summary.Episodes[model.OutcomeDeleted])
	assert.True(t, summary.Failed())

	assert.Equal(t, []string{"001_T1.mp3", "002_T2.mp3"}, f.files(t, root+"/Tech"))
	data, err := afero.ReadFile(f.mem, root+"/Tech/002_T2.mp3")
	require.NoError(t, err)
	assert.Equal(t, "old T2", string(data))

	assert.Equal(t, 0, f.fetcher.count(enclosure("https://example.com/tech.xml", "T2")))
	assert.Equal(t, 0, f.fetcher.count(enclosure("https://example.com/tech.xml", "T3")))

	failed := f.rec.Of(notify.PodcastFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "Broken", failed[0].Name)

	var feedErr *model.FeedError
	assert.True(t, errors.As(failed[0].Err, &feedErr))

	kinds := f.rec.Kinds()
	assert.Equal(t, notify.SubscriptionStarted, kinds[0])
	assert.Equal(t, notify.SubscriptionCompleted, kinds[len(kinds)-1])
}

func TestSynchronize_Idempotent(t *testing.T) {
	f := setup(t)
	f.fetcher.serve("https://example.com/tech.xml", "T1", "T2")

	podcasts := []*model.Podcast{{Name: "Tech", URL: "https://example.com/tech.xml", RetentionCount: 2}}
	o := f.orchestrator(t, podcasts, nil, Options{})

	_, err := o.Synchronize(context.Background())
	require.NoError(t, err)

	summary, err := o.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Episodes[model.OutcomeAlreadyPresent])
	assert.Zero(t, summary.Episodes[model.OutcomeDownloaded])
	assert.False(t, summary.Failed())
	assert.Equal(t, 1, f.fetcher.count(enclosure("https://example.com/tech.xml", "T1")))
	assert.Equal(t, 2, f.fetcher.count("https://example.com/tech.xml"))
}

func TestSynchronize_DuplicateTitles(t *testing.T) {
	f := setup(t)
	f.fetcher.bodies["https://example.com/tech.xml"] = `<?xml version="1.0"?><rss version="2.0"><channel><title>x</title>` +
		`<item><title>Bonus</title><enclosure url="https://x/1.mp3" type="audio/mpeg"/></item>` +
		`<item><title>Bonus</title><enclosure url="https://x/2.mp3" type="audio/mpeg"/></item>` +
		`</channel></rss>`
	f.fetcher.bodies["https://x/1.mp3"] = "episode 1"
	f.fetcher.bodies["https://x/2.mp3"] = "episode 2"

	podcasts := []*model.Podcast{{Name: "Tech", URL: "https://example.com/tech.xml", RetentionCount: 2}}
	o := f.orchestrator(t, podcasts, nil, Options{})

	for run := 0; run < 2; run++ {
		_, err := o.Synchronize(context.Background())
		require.NoError(t, err)

		assert.Equal(t, []string{"001_Bonus.mp3", "002_Bonus.mp3"}, f.files(t, root+"/Tech"))
		for name, want := range map[string]string{"001_Bonus.mp3": "episode 1", "002_Bonus.mp3": "episode 2"} {
			data, err := afero.ReadFile(f.mem, root+"/Tech/"+name)
			require.NoError(t, err)
			assert.Equal(t, want, string(data))
		}
	}

	assert.Equal(t, 1, f.fetcher.count("https://x/1.mp3"))
	assert.Equal(t, 1, f.fetcher.count("https://x/2.mp3"))
	assert.Empty(t, f.rec.Of(notify.EpisodeRenamed))
}

func TestSynchronize_MissingEnclosureFailsEpisodeOnly(t *testing.T) {
	f := setup(t)
	f.fetcher.serve("https://example.com/tech.xml", "T1")
	f.fetcher.bodies["https://example.com/tech.xml"] = strings.Replace(
		f.fetcher.bodies["https://example.com/tech.xml"],
		"<item>", "<item><title>Silent</title></item><item>", 1)

	podcasts := []*model.Podcast{{Name: "Tech", URL: "https://example.com/tech.xml", RetentionCount: 2}}
	o := f.orchestrator(t, podcasts, nil, Options{})

	summary, err := o.Synchronize(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.UnitFailures)
	assert.Equal(t, 1, summary.Episodes[model.OutcomeFailed])
	assert.Equal(t, 1, summary.Episodes[model.OutcomeDownloaded])
}

func TestSynchronize_Canceled(t *testing.T) {
	f := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := f.orchestrator(t, []*model.Podcast{{Name: "Tech", URL: "https://example.com/tech.xml"}}, nil, Options{})
	_, err := o.Synchronize(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, f.fetcher.count("https://example.com/tech.xml"))
}

func TestSynchronize_Hooks(t *testing.T) {
	f := setup(t)
	f.fetcher.serve("https://example.com/tech.xml", "T1")

	out := filepath.Join(t.TempDir(), "hook.txt")
	opts := Options{
		SyncHooks: []*hook.ExecHook{
			{Command: []string{"false"}},
			{Command: []string{"sh", "-c", "echo $PODKEY_PHASE $PODKEY_COUNT > " + out}},
		},
	}

	o := f.orchestrator(t, []*model.Podcast{{Name: "Tech", URL: "https://example.com/tech.xml"}}, nil, opts)
	summary, err := o.Synchronize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HookFailures)
	assert.False(t, summary.Failed())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "sync 1\n", string(data))
}

func TestSynchronize_RunLock(t *testing.T) {
	f := setup(t)
	lockPath := filepath.Join(t.TempDir(), model.LockFileName)

	held := flock.New(lockPath)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	o := f.orchestrator(t, nil, nil, Options{LockPath: lockPath})
	_, err = o.Synchronize(context.Background())
	assert.True(t, errors.Is(err, model.ErrRunInProgress))

	require.NoError(t, held.Unlock())
	_, err = o.Synchronize(context.Background())
	assert.NoError(t, err)
}

func copyFixture(t *testing.T) (*fixture, []*model.Podcast, []*model.Group) {
	f := setup(t)
	require.NoError(t, f.mem.MkdirAll(dest, 0755))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.write(t, root+"/Tech/002_old.mp3", "12345", base)
	f.write(t, root+"/Tech/001_new.mp3", "12345", base.Add(time.Hour))
	f.write(t, root+"/Story/001_a.mp3", "12345", base)
	f.write(t, root+"/Story/002_b.mp3", "12345", base.Add(time.Hour))
	f.write(t, root+"/Story/003_c.mp3", "12345", base.Add(2*time.Hour))

	podcasts := []*model.Podcast{
		{Name: "Tech", Order: model.OrderRecent},
		{Name: "Story", Order: model.OrderChronological},
	}
	groups := []*model.Group{{Name: "car", Podcasts: []string{"Story"}}}
	return f, podcasts, groups
}

func TestCopy_All(t *testing.T) {
	f, podcasts, groups := copyFixture(t)
	f.write(t, dest+"/Tech/09 stale.mp3", "x", time.Now())

	o := f.orchestrator(t, podcasts, groups, Options{})
	summary, err := o.Copy(context.Background(), "", dest)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Units)
	assert.Equal(t, 5, summary.Files[model.CopyActionCopied])
	assert.False(t, summary.Failed())

	assert.Equal(t, []string{"01 new.mp3", "02 old.mp3"}, f.files(t, dest+"/Tech"))
	assert.Equal(t, []string{"01 a.mp3", "02 b.mp3", "03 c.mp3"}, f.files(t, dest+"/Story"))

	assert.Len(t, f.rec.Of(notify.EpisodePruned), 1)
	assert.Len(t, f.rec.Of(notify.PodcastCopied), 2)
}

func TestCopy_Group(t *testing.T) {
	f, podcasts, groups := copyFixture(t)

	o := f.orchestrator(t, podcasts, groups, Options{})
	summary, err := o.Copy(context.Background(), "car", dest)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Units)
	exists, _ := afero.DirExists(f.mem, dest+"/Tech")
	assert.False(t, exists)
}

func TestCopy_MissingGroupFolderFailsUnitOnly(t *testing.T) {
	f, podcasts, _ := copyFixture(t)
	groups := []*model.Group{{Name: "car", Podcasts: []string{"Gone", "Tech"}}}

	o := f.orchestrator(t, podcasts, groups, Options{})
	summary, err := o.Copy(context.Background(), "car", dest)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.UnitFailures)
	assert.Equal(t, 2, summary.Files[model.CopyActionCopied])
	assert.Len(t, f.rec.Of(notify.PodcastCopyFailed), 1)
}

func TestCopy_Preconditions(t *testing.T) {
	tests := []struct {
		name  string
		group string
		dest  string
		opts  Options
	}{
		{name: "size ceiling", dest: dest, opts: Options{MaxSize: 24}},
		{name: "unknown group", group: "gym", dest: dest},
		{name: "missing destination", dest: "/media/missing"},
	}

	for _, tst := range tests {
		t.Run(tst.name, func(t *testing.T) {
			f, podcasts, groups := copyFixture(t)

			o := f.orchestrator(t, podcasts, groups, tst.opts)
			_, err := o.Copy(context.Background(), tst.group, tst.dest)

			var pre *model.PreconditionError
			require.True(t, errors.As(err, &pre), "got %v", err)

			assert.Empty(t, f.rec.Of(notify.CopyStarted))
			assert.Empty(t, f.files(t, dest))
			exists, _ := afero.DirExists(f.mem, dest+"/Tech")
			assert.False(t, exists)
		})
	}
}

func TestCopy_SizeCeilingBoundary(t *testing.T) {
	f, podcasts, groups := copyFixture(t)

	o := f.orchestrator(t, podcasts, groups, Options{MaxSize: 25})
	_, err := o.Copy(context.Background(), "", dest)
	assert.NoError(t, err)
}
