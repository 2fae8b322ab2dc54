package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/modgrid/modgrid-cli/internal/manifest"
	"github.com/modgrid/modgrid-cli/internal/report"
	"github.com/modgrid/modgrid-cli/internal/timestamp"
)

// progressEvery is how many assets are handled between progress lines.
const progressEvery = 100

// Options configures a Synchronizer.
type Options struct {
	BaseURL    string
	Format     string // asset file extension, e.g. "webp"
	CacheDir   string
	Timeout    time.Duration // per-request
	Delay      time.Duration // minimum spacing between fetches
	ExpiryDays int           // staleness window
	Workers    int           // 0 or 1 keeps sequential behavior
	UserAgent  string
}

// Synchronizer keeps the local screenshot cache in step with the remote
// asset host while transferring as little as possible.
type Synchronizer struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
	build   timestamp.BuildTimes
	rep     report.Reporter

	now func() time.Time

	fetched atomic.Int64
	skipped atomic.Int64
}

// NewSynchronizer returns a Synchronizer for the given cache policy and
// per-plugin build times.
func NewSynchronizer(opts Options, build timestamp.BuildTimes, rep report.Reporter) *Synchronizer {
	if opts.UserAgent == "" {
		opts.UserAgent = "modgrid"
	}
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Synchronizer{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		build:   build,
		rep:     rep,
		now:     time.Now,
	}
}

// SyncAll ensures a fresh cached image exists for every record. Per-asset
// failures are reported and swallowed; only context cancellation aborts the
// run. With Workers > 1, assets are synchronized concurrently: each asset
// path is independent and the limiter spaces fetches globally.
func (s *Synchronizer) SyncAll(ctx context.Context, records []manifest.ModuleRecord) error {
	s.rep.Start("synchronizing screenshots")

	if err := os.MkdirAll(s.opts.CacheDir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache directory %s: %w", s.opts.CacheDir, err)
	}
	s.fetched.Store(0)
	s.skipped.Store(0)

	var done atomic.Int64
	handle := func(ctx context.Context, rec manifest.ModuleRecord) error {
		if err := s.syncOne(ctx, rec); err != nil {
			var nerr *NetworkError
			if errors.As(err, &nerr) {
				s.rep.Error(fmt.Sprintf("screenshot for %s/%s", rec.PluginSlug, rec.ModuleSlug), err)
				return nil
			}
			return err
		}
		if n := done.Add(1); n%progressEvery == 0 {
			s.rep.Progress(int(n), len(records), "synchronizing screenshots")
		}
		return nil
	}

	if s.opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for _, rec := range records {
			rec := rec
			g.Go(func() error { return handle(gctx, rec) })
		}
		if err := g.Wait(); err != nil {
			return err
		}
	} else {
		for _, rec := range records {
			if err := handle(ctx, rec); err != nil {
				return err
			}
		}
	}

	s.rep.Complete(fmt.Sprintf("screenshot sync: %d fetched, %d skipped", s.Fetched(), s.Skipped()))
	return nil
}

// syncOne applies the fetch/skip decision chain to a single record:
//
//  1. no local file           → fetch
//  2. plugin build too old    → skip (trust the cached copy)
//  3. remote size == local    → skip
//  4. otherwise               → fetch, replacing the local file
//
// A plugin with no recorded build time never takes the staleness skip; it
// falls through to the size probe so a changed remote copy is still picked
// up.
func (s *Synchronizer) syncOne(ctx context.Context, rec manifest.ModuleRecord) error {
	url := s.assetURL(rec)
	path := s.assetPath(rec)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create plugin cache dir: %w", err)
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return s.fetch(ctx, url, path)
	case err != nil:
		return fmt.Errorf("cannot stat cached asset %s: %w", path, err)
	}

	if age, known := s.daysSinceBuild(rec.PluginSlug); known && age > s.opts.ExpiryDays {
		// The plugin has not been rebuilt recently enough for its
		// screenshot to have changed; keep the cached copy unchecked.
		s.skipped.Add(1)
		return nil
	}

	remoteSize := s.remoteSize(ctx, url)
	if remoteSize != -1 && remoteSize == info.Size() {
		s.rep.Debug(fmt.Sprintf("skipping %s: sizes match (%d bytes)", path, info.Size()))
		s.skipped.Add(1)
		return nil
	}

	return s.fetch(ctx, url, path)
}

// daysSinceBuild returns whole days since the plugin's last recorded build.
// known is false when the plugin has no recorded build time.
func (s *Synchronizer) daysSinceBuild(pluginSlug string) (age int, known bool) {
	bt := s.build.For(pluginSlug)
	if bt == timestamp.UnknownBuildTime {
		return 0, false
	}
	return int(s.now().Sub(time.Unix(bt, 0)).Hours() / 24), true
}

// remoteSize probes the remote asset with a HEAD request and returns its
// reported size in bytes, or -1 when the probe fails or the host omits
// Content-Length. -1 never matches a local size, so it always results in a
// full fetch.
func (s *Synchronizer) remoteSize(ctx context.Context, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return -1
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.rep.Error(fmt.Sprintf("size probe failed for %s", url), err)
		return -1
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.rep.Error(fmt.Sprintf("size probe failed for %s: %s", url, resp.Status), nil)
		return -1
	}
	return resp.ContentLength
}

// fetch downloads url and replaces the file at path. A rate-limiter wait is
// charged after every successful download to bound request rate against the
// remote host.
func (s *Synchronizer) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &NetworkError{URL: url, Err: fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write cached asset %s: %w", path, err)
	}

	s.fetched.Add(1)
	s.rep.Debug(fmt.Sprintf("downloaded %s", path))

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return nil
}

// Fetched returns the number of assets downloaded in the last SyncAll.
func (s *Synchronizer) Fetched() int64 { return s.fetched.Load() }

// Skipped returns the number of assets skipped in the last SyncAll.
func (s *Synchronizer) Skipped() int64 { return s.skipped.Load() }

func (s *Synchronizer) assetURL(rec manifest.ModuleRecord) string {
	return fmt.Sprintf("%s/%s/%s.%s",
		strings.TrimRight(s.opts.BaseURL, "/"), rec.PluginSlug, rec.ModuleSlug, s.opts.Format)
}

func (s *Synchronizer) assetPath(rec manifest.ModuleRecord) string {
	return AssetPath(s.opts.CacheDir, s.opts.Format, rec)
}

// AssetPath returns the cache location for a record, shared with the index
// builder so both sides address assets identically.
func AssetPath(cacheDir, format string, rec manifest.ModuleRecord) string {
	return filepath.Join(cacheDir, rec.PluginSlug, rec.ModuleSlug+"."+format)
}
