// Package texcache resolves image URLs to GL textures. Each URL is loaded,
// decoded and uploaded once, then reused for every frame that references it.
//
// Images are fetched by scheme specific loaders. file (and bare paths),
// http and https are built in; other schemes such as generated images are
// added with Register. Decoding supports PNG, JPEG, GIF, BMP, TIFF and WebP.
package texcache

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/soypat/figure3d"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrUnsupportedScheme is returned for URLs whose scheme has no loader.
	ErrUnsupportedScheme = errors.New("texcache: unsupported URL scheme")
	// ErrClosed is returned by a cache after Close.
	ErrClosed = errors.New("texcache: cache closed")

	errNilURL = errors.New("texcache: nil URL")
)

// Uploader creates and deletes textures in the GL context the cache
// serves. It is only called from the goroutine calling Texture, Release
// and Close, which must be the GL thread.
type Uploader interface {
	UploadTexture(img image.Image) (figure3d.Texture, error)
	DeleteTexture(t figure3d.Texture)
}

// Loader fetches the image referenced by a URL.
type Loader interface {
	Load(ctx context.Context, u *url.URL) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, u *url.URL) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, u *url.URL) (image.Image, error) { return f(ctx, u) }

// Cache implements figure3d.TextureCache. Texture may be called
// concurrently with Preload; loads for the same URL are coalesced.
type Cache struct {
	up  Uploader
	log *slog.Logger

	timeout   time.Duration
	maxSize   int
	powerOf2  bool
	client    *http.Client
	maxFetch  int64
	retry     time.Duration
	loadersMu sync.RWMutex
	loaders   map[string]Loader

	// loads coalesces concurrent fetches of one URL.
	loads singleflight.Group

	mu       sync.Mutex
	closed   bool
	textures map[string]figure3d.Texture
	pending  map[string]image.Image
	failed   map[string]failure
}

// failure is a remembered load error.
type failure struct {
	err error
	at  time.Time
}

var _ figure3d.TextureCache = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds the time spent loading a single image.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// WithMaxSize downscales images whose width or height exceeds n pixels,
// keeping the aspect ratio. Zero disables the limit.
func WithMaxSize(n int) Option {
	return func(c *Cache) { c.maxSize = n }
}

// WithPowerOfTwo resamples images to power of two dimensions for GL
// implementations lacking non power of two texture support.
func WithPowerOfTwo(enable bool) Option {
	return func(c *Cache) { c.powerOf2 = enable }
}

// WithHTTPClient sets the client used by the http and https loaders.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.client = client }
}

// WithRetryAfter makes a failed load fail fast with the same error for d
// before it is attempted again. Zero, the default, retries on every call.
func WithRetryAfter(d time.Duration) Option {
	return func(c *Cache) { c.retry = d }
}

// WithMaxFetchSize limits the number of bytes read from a remote image.
func WithMaxFetchSize(n int64) Option {
	return func(c *Cache) { c.maxFetch = n }
}

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxFetch = 64 << 20
)

// New returns a cache uploading textures with up.
func New(up Uploader, opts ...Option) *Cache {
	c := &Cache{
		up:       up,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:  defaultTimeout,
		client:   http.DefaultClient,
		maxFetch: defaultMaxFetch,
		textures: make(map[string]figure3d.Texture),
		pending:  make(map[string]image.Image),
		failed:   make(map[string]failure),
	}
	for _, opt := range opts {
		opt(c)
	}
	file := LoaderFunc(c.loadFile)
	remote := LoaderFunc(c.loadHTTP)
	c.loaders = map[string]Loader{
		"":      file,
		"file":  file,
		"http":  remote,
		"https": remote,
	}
	return c
}

// Register sets the loader for URLs of the given scheme, replacing any
// previous loader for it. Schemes are case insensitive.
func (c *Cache) Register(scheme string, l Loader) {
	c.loadersMu.Lock()
	defer c.loadersMu.Unlock()
	c.loaders[strings.ToLower(scheme)] = l
}

func (c *Cache) loader(scheme string) (Loader, error) {
	c.loadersMu.RLock()
	defer c.loadersMu.RUnlock()
	l, ok := c.loaders[strings.ToLower(scheme)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}
	return l, nil
}

// Texture returns the texture for u, loading and uploading it on first use.
// A failed load is retried by a later call, once the WithRetryAfter
// delay has passed if one is set.
func (c *Cache) Texture(u *url.URL) (figure3d.Texture, error) {
	if u == nil {
		return figure3d.Texture{}, errNilURL
	}
	key := u.String()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return figure3d.Texture{}, ErrClosed
	}
	if tex, ok := c.textures[key]; ok {
		c.mu.Unlock()
		return tex, nil
	}
	if f, ok := c.failed[key]; ok && time.Since(f.at) < c.retry {
		c.mu.Unlock()
		return figure3d.Texture{}, f.err
	}
	img, ok := c.pending[key]
	c.mu.Unlock()

	if !ok {
		var err error
		img, err = c.fetch(context.Background(), key, u)
		if err != nil {
			c.log.Warn("texture load failed", slog.String("url", u.Redacted()), slog.String("err", err.Error()))
			if c.retry > 0 {
				c.mu.Lock()
				c.failed[key] = failure{err: err, at: time.Now()}
				c.mu.Unlock()
			}
			return figure3d.Texture{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return figure3d.Texture{}, ErrClosed
	}
	if tex, ok := c.textures[key]; ok {
		return tex, nil
	}
	tex, err := c.up.UploadTexture(img)
	if err != nil {
		return figure3d.Texture{}, fmt.Errorf("texcache: upload %s: %w", u.Redacted(), err)
	}
	delete(c.pending, key)
	delete(c.failed, key)
	c.textures[key] = tex
	c.log.Debug("texture uploaded", slog.String("url", u.Redacted()), slog.Int("width", tex.Width), slog.Int("height", tex.Height))
	return tex, nil
}

// Preload loads and decodes u without touching the GL context so that a
// following Texture call only uploads. It is safe to call from any goroutine.
// Cancelling ctx stops the wait but not a load other callers share.
func (c *Cache) Preload(ctx context.Context, u *url.URL) error {
	if u == nil {
		return errNilURL
	}
	key := u.String()
	c.mu.Lock()
	_, done := c.textures[key]
	_, loaded := c.pending[key]
	closed := c.closed
	c.mu.Unlock()
	switch {
	case closed:
		return ErrClosed
	case done || loaded:
		return nil
	}
	img, err := c.fetch(ctx, key, u)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.textures[key]; !done && !c.closed {
		c.pending[key] = img
		delete(c.failed, key)
	}
	return nil
}

// fetch loads and prepares the image for key, sharing the work with
// concurrent fetches of the same key. The shared load runs under the cache
// timeout alone; ctx only bounds how long this caller waits for it.
func (c *Cache) fetch(ctx context.Context, key string, u *url.URL) (image.Image, error) {
	ch := c.loads.DoChan(key, func() (any, error) {
		lctx, cancel := context.Background(), context.CancelFunc(func() {})
		if c.timeout > 0 {
			lctx, cancel = context.WithTimeout(lctx, c.timeout)
		}
		defer cancel()
		img, err := c.load(lctx, u)
		if err != nil {
			return nil, err
		}
		return img, nil
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(image.Image), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, u *url.URL) (image.Image, error) {
	l, err := c.loader(u.Scheme)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	img, err := l.Load(ctx, u)
	if err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("texcache: %s: empty image", u.Redacted())
	}
	img = fit(img, c.maxSize, c.powerOf2)
	c.log.Debug("image loaded", slog.String("url", u.Redacted()),
		slog.Int("width", img.Bounds().Dx()), slog.Int("height", img.Bounds().Dy()),
		slog.Duration("elapsed", time.Since(start)))
	return img, nil
}

// Len returns the number of resident textures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.textures)
}

// Release deletes every resident texture. The cache stays usable and
// reloads textures on demand.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

func (c *Cache) releaseLocked() {
	for key, tex := range c.textures {
		c.up.DeleteTexture(tex)
		delete(c.textures, key)
	}
	clear(c.pending)
	clear(c.failed)
}

// Close releases all textures. Later Texture and Preload calls fail
// with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
	c.closed = true
	return nil
}

func (c *Cache) loadFile(_ context.Context, u *url.URL) (image.Image, error) {
	path := u.Path
	if u.Opaque != "" {
		// file:relative/path.png
		path = u.Opaque
	}
	if path == "" {
		return nil, errors.New("texcache: empty file path")
	}
	fp, err := os.Open(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("texcache: decode %s: %w", path, err)
	}
	return img, nil
}

func (c *Cache) loadHTTP(ctx context.Context, u *url.URL) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("texcache: GET %s: %s", u.Redacted(), resp.Status)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, c.maxFetch))
	if err != nil {
		return nil, fmt.Errorf("texcache: decode %s: %w", u.Redacted(), err)
	}
	return img, nil
}
