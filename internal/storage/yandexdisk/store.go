// Package yandexdisk implements remote.Store over the Yandex.Disk REST API.
package yandexdisk

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/dogsync/internal/transport"
	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
	"github.com/agentstation/dogsync/pkg/remote"
)

// API is the name used in errors and logs.
const API = "yandex.disk"

// diskPrefix is how the API spells absolute paths on the user's disk.
const diskPrefix = "disk:/"

const (
	typeDir  = "dir"
	typeFile = "file"
)

// resource is the subset of the Resource object the store reads.
type resource struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Type     string    `json:"type"`
	MD5      string    `json:"md5"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Embedded *struct {
		Items  []resource `json:"items"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	} `json:"_embedded"`
}

// link is the Link object returned by upload and async operations.
type link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// Options configures a Store.
type Options struct {
	APIRoot   string
	Token     string
	RateLimit int
	PageSize  int
}

// Option is a function that configures store Options.
type Option func(*Options)

// WithAPIRoot overrides the API root URL.
func WithAPIRoot(root string) Option {
	return func(o *Options) {
		if root != "" {
			o.APIRoot = strings.TrimRight(root, "/")
		}
	}
}

// WithToken sets the OAuth token.
func WithToken(token string) Option {
	return func(o *Options) {
		o.Token = token
	}
}

// WithRateLimit sets the requests-per-second ceiling. Zero disables it.
func WithRateLimit(perSecond int) Option {
	return func(o *Options) {
		o.RateLimit = perSecond
	}
}

// WithPageSize sets the listing page size.
func WithPageSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.PageSize = n
		}
	}
}

// Store is a remote.Store backed by Yandex.Disk.
type Store struct {
	options *Options
	api     *transport.Client
	uploads *transport.Client

	// dirs caches directories known to exist during this process.
	dirs sync.Map
}

var _ remote.Store = (*Store)(nil)

// New creates a Yandex.Disk store.
func New(opts ...Option) *Store {
	options := &Options{
		APIRoot:   constants.YandexDiskAPIRoot,
		RateLimit: constants.YandexDiskRateLimit,
		PageSize:  constants.ListPageSize,
	}
	for _, opt := range opts {
		opt(options)
	}
	return &Store{
		options: options,
		api: transport.New(API,
			transport.WithAuth(&transport.OAuthAuth{Token: options.Token}),
			transport.WithRateLimit(options.RateLimit)),
		// Upload hrefs point at storage hosts that need no credentials.
		uploads: transport.New(API, transport.WithTimeout(constants.ActionTimeout)),
	}
}

func (s *Store) endpoint(resourcePath string, params url.Values) string {
	u := s.options.APIRoot + "/disk/resources"
	if resourcePath != "" {
		u += "/" + resourcePath
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// List implements remote.Store. It walks root recursively and returns
// only files. A missing root wraps errors.ErrNotFound.
func (s *Store) List(ctx context.Context, root string) ([]remote.Entry, error) {
	var entries []remote.Entry
	queue := []string{cleanPath(root)}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		for offset := 0; ; {
			page, err := s.listPage(ctx, dir, offset)
			if err != nil {
				return nil, err
			}
			if page.Type == typeFile {
				return nil, errors.NewAPIError(API, http.StatusConflict, dir+" is not a directory")
			}
			if page.Embedded == nil {
				break
			}
			for _, item := range page.Embedded.Items {
				p := logicalPath(item.Path)
				switch item.Type {
				case typeDir:
					s.dirs.Store(p, true)
					queue = append(queue, p)
				case typeFile:
					entries = append(entries, remote.Entry{
						Path:      p,
						Exists:    true,
						Signature: item.MD5,
						Size:      item.Size,
						Modified:  item.Modified,
					})
				}
			}
			offset += len(page.Embedded.Items)
			if len(page.Embedded.Items) == 0 || offset >= page.Embedded.Total {
				break
			}
		}
	}

	logging.FromContext(ctx).Debug().
		Str("root", root).
		Int("files", len(entries)).
		Msg("Listed remote root")
	return entries, nil
}

func (s *Store) listPage(ctx context.Context, dir string, offset int) (*resource, error) {
	params := url.Values{}
	params.Set("path", diskPath(dir))
	params.Set("limit", strconv.Itoa(s.options.PageSize))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("fields", "type,path,_embedded.items.name,_embedded.items.path,_embedded.items.type,"+
		"_embedded.items.md5,_embedded.items.size,_embedded.items.modified,_embedded.total")

	var page resource
	if err := s.api.GetJSON(ctx, s.endpoint("", params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Put implements remote.Store. Parent directories are created first.
func (s *Store) Put(ctx context.Context, p string, data []byte, overwrite bool) error {
	p = cleanPath(p)
	if err := s.ensureDir(ctx, path.Dir(p)); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("path", diskPath(p))
	params.Set("overwrite", strconv.FormatBool(overwrite))

	var target link
	if err := s.api.GetJSON(ctx, s.endpoint("upload", params), &target); err != nil {
		return err
	}
	method := target.Method
	if method == "" {
		method = http.MethodPut
	}

	resp, err := s.uploads.Request(ctx, method, target.Href, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return transport.DecodeResponse(resp, API, nil)
}

// Delete implements remote.Store. A missing path is not an error.
func (s *Store) Delete(ctx context.Context, p string, recycle bool) error {
	params := url.Values{}
	params.Set("path", diskPath(cleanPath(p)))
	params.Set("permanently", strconv.FormatBool(!recycle))

	resp, err := s.api.Request(ctx, http.MethodDelete, s.endpoint("", params), nil)
	if err != nil {
		return err
	}
	if err := transport.DecodeResponse(resp, API, nil); err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

// Mkdir creates a single directory. An existing directory is not an error.
func (s *Store) Mkdir(ctx context.Context, dir string) error {
	params := url.Values{}
	params.Set("path", diskPath(cleanPath(dir)))

	resp, err := s.api.Request(ctx, http.MethodPut, s.endpoint("", params), nil)
	if err != nil {
		return err
	}
	if err := transport.DecodeResponse(resp, API, nil); err != nil && !errors.Is(err, errors.ErrAlreadyExists) {
		return err
	}
	return nil
}

// ensureDir creates dir and its ancestors, top down.
func (s *Store) ensureDir(ctx context.Context, dir string) error {
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}
	if _, ok := s.dirs.Load(dir); ok {
		return nil
	}
	if err := s.ensureDir(ctx, path.Dir(dir)); err != nil {
		return err
	}
	if err := s.Mkdir(ctx, dir); err != nil {
		return err
	}
	s.dirs.Store(dir, true)
	return nil
}

func cleanPath(p string) string {
	return strings.Trim(path.Clean("/"+p), "/")
}

func diskPath(p string) string {
	return diskPrefix + p
}

// logicalPath converts "disk:/a/b" to "a/b".
func logicalPath(p string) string {
	p = strings.TrimPrefix(p, diskPrefix)
	return strings.TrimPrefix(p, "/")
}
