// Package dummy provides an offline remote.Store for tests and dry
// environments. State lives in memory, or in a bbolt file when a path is
// configured so repeated runs observe each other's writes.
package dummy

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/remote"
)

// Bucket names
var (
	bucketObjects = []byte("objects")
	bucketRecycle = []byte("recycle")
)

// object is the stored metadata of one path. Content bytes are not kept.
type object struct {
	Size      int64     `json:"size"`
	Signature string    `json:"md5"`
	Modified  time.Time `json:"modified"`
}

// Calls counts store invocations by operation.
type Calls struct {
	List   int64
	Put    int64
	Delete int64
}

// Total returns the sum of all calls.
func (c Calls) Total() int64 {
	return c.List + c.Put + c.Delete
}

// Options configures the dummy store.
type Options struct {
	Path    string        // bbolt file; empty means memory-only
	Delay   time.Duration // simulated latency per call
	Missing bool          // report every root as not found
}

// Option is a function that configures dummy store Options.
type Option func(*Options)

// WithPath persists the store in a bbolt file at path.
func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

// WithDelay adds a simulated latency to every call.
func WithDelay(d time.Duration) Option {
	return func(o *Options) {
		o.Delay = d
	}
}

// WithMissingRoot makes List report the root as not found.
func WithMissingRoot() Option {
	return func(o *Options) {
		o.Missing = true
	}
}

// Store implements remote.Store without any network access.
type Store struct {
	options *Options
	db      *bolt.DB

	mu      sync.RWMutex
	objects map[string]object
	recycle map[string]object
	faults  map[string]error

	lists   atomic.Int64
	puts    atomic.Int64
	deletes atomic.Int64
}

var _ remote.Store = (*Store)(nil)

// New opens a dummy store.
func New(opts ...Option) (*Store, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	s := &Store{
		options: options,
		objects: make(map[string]object),
		recycle: make(map[string]object),
		faults:  make(map[string]error),
	}
	if options.Path == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(options.Path), constants.DirPermissions); err != nil {
		return nil, errors.NewConfigError("dummy store", "cannot create state directory", err)
	}
	db, err := bolt.Open(options.Path, constants.SecureFilePermissions, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.NewConfigError("dummy store", "failed to open bolt db", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketObjects, bucketRecycle} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.NewConfigError("dummy store", "failed to create buckets", err)
	}
	s.db = db
	return s, nil
}

// Close releases the bbolt file, if any.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Calls returns the number of calls made so far.
func (s *Store) Calls() Calls {
	return Calls{
		List:   s.lists.Load(),
		Put:    s.puts.Load(),
		Delete: s.deletes.Load(),
	}
}

// FailOn makes every Put or Delete of path return err.
func (s *Store) FailOn(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[path] = err
}

// Seed stores placeholder objects at paths without counting calls.
func (s *Store) Seed(paths ...string) error {
	for _, p := range paths {
		if err := s.write(bucketObjects, p, newObject([]byte(p))); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether path exists.
func (s *Store) Has(path string) bool {
	_, ok, _ := s.read(bucketObjects, path)
	return ok
}

// Recycled returns the paths moved to the recycle bin, sorted.
func (s *Store) Recycled() []string {
	paths, _ := s.keys(bucketRecycle)
	return paths
}

// List implements remote.Store. The root always exists unless the store
// was opened WithMissingRoot.
func (s *Store) List(ctx context.Context, root string) ([]remote.Entry, error) {
	s.lists.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	if s.options.Missing {
		return nil, errors.NewAPIError("dummy", 404, "root "+root+" not found")
	}

	prefix := strings.TrimSuffix(root, "/") + "/"
	var entries []remote.Entry
	err := s.each(bucketObjects, func(path string, o object) {
		if strings.HasPrefix(path, prefix) {
			entries = append(entries, remote.Entry{
				Path:      path,
				Exists:    true,
				Signature: o.Signature,
				Size:      o.Size,
				Modified:  o.Modified,
			})
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Put implements remote.Store.
func (s *Store) Put(ctx context.Context, path string, data []byte, overwrite bool) error {
	s.puts.Add(1)
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.fault(path); err != nil {
		return err
	}
	if !overwrite {
		if _, ok, err := s.read(bucketObjects, path); err != nil {
			return err
		} else if ok {
			return errors.NewAPIError("dummy", 409, path+" already exists")
		}
	}
	return s.write(bucketObjects, path, newObject(data))
}

// Delete implements remote.Store. Deleting a missing path succeeds.
func (s *Store) Delete(ctx context.Context, path string, recycle bool) error {
	s.deletes.Add(1)
	if err := s.wait(ctx); err != nil {
		return err
	}
	if err := s.fault(path); err != nil {
		return err
	}
	o, ok, err := s.read(bucketObjects, path)
	if err != nil || !ok {
		return err
	}
	if recycle {
		if err := s.write(bucketRecycle, path, o); err != nil {
			return err
		}
	}
	return s.remove(bucketObjects, path)
}

func newObject(data []byte) object {
	sum := md5.Sum(data)
	return object{
		Size:      int64(len(data)),
		Signature: hex.EncodeToString(sum[:]),
		Modified:  time.Now().UTC(),
	}
}

func (s *Store) wait(ctx context.Context) error {
	if s.options.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.options.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Store) fault(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[path]
}

// === Storage helpers ===

func (s *Store) memory(bucket []byte) map[string]object {
	if string(bucket) == string(bucketRecycle) {
		return s.recycle
	}
	return s.objects
}

func (s *Store) read(bucket []byte, path string) (object, bool, error) {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		o, ok := s.memory(bucket)[path]
		return o, ok, nil
	}

	var (
		o  object
		ok bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(path))
		if v == nil {
			return nil
		}
		ok = true
		return json.Unmarshal(v, &o)
	})
	return o, ok, err
}

func (s *Store) write(bucket []byte, path string, o object) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.memory(bucket)[path] = o
		return nil
	}

	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(path), data)
	})
}

func (s *Store) remove(bucket []byte, path string) error {
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.memory(bucket), path)
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(path))
	})
}

func (s *Store) each(bucket []byte, fn func(path string, o object)) error {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for p, o := range s.memory(bucket) {
			fn(p, o)
		}
		return nil
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			var o object
			if err := json.Unmarshal(v, &o); err != nil {
				return err
			}
			fn(string(k), o)
			return nil
		})
	})
}

func (s *Store) keys(bucket []byte) ([]string, error) {
	var paths []string
	err := s.each(bucket, func(path string, _ object) {
		paths = append(paths, path)
	})
	sort.Strings(paths)
	return paths, err
}
