// Package catalog enumerates the dog breed taxonomy and turns it into an
// ordered, deterministic set of upload candidates.
package catalog

import (
	"context"
	"fmt"
	"path"
	"sort"
)

// Breed is a top-level taxonomy entry with zero or more sub-breeds.
type Breed struct {
	Name      string   `json:"name" yaml:"name"`
	SubBreeds []string `json:"sub_breeds,omitempty" yaml:"sub_breeds,omitempty"`
}

// IsFlat reports whether the breed has no sub-breeds.
func (b Breed) IsFlat() bool {
	return len(b.SubBreeds) == 0
}

// Taxonomy is the ordered list of breeds, sorted by name.
type Taxonomy []Breed

// NewTaxonomy builds a Taxonomy from the breed → sub-breeds mapping returned
// by the image source. Breeds and sub-breeds are sorted so iteration order
// never depends on map order.
func NewTaxonomy(m map[string][]string) Taxonomy {
	t := make(Taxonomy, 0, len(m))
	for name, subs := range m {
		sorted := append([]string(nil), subs...)
		sort.Strings(sorted)
		t = append(t, Breed{Name: name, SubBreeds: sorted})
	}
	sort.Slice(t, func(i, j int) bool { return t[i].Name < t[j].Name })
	return t
}

// Filter keeps only the named breeds. An empty filter keeps everything.
func (t Taxonomy) Filter(names ...string) Taxonomy {
	if len(names) == 0 {
		return t
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	out := make(Taxonomy, 0, len(names))
	for _, b := range t {
		if keep[b.Name] {
			out = append(out, b)
		}
	}
	return out
}

// Candidate is a planned (remote path, source URL) pair. Immutable once planned.
type Candidate struct {
	Path      string `json:"path" yaml:"path"`
	SourceURL string `json:"source_url" yaml:"source_url"`
	Breed     string `json:"breed" yaml:"breed"`
	SubBreed  string `json:"sub_breed,omitempty" yaml:"sub_breed,omitempty"`
	Index     int    `json:"index" yaml:"index"`
}

// PathFor returns the logical remote path of the n-th (1-based) image of a
// breed or sub-breed.
func PathFor(root, breed, subBreed string, n int) string {
	name := fmt.Sprintf("image-%d", n)
	if subBreed == "" {
		return path.Join(root, breed, name)
	}
	return path.Join(root, breed, subBreed, name)
}

// PrefixFor returns the directory under which all images of a breed or
// sub-breed live.
func PrefixFor(root, breed, subBreed string) string {
	if subBreed == "" {
		return path.Join(root, breed)
	}
	return path.Join(root, breed, subBreed)
}

// ImageSource enumerates breeds and the image URLs of a breed or sub-breed.
// Images must return URLs in a stable order.
type ImageSource interface {
	Breeds(ctx context.Context) (map[string][]string, error)
	Images(ctx context.Context, breed, subBreed string) ([]string, error)
}
