package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/logging"
)

// Failure records an image listing that could not be completed. Its Prefix
// must not be cleaned, since the remote images under it were never planned.
type Failure struct {
	Breed    string
	SubBreed string
	Prefix   string
	Err      error
}

// Plan is the desired target set of a run.
type Plan struct {
	Taxonomy   Taxonomy
	Candidates []Candidate
	Failures   []Failure

	// Scope lists the breed prefixes a filtered run owns. Remote entries
	// outside it must not be cleaned. Empty means the whole root.
	Scope []string
}

// Paths returns the logical paths of all candidates in plan order.
func (p *Plan) Paths() []string {
	paths := make([]string, len(p.Candidates))
	for i, c := range p.Candidates {
		paths[i] = c.Path
	}
	return paths
}

// ProtectedPrefixes returns the prefixes of failed listings.
func (p *Plan) ProtectedPrefixes() []string {
	prefixes := make([]string, 0, len(p.Failures))
	for _, f := range p.Failures {
		prefixes = append(prefixes, f.Prefix)
	}
	return prefixes
}

// Planner builds a Plan from an ImageSource.
type Planner struct {
	source  ImageSource
	options *Options
}

// Options controls planning.
type Options struct {
	Root              string
	MaxBreedImages    int
	MaxSubBreedImages int
	Breeds            []string // restrict the taxonomy; empty means all
	Concurrency       int
}

// Option is a function that configures planner Options.
type Option func(*Options)

// Defaults returns the default planner options.
func Defaults() *Options {
	return &Options{
		Root:              constants.DefaultRootDir,
		MaxBreedImages:    constants.DefaultMaxImages,
		MaxSubBreedImages: constants.DefaultMaxImages,
		Concurrency:       constants.DefaultPlanConcurrency,
	}
}

// WithRoot sets the remote root directory.
func WithRoot(root string) Option {
	return func(o *Options) {
		o.Root = root
	}
}

// WithCaps sets the per breed and per sub-breed image caps.
func WithCaps(maxBreedImages, maxSubBreedImages int) Option {
	return func(o *Options) {
		o.MaxBreedImages = maxBreedImages
		o.MaxSubBreedImages = maxSubBreedImages
	}
}

// WithBreeds restricts planning to the named breeds.
func WithBreeds(breeds ...string) Option {
	return func(o *Options) {
		o.Breeds = breeds
	}
}

// WithConcurrency sets the number of concurrent image listings.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// Validate checks the planner options.
func (o *Options) Validate() error {
	if o.MaxBreedImages < 0 {
		return errors.NewValidationError("MaxBreedImages", o.MaxBreedImages, "must be non-negative")
	}
	if o.MaxSubBreedImages < 0 {
		return errors.NewValidationError("MaxSubBreedImages", o.MaxSubBreedImages, "must be non-negative")
	}
	if o.Root == "" {
		return errors.NewValidationError("Root", o.Root, "must not be empty")
	}
	return nil
}

// NewPlanner creates a Planner over source.
func NewPlanner(source ImageSource, opts ...Option) *Planner {
	options := Defaults()
	for _, opt := range opts {
		opt(options)
	}
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	return &Planner{source: source, options: options}
}

// listing is one (breed, sub-breed) image enumeration job.
type listing struct {
	breed    string
	subBreed string
	limit    int
	urls     []string
	err      error
}

func (l listing) target() string {
	if l.subBreed == "" {
		return l.breed
	}
	return l.breed + "/" + l.subBreed
}

// Taxonomy enumerates and filters the breed taxonomy.
func (p *Planner) Taxonomy(ctx context.Context) (Taxonomy, error) {
	raw, err := p.source.Breeds(ctx)
	if err != nil {
		return nil, errors.NewSourceUnavailableError("list breeds", err)
	}
	return NewTaxonomy(raw).Filter(p.options.Breeds...), nil
}

// Plan enumerates the taxonomy, applies the caps, and returns candidates in
// taxonomy order. Listings run concurrently but each result is written to
// its own slot, so the output is identical across runs with unchanged
// upstream data.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	if err := p.options.Validate(); err != nil {
		return nil, err
	}

	taxonomy, err := p.Taxonomy(ctx)
	if err != nil {
		return nil, err
	}

	jobs := p.jobs(taxonomy)
	logger := logging.FromContext(ctx)
	logger.Debug().
		Int("breeds", len(taxonomy)).
		Int("listings", len(jobs)).
		Msg("Planning catalog")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.options.Concurrency)
	for i := range jobs {
		job := &jobs[i]
		if job.limit == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Join(errors.ErrCanceled, err)
			}
			lctx := logging.WithBreed(gctx, job.target())
			urls, err := p.source.Images(lctx, job.breed, job.subBreed)
			if err != nil {
				// A canceled listing aborts planning rather than protecting its prefix.
				if cerr := gctx.Err(); cerr != nil {
					return errors.Join(errors.ErrCanceled, cerr)
				}
				logging.FromContext(lctx).Debug().Err(err).Msg("Image listing attempt failed")
				job.err = err
				return nil
			}
			if len(urls) > job.limit {
				urls = urls[:job.limit]
			}
			job.urls = urls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &Plan{Taxonomy: taxonomy, Scope: p.scope()}
	for _, job := range jobs {
		if job.err != nil {
			logging.FromContext(logging.WithBreed(ctx, job.target())).Warn().
				Err(job.err).
				Msg("Image listing failed")
			plan.Failures = append(plan.Failures, Failure{
				Breed:    job.breed,
				SubBreed: job.subBreed,
				Prefix:   PrefixFor(p.options.Root, job.breed, job.subBreed),
				Err:      errors.NewSourceFetchError("list images", job.target(), job.err),
			})
			continue
		}
		for n, url := range job.urls {
			plan.Candidates = append(plan.Candidates, Candidate{
				Path:      PathFor(p.options.Root, job.breed, job.subBreed, n+1),
				SourceURL: url,
				Breed:     job.breed,
				SubBreed:  job.subBreed,
				Index:     n + 1,
			})
		}
	}

	return plan, nil
}

// scope returns the prefixes of the filtered breeds, or nil when unfiltered.
func (p *Planner) scope() []string {
	if len(p.options.Breeds) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(p.options.Breeds))
	var prefixes []string
	for _, name := range p.options.Breeds {
		prefix := PrefixFor(p.options.Root, name, "")
		if !seen[prefix] {
			seen[prefix] = true
			prefixes = append(prefixes, prefix)
		}
	}
	return prefixes
}

// jobs expands the taxonomy into ordered listing jobs.
func (p *Planner) jobs(taxonomy Taxonomy) []listing {
	var jobs []listing
	for _, b := range taxonomy {
		if b.IsFlat() {
			jobs = append(jobs, listing{breed: b.Name, limit: p.options.MaxBreedImages})
			continue
		}
		for _, sub := range b.SubBreeds {
			jobs = append(jobs, listing{breed: b.Name, subBreed: sub, limit: p.options.MaxSubBreedImages})
		}
	}
	return jobs
}
