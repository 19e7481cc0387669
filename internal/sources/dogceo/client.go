// Package dogceo reads the breed taxonomy and breed images from the
// dog.ceo REST API.
package dogceo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/agentstation/dogsync/internal/transport"
	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/executor"
)

// API is the name used in errors and logs.
const API = "dog.ceo"

// envelope is the dog.ceo response shape.
type envelope[T any] struct {
	Message T      `json:"message"`
	Status  string `json:"status"`
}

// Client is a dog.ceo API client. It implements catalog.ImageSource and
// executor.Fetcher.
type Client struct {
	root      string
	transport *transport.Client
	images    *transport.Client
}

var (
	_ catalog.ImageSource = (*Client)(nil)
	_ executor.Fetcher    = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithAPIRoot overrides the API root URL.
func WithAPIRoot(root string) Option {
	return func(c *Client) {
		if root != "" {
			c.root = strings.TrimRight(root, "/")
		}
	}
}

// WithTransport replaces the API transport and the image download transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.transport = t
		c.images = t
	}
}

// NewClient creates a dog.ceo client.
func NewClient(opts ...Option) *Client {
	t := transport.New(API, transport.WithTimeout(constants.DogAPITimeout))
	c := &Client{
		root:      constants.DogAPIRoot,
		transport: t,
		images: transport.New(API,
			transport.WithTimeout(constants.DogAPITimeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breeds returns every breed mapped to its sub-breeds.
func (c *Client) Breeds(ctx context.Context) (map[string][]string, error) {
	var env envelope[map[string][]string]
	if err := c.get(ctx, "breeds/list/all", &env); err != nil {
		return nil, err
	}
	if env.Message == nil {
		return map[string][]string{}, nil
	}
	return env.Message, nil
}

// Images returns all image URLs of a breed, or of one of its sub-breeds
// when sub is not empty, in the order the API lists them.
func (c *Client) Images(ctx context.Context, breed, sub string) ([]string, error) {
	var env envelope[[]string]
	if err := c.get(ctx, imagesEndpoint(breed, sub), &env); err != nil {
		return nil, err
	}
	return env.Message, nil
}

// RandomImages returns up to count random image URLs of a breed or sub-breed.
func (c *Client) RandomImages(ctx context.Context, count int, breed, sub string) ([]string, error) {
	var env envelope[[]string]
	endpoint := fmt.Sprintf("%s/random/%d", imagesEndpoint(breed, sub), count)
	if err := c.get(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	return env.Message, nil
}

// Fetch downloads the image at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, errors.NewValidationError("url", rawURL, "invalid image URL")
	}
	resp, err := c.images.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return transport.ReadBody(resp, API)
}

func imagesEndpoint(breed, sub string) string {
	endpoint := "breed/" + url.PathEscape(breed)
	if sub != "" {
		endpoint += "/" + url.PathEscape(sub)
	}
	return endpoint + "/images"
}

func (c *Client) get(ctx context.Context, endpoint string, env interface{ status() string }) error {
	if err := c.transport.GetJSON(ctx, c.root+"/"+endpoint, env); err != nil {
		return err
	}
	if s := env.status(); s != "" && s != "success" {
		return errors.NewAPIError(API, 0, fmt.Sprintf("%s: status %q", endpoint, s))
	}
	return nil
}

func (e *envelope[T]) status() string {
	return e.Status
}
