package cloud

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hemantobora/auto-iops/internal"
	"github.com/hemantobora/auto-iops/internal/cloud/azure"
)

// Factory creates management API providers based on configuration
type Factory struct{}

// NewFactory creates a new provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateProvider creates a provider for the specified type
// Supported types: "azure"
func (f *Factory) CreateProvider(ctx context.Context, providerType string, options ...Option) (internal.Provider, error) {
	// Apply options
	opts := &factoryOptions{}
	for _, opt := range options {
		opt(opts)
	}

	switch providerType {
	case "azure":
		return f.createAzureProvider(ctx, opts)
	case "aws", "gcp":
		return nil, fmt.Errorf("%s managed MySQL is not supported", providerType)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}

func (f *Factory) createAzureProvider(_ context.Context, opts *factoryOptions) (internal.Provider, error) {
	var providerOpts []azure.ProviderOption
	if opts.endpoint != "" {
		providerOpts = append(providerOpts, azure.WithEndpoint(opts.endpoint))
	}
	if opts.apiVersion != "" {
		providerOpts = append(providerOpts, azure.WithAPIVersion(opts.apiVersion))
	}
	if opts.httpClient != nil {
		providerOpts = append(providerOpts, azure.WithHTTPClient(opts.httpClient))
	}
	if opts.out != nil {
		providerOpts = append(providerOpts, azure.WithOutput(opts.out))
	}
	provider, err := azure.NewProvider(opts.subscriptionID, opts.token, providerOpts...)
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// Option is a functional option for factory configuration
type Option func(*factoryOptions)

type factoryOptions struct {
	subscriptionID string
	token          string
	endpoint       string
	apiVersion     string
	httpClient     *http.Client
	out            io.Writer
}

// WithCredentials binds the provider to a subscription and bearer token
func WithCredentials(subscriptionID, token string) Option {
	return func(o *factoryOptions) {
		o.subscriptionID = subscriptionID
		o.token = token
	}
}

// WithEndpoint overrides the management API endpoint
func WithEndpoint(endpoint string) Option {
	return func(o *factoryOptions) {
		o.endpoint = endpoint
	}
}

// WithAPIVersion overrides the management API version
func WithAPIVersion(version string) Option {
	return func(o *factoryOptions) {
		o.apiVersion = version
	}
}

// WithHTTPClient sets the HTTP client used by the provider
func WithHTTPClient(c *http.Client) Option {
	return func(o *factoryOptions) {
		o.httpClient = c
	}
}

// WithOutput sets where the provider echoes mutation responses
func WithOutput(w io.Writer) Option {
	return func(o *factoryOptions) {
		o.out = w
	}
}

// NewAuthProvider picks the credential source: a fixed token when one is
// supplied, otherwise the local Azure CLI login.
func NewAuthProvider(subscription, staticToken string) (internal.AuthProvider, error) {
	if staticToken != "" {
		return azure.StaticAuth{Subscription: subscription, Token: staticToken}, nil
	}
	var opts []azure.CLIAuthOption
	if subscription != "" {
		opts = append(opts, azure.WithSubscription(subscription))
	}
	auth, err := azure.NewCLIAuth(opts...)
	if err != nil {
		return nil, err
	}
	return auth, nil
}
