// internal/cloud/azure/provider.go
package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hemantobora/auto-iops/internal/models"
)

const (
	// DefaultEndpoint is the Azure Resource Manager endpoint
	DefaultEndpoint = "https://management.azure.com"
	// DefaultAPIVersion is the MySQL flexible server API version used for every call
	DefaultAPIVersion = "2024-06-01-preview"

	flexibleServersPath = "providers/Microsoft.DBforMySQL/flexibleServers"
)

// Provider talks to the ARM REST API for one subscription
type Provider struct {
	subscriptionID string
	token          string
	endpoint       string
	apiVersion     string
	httpClient     *http.Client
	out            io.Writer
}

// ProviderOption is a functional option for provider configuration
type ProviderOption func(*providerOptions)

type providerOptions struct {
	endpoint   string
	apiVersion string
	httpClient *http.Client
	out        io.Writer
}

// WithEndpoint overrides the ARM endpoint (tests, sovereign clouds)
func WithEndpoint(endpoint string) ProviderOption {
	return func(o *providerOptions) {
		o.endpoint = endpoint
	}
}

// WithAPIVersion overrides the api-version query parameter
func WithAPIVersion(version string) ProviderOption {
	return func(o *providerOptions) {
		o.apiVersion = version
	}
}

// WithHTTPClient sets the HTTP client used for every request
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(o *providerOptions) {
		o.httpClient = c
	}
}

// WithOutput sets where mutation responses are echoed
func WithOutput(w io.Writer) ProviderOption {
	return func(o *providerOptions) {
		o.out = w
	}
}

// NewProvider creates an ARM provider bound to a subscription and a bearer token
func NewProvider(subscriptionID, token string, options ...ProviderOption) (*Provider, error) {
	opts := &providerOptions{
		endpoint:   DefaultEndpoint,
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range options {
		opt(opts)
	}

	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if opts.httpClient == nil {
		opts.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if opts.out == nil {
		opts.out = io.Discard
	}

	return &Provider{
		subscriptionID: subscriptionID,
		token:          token,
		endpoint:       strings.TrimRight(opts.endpoint, "/"),
		apiVersion:     opts.apiVersion,
		httpClient:     opts.httpClient,
		out:            opts.out,
	}, nil
}

// GetProviderType returns the provider type
func (p *Provider) GetProviderType() string {
	return "azure"
}

func (p *Provider) GetSubscriptionID() string {
	return p.subscriptionID
}

// ARM payloads

type resourceGroupList struct {
	Value    []models.ResourceGroup `json:"value"`
	NextLink string                 `json:"nextLink"`
}

type serverResource struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	SKU      *struct {
		Name string `json:"name"`
		Tier string `json:"tier"`
	} `json:"sku"`
	Properties *struct {
		Storage *struct {
			AutoIoScaling string `json:"autoIoScaling"`
		} `json:"storage"`
	} `json:"properties"`
}

type serverList struct {
	Value    []serverResource `json:"value"`
	NextLink string           `json:"nextLink"`
}

type storagePatch struct {
	AutoIoScaling models.AutoIOScaling `json:"autoIoScaling"`
}

type propertiesPatch struct {
	Storage storagePatch `json:"storage"`
}

// serverPatch is the only update body this tool ever sends
type serverPatch struct {
	Properties propertiesPatch `json:"properties"`
}

func (p *Provider) subscriptionURL(parts ...string) string {
	segments := []string{p.endpoint, "subscriptions", url.PathEscape(p.subscriptionID)}
	segments = append(segments, parts...)
	return strings.Join(segments, "/") + "?api-version=" + url.QueryEscape(p.apiVersion)
}

func (p *Provider) serversURL(resourceGroup string) string {
	return p.subscriptionURL("resourceGroups", url.PathEscape(resourceGroup), flexibleServersPath)
}

func (p *Provider) serverURL(resourceGroup, serverName string) string {
	return p.subscriptionURL("resourceGroups", url.PathEscape(resourceGroup), flexibleServersPath, url.PathEscape(serverName))
}

// checkNextLink rejects a nextLink that leaves the configured endpoint, so
// the bearer token is only ever sent to that scheme and host.
func (p *Provider) checkNextLink(link string) error {
	next, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid nextLink: %w", err)
	}
	base, err := url.Parse(p.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if !strings.EqualFold(next.Scheme, base.Scheme) || !strings.EqualFold(next.Host, base.Host) {
		return fmt.Errorf("refusing to follow nextLink to %s://%s (endpoint is %s://%s)", next.Scheme, next.Host, base.Scheme, base.Host)
	}
	return nil
}

// ListResourceGroups lists resource groups in discovery order, following nextLink
func (p *Provider) ListResourceGroups(ctx context.Context) ([]models.ResourceGroup, error) {
	var groups []models.ResourceGroup
	next := p.subscriptionURL("resourcegroups")
	for next != "" {
		var page resourceGroupList
		if _, err := p.doJSON(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, &models.DiscoveryError{Cause: err}
		}
		groups = append(groups, page.Value...)
		if page.NextLink != "" {
			if err := p.checkNextLink(page.NextLink); err != nil {
				return nil, &models.DiscoveryError{Cause: err}
			}
		}
		next = page.NextLink
	}
	return groups, nil
}

// ListServers lists flexible servers in a resource group. A 404 on the
// collection is returned as an empty list.
func (p *Provider) ListServers(ctx context.Context, resourceGroup string) ([]models.ServerRef, error) {
	servers := []models.ServerRef{}
	next := p.serversURL(resourceGroup)
	first := true
	for next != "" {
		var page serverList
		if _, err := p.doJSON(ctx, http.MethodGet, next, nil, &page); err != nil {
			if first && models.IsNotFound(err) {
				return []models.ServerRef{}, nil
			}
			return nil, &models.DiscoveryError{ResourceGroup: resourceGroup, Cause: err}
		}
		for _, s := range page.Value {
			servers = append(servers, models.ServerRef{ResourceGroup: resourceGroup, Name: s.Name})
		}
		if page.NextLink != "" {
			if err := p.checkNextLink(page.NextLink); err != nil {
				return nil, &models.DiscoveryError{ResourceGroup: resourceGroup, Cause: err}
			}
		}
		next = page.NextLink
		first = false
	}
	return servers, nil
}

// GetServer fetches the full configuration of one server
func (p *Provider) GetServer(ctx context.Context, resourceGroup, serverName string) (*models.FlexibleServer, error) {
	var res serverResource
	if _, err := p.doJSON(ctx, http.MethodGet, p.serverURL(resourceGroup, serverName), nil, &res); err != nil {
		return nil, &models.ConfigFetchError{ResourceGroup: resourceGroup, Server: serverName, Cause: err}
	}
	if res.SKU == nil || res.SKU.Tier == "" {
		return nil, &models.ConfigFetchError{
			ResourceGroup: resourceGroup,
			Server:        serverName,
			Cause:         fmt.Errorf("response has no sku.tier"),
		}
	}

	server := &models.FlexibleServer{
		ResourceGroup: resourceGroup,
		Name:          serverName,
		Location:      res.Location,
		Tier:          models.Tier(res.SKU.Tier),
		SKUName:       res.SKU.Name,
		AutoIOScaling: models.AutoIOScalingUnknown,
	}
	if res.Name != "" {
		server.Name = res.Name
	}
	if res.Properties != nil && res.Properties.Storage != nil {
		server.AutoIOScaling = models.AutoIOScaling(res.Properties.Storage.AutoIoScaling)
	}
	return server, nil
}

// EnableAutoIOScaling sends a PATCH that sets only storage.autoIoScaling to Enabled
func (p *Provider) EnableAutoIOScaling(ctx context.Context, resourceGroup, serverName string) error {
	body := serverPatch{
		Properties: propertiesPatch{
			Storage: storagePatch{AutoIoScaling: models.AutoIOScalingEnabled},
		},
	}
	resp, err := p.doJSON(ctx, http.MethodPatch, p.serverURL(resourceGroup, serverName), body, nil)
	if resp != nil {
		fmt.Fprintf(p.out, "   ↳ PATCH response: %s\n", resp.Status)
	}
	if err != nil {
		return &models.MutationError{ResourceGroup: resourceGroup, Server: serverName, Cause: err}
	}
	return nil
}
