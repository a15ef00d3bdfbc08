package azure

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/hemantobora/auto-iops/internal/models"
)

// ManagementScope is the token scope for the Azure Resource Manager API
const ManagementScope = "https://management.azure.com/.default"

// commandRunner runs an external command and returns its stdout
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("Azure CLI (%s) not found in PATH: %w", name, err)
	}
	return exec.CommandContext(ctx, path, args...).Output()
}

// CLIAuth resolves the subscription and token from the local Azure CLI login
type CLIAuth struct {
	subscription string
	credential   azcore.TokenCredential
	run          commandRunner
}

// CLIAuthOption is a functional option for CLIAuth
type CLIAuthOption func(*CLIAuth)

// WithSubscription pins the subscription instead of asking the Azure CLI
func WithSubscription(id string) CLIAuthOption {
	return func(a *CLIAuth) {
		a.subscription = strings.TrimSpace(id)
	}
}

// WithCredential replaces the Azure CLI token credential
func WithCredential(cred azcore.TokenCredential) CLIAuthOption {
	return func(a *CLIAuth) {
		a.credential = cred
	}
}

func withCommandRunner(run commandRunner) CLIAuthOption {
	return func(a *CLIAuth) {
		a.run = run
	}
}

// NewCLIAuth creates an AuthProvider backed by `az login`
func NewCLIAuth(options ...CLIAuthOption) (*CLIAuth, error) {
	a := &CLIAuth{run: runCommand}
	for _, opt := range options {
		opt(a)
	}
	if a.credential == nil {
		cred, err := azidentity.NewAzureCLICredential(nil)
		if err != nil {
			return nil, &models.AuthError{Step: "token", Cause: err}
		}
		a.credential = cred
	}
	return a, nil
}

// SubscriptionID returns the pinned subscription or the Azure CLI's current one
func (a *CLIAuth) SubscriptionID(ctx context.Context) (string, error) {
	if a.subscription != "" {
		return a.subscription, nil
	}
	out, err := a.run(ctx, "az", "account", "show", "--query", "id", "-o", "tsv")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", &models.AuthError{Step: "subscription", Cause: err}
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", &models.AuthError{Step: "subscription", Cause: fmt.Errorf("az account show returned no subscription id")}
	}
	return id, nil
}

// AccessToken returns a bearer token for the management API
func (a *CLIAuth) AccessToken(ctx context.Context) (string, error) {
	tok, err := a.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{ManagementScope}})
	if err != nil {
		return "", &models.AuthError{Step: "token", Cause: err}
	}
	if tok.Token == "" {
		return "", &models.AuthError{Step: "token", Cause: fmt.Errorf("empty access token")}
	}
	return tok.Token, nil
}

// Credential exposes the token credential for other Azure SDK clients
func (a *CLIAuth) Credential() azcore.TokenCredential {
	return a.credential
}

// StaticAuth is an AuthProvider with fixed values
type StaticAuth struct {
	Subscription string
	Token        string
}

func (s StaticAuth) SubscriptionID(context.Context) (string, error) {
	if s.Subscription == "" {
		return "", &models.AuthError{Step: "subscription", Cause: fmt.Errorf("no subscription id configured")}
	}
	return s.Subscription, nil
}

func (s StaticAuth) AccessToken(context.Context) (string, error) {
	if s.Token == "" {
		return "", &models.AuthError{Step: "token", Cause: fmt.Errorf("no access token configured")}
	}
	return s.Token, nil
}
