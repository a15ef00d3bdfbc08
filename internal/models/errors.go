package models

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-success response from the management API
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, body)
}

// IsNotFound reports whether err wraps a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// AuthError means the subscription id or access token could not be obtained
type AuthError struct {
	Step  string // "subscription", "token"
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed while resolving %s: %v", e.Step, e.Cause)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// DiscoveryError means listing resource groups or servers failed
type DiscoveryError struct {
	ResourceGroup string // empty when listing resource groups
	Cause         error
}

func (e *DiscoveryError) Error() string {
	if e.ResourceGroup == "" {
		return fmt.Sprintf("failed to list resource groups: %v", e.Cause)
	}
	return fmt.Sprintf("failed to list flexible servers in resource group '%s': %v",
		e.ResourceGroup, e.Cause)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

// ConfigFetchError means a server's configuration could not be read
type ConfigFetchError struct {
	ResourceGroup string
	Server        string
	Cause         error
}

func (e *ConfigFetchError) Error() string {
	return fmt.Sprintf("failed to fetch configuration of server '%s' in resource group '%s': %v",
		e.Server, e.ResourceGroup, e.Cause)
}

func (e *ConfigFetchError) Unwrap() error {
	return e.Cause
}

// MutationError means enabling Auto IOPS on a server failed
type MutationError struct {
	ResourceGroup string
	Server        string
	Cause         error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("failed to enable Auto IOPS on server '%s' in resource group '%s': %v",
		e.Server, e.ResourceGroup, e.Cause)
}

func (e *MutationError) Unwrap() error {
	return e.Cause
}

// ProviderError represents report storage provider errors
type ProviderError struct {
	Provider  string // "file", "s3", "azblob"
	Operation string // "load-config", "validate", "upload"
	Resource  string // bucket, container or path
	Cause     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error during %s operation on resource '%s': %v",
		e.Provider, e.Operation, e.Resource, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// InputValidationError represents user input validation errors
type InputValidationError struct {
	InputType string // "resource group", "token preview", etc.
	Value     string
	Expected  string // description of expected format
	Cause     error
}

func (e *InputValidationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("invalid %s value '%s' (expected: %s): %v",
			e.InputType, e.Value, e.Expected, e.Cause)
	}
	return fmt.Sprintf("invalid %s value '%s': %v",
		e.InputType, e.Value, e.Cause)
}

func (e *InputValidationError) Unwrap() error {
	return e.Cause
}
