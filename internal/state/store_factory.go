// Package state provides factory functions for creating report stores
package state

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/hemantobora/auto-iops/internal/models"
)

// loadAWSConfig loads AWS configuration with optional profile
func loadAWSConfig(ctx context.Context, profile string) (aws.Config, error) {
	optFns := []func(*config.LoadOptions) error{}
	if profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return aws.Config{}, &models.ProviderError{
			Provider:  "s3",
			Operation: "load-config",
			Resource:  fmt.Sprintf("profile:%s", profile),
			Cause:     fmt.Errorf("failed to load AWS config: %w", err),
		}
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg, nil
}

// ValidateAWSCredentials checks that the AWS credentials resolve to an identity
// and returns the account id.
func ValidateAWSCredentials(ctx context.Context, cfg aws.Config) (string, error) {
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", &models.ProviderError{
			Provider:  "s3",
			Operation: "validate",
			Resource:  "sts:GetCallerIdentity",
			Cause:     err,
		}
	}
	return aws.ToString(out.Account), nil
}

// S3StoreWithProfile creates an S3Store after confirming the AWS credentials work
func S3StoreWithProfile(ctx context.Context, bucketName, awsProfile string, warn io.Writer) (*S3Store, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}
	cfg, err := loadAWSConfig(ctx, awsProfile)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateAWSCredentials(ctx, cfg); err != nil {
		return nil, err
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucketName, warn), nil
}

// BlobStoreWithCredential creates a BlobStore for a storage account using an
// Azure token credential (the same login used for the management API).
func BlobStoreWithCredential(accountURL, containerName string, cred azcore.TokenCredential) (*BlobStore, error) {
	if accountURL == "" || containerName == "" {
		return nil, fmt.Errorf("blob account URL and container are required")
	}
	client, err := newBlobClient(accountURL, cred)
	if err != nil {
		return nil, &models.ProviderError{
			Provider:  "azblob",
			Operation: "load-config",
			Resource:  accountURL,
			Cause:     err,
		}
	}
	return NewBlobStore(client, containerName), nil
}
