// Package state provides S3-based report storage
package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/hemantobora/auto-iops/internal"
	"github.com/hemantobora/auto-iops/internal/cloud/naming"
	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/utils"
)

// s3API is the subset of *s3.Client the store uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store implements ReportStore using AWS S3
type S3Store struct {
	client     s3API
	bucketName string
	naming     internal.NamingStrategy
	warn       io.Writer
}

// NewS3Store creates a new S3-based report store
func NewS3Store(client s3API, bucketName string, warn io.Writer) *S3Store {
	if warn == nil {
		warn = io.Discard
	}
	return &S3Store{
		client:     client,
		bucketName: bucketName,
		naming:     naming.NewDefaultNaming(),
		warn:       warn,
	}
}

func (s *S3Store) GetProviderType() string {
	return "s3"
}

// SaveReport uploads the report under its dated key and refreshes the
// latest.json pointer next to it.
func (s *S3Store) SaveReport(ctx context.Context, report *models.ReconciliationReport) (string, error) {
	if err := ValidateReport(report); err != nil {
		return "", fmt.Errorf("invalid report: %w", err)
	}

	data, err := utils.ToPrettyJSON(report)
	if err != nil {
		return "", err
	}

	key := s.naming.ReportKey(report)
	if err := s.putObject(ctx, key, data, "application/json"); err != nil {
		return "", s.wrap("upload", key, err)
	}

	// Save latest pointer
	latestKey := path.Join(s.naming.GetPrefix(), "reports", "latest.json")
	if err := s.putObject(ctx, latestKey, data, "application/json"); err != nil {
		// Log warning but don't fail - the dated report is saved
		fmt.Fprintf(s.warn, "Warning: failed to update %s: %v\n", latestKey, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucketName, key), nil
}

// Helper methods

func (s *S3Store) putObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucketName),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	return err
}

func (s *S3Store) wrap(operation, key string, err error) error {
	cause := err
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			cause = fmt.Errorf("bucket '%s' does not exist: %w", s.bucketName, err)
		case "AccessDenied":
			cause = fmt.Errorf("access denied writing to bucket '%s'; check the AWS profile: %w", s.bucketName, err)
		}
	}
	return &models.ProviderError{
		Provider:  "s3",
		Operation: operation,
		Resource:  fmt.Sprintf("%s/%s", s.bucketName, key),
		Cause:     cause,
	}
}
