package state

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/hemantobora/auto-iops/internal"
	"github.com/hemantobora/auto-iops/internal/cloud/naming"
	"github.com/hemantobora/auto-iops/internal/models"
	"github.com/hemantobora/auto-iops/internal/utils"
)

// blobAPI is the subset of *azblob.Client the store uses
type blobAPI interface {
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, o *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// BlobStore implements ReportStore using Azure Blob Storage
type BlobStore struct {
	client        blobAPI
	containerName string
	naming        internal.NamingStrategy
}

// NewBlobStore creates a new blob-based report store
func NewBlobStore(client blobAPI, containerName string) *BlobStore {
	return &BlobStore{
		client:        client,
		containerName: containerName,
		naming:        naming.NewDefaultNaming(),
	}
}

// AccountURL expands a bare storage account name into its blob endpoint
func AccountURL(account string) string {
	if strings.HasPrefix(account, "https://") || strings.HasPrefix(account, "http://") {
		return account
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", account)
}

func newBlobClient(accountURL string, cred azcore.TokenCredential) (*azblob.Client, error) {
	return azblob.NewClient(AccountURL(accountURL), cred, nil)
}

func (s *BlobStore) GetProviderType() string {
	return "azblob"
}

// SaveReport uploads the report as a JSON block blob
func (s *BlobStore) SaveReport(ctx context.Context, report *models.ReconciliationReport) (string, error) {
	if err := ValidateReport(report); err != nil {
		return "", fmt.Errorf("invalid report: %w", err)
	}

	data, err := utils.ToPrettyJSON(report)
	if err != nil {
		return "", err
	}

	name := s.naming.ReportKey(report)
	_, err = s.client.UploadBuffer(ctx, s.containerName, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr("application/json")},
	})
	if err != nil {
		cause := err
		if bloberror.HasCode(err, bloberror.ContainerNotFound) {
			cause = fmt.Errorf("container '%s' does not exist: %w", s.containerName, err)
		}
		return "", &models.ProviderError{
			Provider:  "azblob",
			Operation: "upload",
			Resource:  s.containerName + "/" + name,
			Cause:     cause,
		}
	}
	return fmt.Sprintf("azblob://%s/%s", s.containerName, name), nil
}
