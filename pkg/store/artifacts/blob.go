package artifacts

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type blobDownloader interface {
	Download(ctx context.Context, container, blobName string) (io.ReadCloser, error)
}

type azblobDownloader struct {
	client *azblob.Client
}

func (d azblobDownloader) Download(ctx context.Context, container, blobName string) (io.ReadCloser, error) {
	resp, err := d.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

type BlobSettings struct {
	// AccountURL is the storage account endpoint, e.g. https://<account>.blob.core.windows.net/
	AccountURL string
	Container  string
	Prefix     string
}

type blobSource struct {
	client    blobDownloader
	container string
	prefix    string
}

// NewBlobSource reads artifacts from Azure Blob Storage. A nil cred falls back to
// the default Azure credential chain.
func NewBlobSource(settings BlobSettings, cred azcore.TokenCredential) (Source, error) {
	if settings.AccountURL == "" || settings.Container == "" {
		return nil, fmt.Errorf("blob account url and container are required")
	}

	if cred == nil {
		defaultCred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure credential: %w", err)
		}
		cred = defaultCred
	}
	client, err := azblob.NewClient(settings.AccountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return newBlobSource(azblobDownloader{client: client}, settings.Container, settings.Prefix), nil
}

func newBlobSource(client blobDownloader, container, prefix string) *blobSource {
	return &blobSource{client: client, container: container, prefix: prefix}
}

func (s *blobSource) Fetch(ctx context.Context, benchmark, name string) (io.ReadCloser, error) {
	blobName := path.Join(s.prefix, benchmark, name)
	body, err := s.client.Download(ctx, s.container, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blob %s/%s: %w", s.container, blobName, err)
	}
	return body, nil
}
