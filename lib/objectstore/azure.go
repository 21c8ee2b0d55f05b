// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// DefaultContainer is the container images are uploaded to.
const DefaultContainer = "images"

const imageContentType = "image/jpeg"

// Azure is an object store backed by an Azure Storage container.
// Uploads are block blob commits, which replace any existing blob with
// the same name.
type Azure struct {
	client    *azblob.Client
	container string
}

// NewAzure creates a client from a storage account connection string.
// No network call is made until the first Put.
func NewAzure(connectionString, container string) (*Azure, error) {
	if container == "" {
		container = DefaultContainer
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("objectstore: azure client: %w", err)
	}
	return &Azure{client: client, container: container}, nil
}

// Put uploads data as blob key, overwriting any existing blob.
func (a *Azure) Put(ctx context.Context, key string, data []byte) error {
	digest := Digest(data)
	contentType := imageContentType
	_, err := a.client.UploadBuffer(ctx, a.container, key, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		Metadata:    map[string]*string{DigestMetadataKey: &digest},
	})
	if err != nil {
		return fmt.Errorf("objectstore: azure put %s/%s: %w", a.container, key, err)
	}
	return nil
}

// String names the destination for logs.
func (a *Azure) String() string {
	return "azure:" + a.container
}
