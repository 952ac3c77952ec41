package upload

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioProvider stores artifacts in a MinIO/S3 bucket.
type MinioProvider struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioProvider creates an unconfigured MinioProvider.
func NewMinioProvider() *MinioProvider {
	return &MinioProvider{}
}

// Name returns the provider name.
func (m *MinioProvider) Name() string {
	return "minio"
}

// Configure sets up the MinIO client and verifies the target bucket exists.
// Required settings: endpoint, access_key, secret_key, bucket. Optional:
// secure (default true), region, prefix.
func (m *MinioProvider) Configure(settings map[string]any) error {
	s := settingsMap(settings)

	endpoint, err := s.requireString("endpoint")
	if err != nil {
		return err
	}
	accessKey, err := s.requireString("access_key")
	if err != nil {
		return err
	}
	secretKey, err := s.requireString("secret_key")
	if err != nil {
		return err
	}
	bucket, err := s.requireString("bucket")
	if err != nil {
		return err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: s.boolOr("secure", true),
		Region: s.stringOr("region", "us-east-1"),
	})
	if err != nil {
		return fmt.Errorf("minio: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("minio: failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("minio: bucket %s does not exist", bucket)
	}

	m.client = client
	m.bucket = bucket
	m.prefix = s.stringOr("prefix", "")
	return nil
}

// Upload streams content to the bucket under the configured prefix.
func (m *MinioProvider) Upload(ctx context.Context, reader io.Reader, remotePath string) error {
	if m.client == nil {
		return fmt.Errorf("minio: provider not configured")
	}

	objectName := remotePath
	if m.prefix != "" {
		objectName = path.Join(m.prefix, remotePath)
	}

	// -1 lets the client stream content of unknown size.
	_, err := m.client.PutObject(ctx, m.bucket, objectName, reader, -1, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("minio: failed to upload to %s: %w", objectName, err)
	}
	return nil
}

func init() {
	Register("minio", func() Provider {
		return NewMinioProvider()
	})
}
