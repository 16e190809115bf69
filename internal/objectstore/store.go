package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"clipvault/internal/assetkey"
	"clipvault/internal/config"
	"clipvault/internal/services"
)

// api is the subset of the S3 client the store uses; narrowed for test fakes.
type api interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store is the durable object store client for transcoded clips.
type Store struct {
	client        api
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
}

// New builds a Store from application config using the default AWS credential
// chain. A custom endpoint (MinIO, Supabase storage) switches to path-style
// addressing when configured.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("objectstore: config required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.ForcePathStyle || cfg.Storage.Endpoint != ""
	})
	return &Store{
		client:        client,
		bucket:        cfg.Storage.Bucket,
		region:        cfg.Storage.Region,
		endpoint:      cfg.Storage.Endpoint,
		publicBaseURL: cfg.Storage.PublicBaseURL,
	}, nil
}

// Exists reports whether an object for the given asset key is present.
// Transport and auth failures propagate as store-unavailable errors rather
// than reading as a miss; a false negative here would trigger duplicate
// download and transcode work.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	name := assetkey.ObjectName(key)
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(name),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, services.Wrap(services.ErrStoreUnavailable, "objectstore", "exists", name, err)
	}
	for _, obj := range out.Contents {
		if obj.Key != nil && *obj.Key == name {
			return true, nil
		}
	}
	return false, nil
}

// PublicURL derives the public playback URL for an asset key. Pure; the
// convention is fixed once bucket and endpoint are configured.
func (s *Store) PublicURL(key string) string {
	name := assetkey.ObjectName(key)
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + name
	}
	if s.endpoint != "" {
		return s.endpoint + "/" + s.bucket + "/" + name
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, name)
}

// Upload stores the file at path under the asset key, overwriting any existing
// object. PutObject is an upsert, so re-ingesting a key is idempotent.
// Returns the public URL on success.
func (s *Store) Upload(ctx context.Context, key, path, contentType string) (string, error) {
	name := assetkey.ObjectName(key)
	file, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrStoreWrite, "objectstore", "upload", "open "+path, err)
	}
	defer file.Close()

	if strings.TrimSpace(contentType) == "" {
		contentType = "video/mp4"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(name),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", services.Wrap(services.ErrStoreWrite, "objectstore", "upload", name, err)
	}
	return s.PublicURL(key), nil
}

// Download reads the stored object for an asset key into memory. Used by the
// playback cache fetcher.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	name := assetkey.ObjectName(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "objectstore", "download", name, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrStoreUnavailable, "objectstore", "download", "read "+name, err)
	}
	return data, nil
}
