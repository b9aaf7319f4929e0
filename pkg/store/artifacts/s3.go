package artifacts

import (
	"context"
	"fmt"
	"io"
	"path"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	DefaultRegion = "us-east-1" // Default region if not specified in AWS profile
)

// Source resolves pre-provisioned benchmark artifacts by name.
type Source interface {
	Fetch(ctx context.Context, benchmark, name string) (io.ReadCloser, error)
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

const (
	BackendS3    = "s3"
	BackendBlob  = "azblob"
	BackendMinio = "minio"
)

type Settings struct {
	Backend string
	// Bucket is the S3 bucket or the blob container
	Bucket     string
	Prefix     string
	Profile    string
	Region     string
	AccountURL string

	// S3 compatible endpoints
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// NewSource picks the store by backend, S3 when unset.
func NewSource(ctx context.Context, settings Settings) (Source, error) {
	switch settings.Backend {
	case "", BackendS3:
		return NewS3Source(ctx, settings)
	case BackendBlob:
		return NewBlobSource(BlobSettings{
			AccountURL: settings.AccountURL,
			Container:  settings.Bucket,
			Prefix:     settings.Prefix,
		}, nil)
	case BackendMinio:
		return NewMinioSource(settings)
	default:
		return nil, fmt.Errorf("unknown artifact backend %q", settings.Backend)
	}
}

type s3Source struct {
	client objectGetter
	bucket string
	prefix string
}

func LoadConfig(ctx context.Context, profile, region string) (*awssdk.Config, error) {
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithDefaultRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

func NewS3Source(ctx context.Context, settings Settings) (Source, error) {
	if settings.Bucket == "" {
		return nil, fmt.Errorf("artifact bucket is not configured")
	}

	awsCfg, err := LoadConfig(ctx, settings.Profile, settings.Region)
	if err != nil {
		return nil, err
	}
	return newS3Source(s3.NewFromConfig(*awsCfg), settings.Bucket, settings.Prefix), nil
}

func newS3Source(client objectGetter, bucket, prefix string) *s3Source {
	return &s3Source{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey is <prefix>/<benchmark>/<name>.
func (s *s3Source) ObjectKey(benchmark, name string) string {
	return path.Join(s.prefix, benchmark, name)
}

func (s *s3Source) Fetch(ctx context.Context, benchmark, name string) (io.ReadCloser, error) {
	key := s.ObjectKey(benchmark, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(s.bucket),
		Key:    awssdk.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}
