package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/OFFIS-RIT/textgraph/pkg/loader"
)

// ObjectGetter is the part of *s3.Client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3TextLoader loads documents from an S3 bucket. Document paths are
// object keys.
type S3TextLoader struct {
	bucket string
	client ObjectGetter
	cache  *loader.Cache
}

// NewS3TextLoaderWithClient creates a new S3TextLoader using an existing
// client, which is useful to share one preconfigured AWS client.
func NewS3TextLoaderWithClient(bucket string, client ObjectGetter) *S3TextLoader {
	return &S3TextLoader{
		bucket: bucket,
		client: client,
		cache:  loader.NewCache(),
	}
}

// NewS3TextLoaderParams defines the configuration parameters for
// creating a new S3TextLoader.
//
// Endpoint overrides the S3 endpoint for S3-compatible storage like MinIO.
type NewS3TextLoaderParams struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3TextLoader creates a new S3TextLoader with static credentials.
//
// Example:
//
//	l, err := s3.NewS3TextLoader(ctx, s3.NewS3TextLoaderParams{
//		Bucket:    "documents",
//		Endpoint:  "http://localhost:9000",
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
//		SecretKey: os.Getenv("AWS_SECRET_KEY"),
//	})
func NewS3TextLoader(ctx context.Context, params NewS3TextLoaderParams) (*S3TextLoader, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(params.Region),
		config.WithBaseEndpoint(params.Endpoint),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return NewS3TextLoaderWithClient(params.Bucket, client), nil
}

// LoadText downloads the object at doc.Path. Results are cached.
func (l *S3TextLoader) LoadText(ctx context.Context, doc loader.Document) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(doc), func() ([]byte, error) {
		out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(l.bucket),
			Key:    aws.String(doc.Path),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get object %s: %w", doc.Path, err)
		}
		defer out.Body.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, out.Body); err != nil {
			return nil, fmt.Errorf("failed to read object %s: %w", doc.Path, err)
		}
		return buf.Bytes(), nil
	})
}
