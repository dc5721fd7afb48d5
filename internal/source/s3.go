package source

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the configuration for an S3-compatible source.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
	Prefix          string // Optional: key prefix acting as the watched folder
}

// Compile-time check that S3Source implements Source.
var _ Source = (*S3Source)(nil)

// S3Source lists and fetches video objects from an S3 bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	region string
	prefix string
	logger *slog.Logger
}

// NewS3Source creates an S3-backed source.
func NewS3Source(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var configOpts []func(*awsconfig.LoadOptions) error
	configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))

	// Use static credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Source{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// ListVideos enumerates objects under the configured prefix and keeps
// those whose key looks like a video file. The object key doubles as
// the stable item identifier.
func (s *S3Source) ListVideos(ctx context.Context) ([]Item, error) {
	var items []Item

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !IsVideoKey(key) {
				continue
			}
			items = append(items, Item{
				ID:       key,
				Name:     path.Base(key),
				MimeType: "video/" + path.Ext(key)[1:],
				ViewLink: fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key),
			})
		}
	}
	return items, nil
}

// Fetch downloads the object's bytes to destPath.
func (s *S3Source) Fetch(ctx context.Context, item Item, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(item.ID),
	})
	if err != nil {
		return fmt.Errorf("get object %s: %w", item.ID, err)
	}
	defer func() { _ = out.Body.Close() }()

	written, err := copyWithProgress(destPath, out.Body, aws.ToInt64(out.ContentLength), func(pct int) {
		s.logger.Info("downloading",
			slog.String("name", item.Name),
			slog.Int("percent", pct),
		)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", item.Name, err)
	}
	if written == 0 {
		return ErrEmptyDownload
	}
	return nil
}
