package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/media-library/backend/internal/config"
	"github.com/media-library/backend/internal/models"
)

// NewS3Client creates an S3 client for the library bucket. Static
// credentials are used when configured, otherwise the default AWS chain.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	optFns := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		},
	}

	if cfg.AccessKeyID != "" {
		return s3.New(s3.Options{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID, cfg.SecretAccessKey, "",
			),
		}, optFns...), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, optFns...), nil
}

// S3Scanner indexes the objects under a bucket prefix as if the prefix
// were the library root.
type S3Scanner struct {
	client s3.ListObjectsV2APIClient
	bucket string
	prefix string
	opts   Options
}

// NewS3Scanner creates a scanner over bucket/prefix.
func NewS3Scanner(client s3.ListObjectsV2APIClient, bucket, prefix string, opts Options) *S3Scanner {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Scanner{
		client: client,
		bucket: bucket,
		prefix: prefix,
		opts:   opts.withDefaults(),
	}
}

// Scan lists every object under the prefix. A missing bucket yields an
// empty list.
func (s *S3Scanner) Scan(ctx context.Context) ([]models.IndexedFile, error) {
	files := make([]models.IndexedFile, 0)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			var noBucket *types.NoSuchBucket
			if errors.As(err, &noBucket) {
				return make([]models.IndexedFile, 0), nil
			}
			return nil, fmt.Errorf("listing s3://%s/%s: %w", s.bucket, s.prefix, err)
		}

		for _, obj := range page.Contents {
			rel, ok := s.relativeKey(aws.ToString(obj.Key))
			if !ok {
				continue
			}
			files = append(files, newIndexedFile(rel, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified), len(files), s.opts))
		}
	}
	return files, nil
}

// relativeKey applies the same visibility rules the local walk does.
func (s *S3Scanner) relativeKey(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(key, s.prefix)
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}

	segments := strings.Split(rel, "/")
	if len(segments) > s.opts.MaxDepth+1 {
		return "", false
	}
	for _, seg := range segments {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	if s.opts.Classifier.Hidden(segments[len(segments)-1]) {
		return "", false
	}
	return rel, true
}
