package origin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"photoreel/internal/config"
)

const defaultS3Region = "us-east-1"

// S3Target writes objects to an S3-compatible bucket under an optional prefix.
type S3Target struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Target builds a client from the origin.s3 settings. Static credentials
// are used when configured; otherwise the default AWS credential chain applies.
func NewS3Target(ctx context.Context, cfg config.S3) (*S3Target, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("origin.s3.bucket is empty")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultS3Region
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Target{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

func (t *S3Target) Name() string {
	if t.prefix == "" {
		return "s3://" + t.bucket
	}
	return "s3://" + t.bucket + "/" + t.prefix
}

func (t *S3Target) objectKey(key string) string {
	if t.prefix == "" {
		return key
	}
	return t.prefix + "/" + key
}

func (t *S3Target) Put(ctx context.Context, obj Object) error {
	if !ValidKey(obj.Key) {
		return fmt.Errorf("invalid object key %q", obj.Key)
	}
	f, err := os.Open(obj.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", obj.Path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", obj.Path, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(t.bucket),
		Key:           aws.String(t.objectKey(obj.Key)),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}
	if _, err := t.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s: %w", obj.Key, err)
	}
	return nil
}

func (t *S3Target) List(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(t.bucket)}
	full := t.objectKey(prefix)
	if t.prefix != "" && prefix == "" {
		full = t.prefix + "/"
	}
	if full != "" {
		input.Prefix = aws.String(full)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", t.Name(), err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if t.prefix != "" {
				key = strings.TrimPrefix(key, t.prefix+"/")
			}
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (t *S3Target) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	_, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
