package export

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"edulite-cli/internal/config"
)

// S3Target stores decks as objects in an S3 bucket under an optional key
// prefix. Credentials come from the standard AWS chain unless static keys
// are configured.
type S3Target struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Target creates an S3 target from configuration.
func NewS3Target(cfg config.ExportTargetConfig) (*S3Target, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 target requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Target{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (t *S3Target) key(name string) string {
	return t.prefix + name
}

// PutDeck uploads a deck to the bucket. The uploader splits large decks into
// multipart uploads transparently.
func (t *S3Target) PutDeck(name string, r io.Reader, size int64) error {
	if err := validDeckName(name); err != nil {
		return err
	}

	_, err := t.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading deck %s: %w", name, err)
	}
	return nil
}

// GetDeck downloads the deck stored under name and writes it to w.
func (t *S3Target) GetDeck(name string, w io.Writer) error {
	if err := validDeckName(name); err != nil {
		return err
	}

	out, err := t.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(t.key(name)),
	})
	if err != nil {
		return fmt.Errorf("downloading deck %s: %w", name, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading deck %s: %w", name, err)
	}
	return nil
}

// ListDecks lists the deck names under the configured prefix.
func (t *S3Target) ListDecks() ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(t.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(t.bucket),
		Prefix: aws.String(t.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("listing decks: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), t.prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup verifies that the bucket exists and is reachable.
func (t *S3Target) ValidateSetup() error {
	_, err := t.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(t.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", t.bucket, err)
	}
	return nil
}

// Compile-time check that S3Target implements the Target interface
var _ Target = (*S3Target)(nil)
