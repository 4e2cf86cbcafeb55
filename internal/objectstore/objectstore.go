package objectstore

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gogogo1024/cultura/internal/conf"
	"github.com/gogogo1024/cultura/internal/observability"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("cloud storage not configured")

const verbPutObject = "object-put"

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Store uploads public blobs to an S3-compatible bucket (IBM COS in production).
type Store struct {
	bucket     string
	publicBase string
	up         uploadAPI
}

// New returns ErrNotConfigured when bucket, endpoint or credentials are missing.
func New(ctx context.Context, c conf.StorageConfig) (*Store, error) {
	if c.Bucket == "" || c.Endpoint == "" || c.AccessKey == "" || c.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	region := c.Region
	if region == "" {
		region = "us-south"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = c.PathStyle
	})
	base := strings.TrimRight(c.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
	}
	return newStore(c.Bucket, base, manager.NewUploader(client)), nil
}

func newStore(bucket, publicBase string, up uploadAPI) *Store {
	return &Store{bucket: bucket, publicBase: publicBase, up: up}
}

func (s *Store) Enabled() bool { return s != nil && s.up != nil }

// Put stores body under key with a public-read ACL and returns its public URL.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx, span := observability.Tracer().Start(ctx, "objectstore.put")
	defer span.End()
	start := time.Now()
	_, err := s.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	observability.ObserveUpstream(verbPutObject, start, err)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	observability.UploadsStored.Add(1)
	return s.publicBase + "/" + key, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SafeName replaces every character outside [a-zA-Z0-9._-] with a dash.
func SafeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "-")
}

// Key builds "{kind}/{scope}/{uuid}-{safe file name}". An empty kind is "misc".
func Key(kind, scope, filename string) string {
	if kind == "" {
		kind = "misc"
	}
	return kind + "/" + scope + "/" + uuid.NewString() + "-" + SafeName(filename)
}
