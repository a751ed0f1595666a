package oss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
	"ai-interview-service/internal/domain/ports/adapter"
)

// PutObjectAPI abstracts the one S3 operation this store uses.
// The [s3.Client] type satisfies this interface.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ adapter.ObjectStore = (*Store)(nil)

// Store uploads local files to an S3-compatible bucket (Aliyun OSS in
// production) and hands back virtual-host URLs. Object names are fresh
// UUIDs plus the source extension, so logically distinct uploads never
// collide. No retry logic: callers decide whether to retry the whole
// pipeline.
type Store struct {
	client     PutObjectAPI
	bucket     string
	publicHost string
	log        *zerolog.Logger
}

// New creates the store. The client must be pre-configured with
// credentials, region, and endpoint; publicHost is the host portion used
// in returned URLs (e.g. "oss-cn-shanghai.aliyuncs.com").
func New(client PutObjectAPI, bucket, publicHost string, logger *zerolog.Logger) *Store {
	l := logger.With().Str("component", "ObjectStore").Logger()
	return &Store{client: client, bucket: bucket, publicHost: publicHost, log: &l}
}

func (s *Store) Upload(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", domain.ErrUploadFailed, localPath, err)
	}
	defer f.Close()

	object := uuid.NewString() + filepath.Ext(localPath)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(object),
		Body:   f,
	}); err != nil {
		s.log.Warn().Err(err).Str("object", object).Msg("put object failed")
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	url := fmt.Sprintf("https://%s.%s/%s", s.bucket, s.publicHost, object)
	s.log.Debug().Str("url", url).Msg("uploaded")
	return url, nil
}
