package oss

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"ai-interview-service/internal/domain"
)

type fakePutClient struct {
	err  error
	keys []string
	body []byte
}

func (f *fakePutClient) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, *params.Key)
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func writeTempWAV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "voice.wav")
	if err := os.WriteFile(p, []byte("RIFFxxxx"), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUploadBuildsVirtualHostURL(t *testing.T) {
	logger := zerolog.Nop()
	client := &fakePutClient{}
	s := New(client, "brando-test", "oss-cn-shanghai.aliyuncs.com", &logger)

	url, err := s.Upload(context.Background(), writeTempWAV(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	pattern := `^https://brando-test\.oss-cn-shanghai\.aliyuncs\.com/[0-9a-f-]{36}\.wav$`
	if ok, _ := regexp.MatchString(pattern, url); !ok {
		t.Errorf("url %q does not match %s", url, pattern)
	}
	if string(client.body) != "RIFFxxxx" {
		t.Errorf("uploaded body = %q", client.body)
	}
}

func TestUploadObjectNamesNeverCollide(t *testing.T) {
	logger := zerolog.Nop()
	client := &fakePutClient{}
	s := New(client, "b", "host", &logger)

	p := writeTempWAV(t)
	if _, err := s.Upload(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upload(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if client.keys[0] == client.keys[1] {
		t.Fatalf("object names collided: %s", client.keys[0])
	}
}

func TestUploadSurfacesStoreError(t *testing.T) {
	logger := zerolog.Nop()
	s := New(&fakePutClient{err: errors.New("boom")}, "b", "host", &logger)

	_, err := s.Upload(context.Background(), writeTempWAV(t))
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	logger := zerolog.Nop()
	s := New(&fakePutClient{}, "b", "host", &logger)

	_, err := s.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.Is(err, domain.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
}
