package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"ai-interview-service/internal/domain/model"
)

// ---- staging ----

type mockStaging struct {
	dir     string
	saved   []string
	removed []string

	saveUploadErr error
	saveBytesErr  error
	removeErr     error
}

func newMockStaging(dir string) *mockStaging {
	return &mockStaging{dir: dir}
}

func (m *mockStaging) SaveUpload(r io.Reader, ext string) (string, error) {
	if m.saveUploadErr != nil {
		return "", m.saveUploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return m.write(b, ext)
}

func (m *mockStaging) SaveBytes(b []byte, ext string) (string, error) {
	if m.saveBytesErr != nil {
		return "", m.saveBytesErr
	}
	return m.write(b, ext)
}

func (m *mockStaging) write(b []byte, ext string) (string, error) {
	path := filepath.Join(m.dir, uuid.NewString()+"."+ext)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	m.saved = append(m.saved, path)
	return path, nil
}

func (m *mockStaging) Remove(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		m.removed = append(m.removed, p)
		_ = os.Remove(p)
	}
	return m.removeErr
}

// ---- normalizer ----

type mockNormalizer struct {
	outputSize int
	err        error
	calls      int
}

func (m *mockNormalizer) Normalize(ctx context.Context, inputPath string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	out := inputPath + ".norm.wav"
	if err := os.WriteFile(out, make([]byte, m.outputSize), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// ---- object store ----

type mockObjectStore struct {
	mu      sync.Mutex
	uploads []string
	urls    []string
	failAt  int // 1-based call number that fails; 0 disables
	err     error
}

func (m *mockObjectStore) Upload(ctx context.Context, localPath string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, localPath)
	if m.failAt != 0 && len(m.uploads) == m.failAt {
		return "", m.err
	}
	url := "https://bucket.example.com/" + filepath.Base(localPath)
	m.urls = append(m.urls, url)
	return url, nil
}

// ---- speech ----

type mockSTT struct {
	text  string
	err   error
	calls int
	urls  []string
}

func (m *mockSTT) Transcribe(ctx context.Context, audioURL string) (string, error) {
	m.calls++
	m.urls = append(m.urls, audioURL)
	return m.text, m.err
}

type mockSynthesizer struct {
	audio []byte
	err   error
	texts []string
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return nil, m.err
	}
	return m.audio, nil
}

// ---- generation ----

type mockGenerator struct {
	reply string
	err   error
	asked []string
}

func (m *mockGenerator) Generate(ctx context.Context, userText string) (string, error) {
	m.asked = append(m.asked, userText)
	return m.reply, m.err
}

// ---- repository ----

type mockInterviewRepo struct {
	mu      sync.Mutex
	records []*model.InterviewRecord
	saveErr error
	listErr error
}

func (m *mockInterviewRepo) Save(ctx context.Context, rec *model.InterviewRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	rec.ID = uuid.NewString()
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *mockInterviewRepo) ListAll(ctx context.Context) ([]*model.InterviewRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*model.InterviewRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}
