// Package ocr is the boundary to the external text-recognition service.
package ocr

import "context"

// Provider extracts text from an image file. An empty string with a nil
// error means the service found no text; callers must treat that as "no
// text available", not as a failure.
type Provider interface {
	Text(ctx context.Context, imagePath string) (string, error)
}

// MockProvider is a canned provider for tests.
type MockProvider struct {
	// Texts maps image paths to returned text. Paths not present return
	// Fallback.
	Texts    map[string]string
	Fallback string
	Err      error
	Calls    []string
}

func (m *MockProvider) Text(_ context.Context, imagePath string) (string, error) {
	m.Calls = append(m.Calls, imagePath)
	if m.Err != nil {
		return "", m.Err
	}
	if text, ok := m.Texts[imagePath]; ok {
		return text, nil
	}
	return m.Fallback, nil
}
