package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	options string
	closed  bool
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte, _, _ int) ([]RawDetection, error) {
	return nil, nil
}

func (f *fakeDetector) Close() error {
	f.closed = true
	return nil
}

func TestManager_LazyInitAndReuse(t *testing.T) {
	m := NewManager()
	built := 0
	m.Register("fake", func(options string) (Detector, error) {
		built++
		return &fakeDetector{options: options}, nil
	})

	d1, err := m.Get("fake", "en")
	require.NoError(t, err)
	d2, err := m.Get("fake", "en")
	require.NoError(t, err)
	assert.Same(t, d1, d2)
	assert.Equal(t, 1, built)

	// Different options get their own instance.
	_, err = m.Get("fake", "de")
	require.NoError(t, err)
	assert.Equal(t, 2, built)
}

func TestManager_UnknownEngine(t *testing.T) {
	m := NewManager()
	_, err := m.Get("missing", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown detection engine")
}

func TestManager_FailedInitRetries(t *testing.T) {
	m := NewManager()
	calls := 0
	m.Register("flaky", func(string) (Detector, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("model missing")
		}
		return &fakeDetector{}, nil
	})

	_, err := m.Get("flaky", "")
	require.Error(t, err)
	_, err = m.Get("flaky", "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	m.Register("fake", func(string) (Detector, error) {
		return &fakeDetector{}, nil
	})
	d, err := m.Get("fake", "en")
	require.NoError(t, err)

	require.NoError(t, m.Close())
	fd, ok := d.(*fakeDetector)
	require.True(t, ok)
	assert.True(t, fd.closed)

	// A fresh Get after Close rebuilds the detector.
	d2, err := m.Get("fake", "en")
	require.NoError(t, err)
	assert.NotSame(t, d, d2)
}

func TestManager_Engines(t *testing.T) {
	m := NewManager()
	m.Register("tesseract", func(string) (Detector, error) { return &fakeDetector{}, nil })
	m.Register("easyocr", func(string) (Detector, error) { return &fakeDetector{}, nil })
	assert.Equal(t, []string{"easyocr", "tesseract"}, m.Engines())
}
