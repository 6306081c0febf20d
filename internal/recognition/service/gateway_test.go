package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/observability/metrics"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type textStub struct {
	raw   string
	err   error
	calls int
}

func (s *textStub) Analyze(ctx context.Context, text string) (string, error) {
	s.calls++
	return s.raw, s.err
}

type visionStub struct {
	raw   string
	err   error
	calls int
}

func (s *visionStub) Analyze(ctx context.Context, text string, photo []byte) (string, error) {
	s.calls++
	return s.raw, s.err
}

type compositionStub struct {
	profile *recognitiondomain.MacroProfile
	err     error
}

func (s *compositionStub) Search(ctx context.Context, food string) (*recognitiondomain.MacroProfile, error) {
	return s.profile, s.err
}

func newTestGateway(t *testing.T, text *textStub, vision *visionStub, comp *compositionStub) recognitiondomain.Gateway {
	t.Helper()
	m, err := metrics.New(metrics.NewRegistry())
	require.NoError(t, err)

	return New(Params{
		Cfg:         config.Config{ProviderTimeout: time.Second},
		Log:         zap.NewNop(),
		Metrics:     m,
		Text:        text,
		Vision:      vision,
		Composition: comp,
	})
}

func TestIdentify_DelegatesToTextProviderWithoutPhoto(t *testing.T) {
	text := &textStub{raw: `{"food": "apple", "calories": 95}`}
	vision := &visionStub{}
	gw := newTestGateway(t, text, vision, &compositionStub{})

	est, err := gw.Identify(context.Background(), "one medium apple", nil)
	require.NoError(t, err)

	assert.Equal(t, "apple", est.Name)
	assert.Equal(t, 95.0, est.Calories)
	assert.Equal(t, 1, text.calls)
	assert.Equal(t, 0, vision.calls)
}

func TestIdentify_DelegatesToVisionProviderWithPhoto(t *testing.T) {
	text := &textStub{}
	vision := &visionStub{raw: `{"food": "lasagna", "grams": 300}`}
	gw := newTestGateway(t, text, vision, &compositionStub{})

	est, err := gw.Identify(context.Background(), "dinner", []byte{0xff, 0xd8})
	require.NoError(t, err)

	assert.Equal(t, "lasagna", est.Name)
	assert.Equal(t, 300.0, est.Grams)
	assert.Equal(t, 0, text.calls)
	assert.Equal(t, 1, vision.calls)
}

func TestIdentify_RequiresSomeInput(t *testing.T) {
	gw := newTestGateway(t, &textStub{}, &visionStub{}, &compositionStub{})

	_, err := gw.Identify(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
}

func TestIdentify_ProviderErrorIsRecognitionFailure(t *testing.T) {
	text := &textStub{err: errors.New("connection refused")}
	gw := newTestGateway(t, text, &visionStub{}, &compositionStub{})

	_, err := gw.Identify(context.Background(), "apple", nil)
	assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
}

func TestIdentify_UnparseableOutputIsRecognitionFailure(t *testing.T) {
	text := &textStub{raw: "that does not look like food to me"}
	gw := newTestGateway(t, text, &visionStub{}, &compositionStub{})

	_, err := gw.Identify(context.Background(), "a rock", nil)
	assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
}

func TestLookupComposition_ReturnsProfile(t *testing.T) {
	comp := &compositionStub{profile: &recognitiondomain.MacroProfile{Calories: 165, Protein: 31, Fat: 3.6}}
	gw := newTestGateway(t, &textStub{}, &visionStub{}, comp)

	profile, err := gw.LookupComposition(context.Background(), "chicken breast")
	require.NoError(t, err)
	assert.Equal(t, 165.0, profile.Calories)
}

func TestLookupComposition_WrapsProviderError(t *testing.T) {
	comp := &compositionStub{err: errors.New("timeout")}
	gw := newTestGateway(t, &textStub{}, &visionStub{}, comp)

	_, err := gw.LookupComposition(context.Background(), "chicken breast")
	assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
}

func TestLookupComposition_RejectsEmptyName(t *testing.T) {
	gw := newTestGateway(t, &textStub{}, &visionStub{}, &compositionStub{})

	_, err := gw.LookupComposition(context.Background(), "")
	assert.ErrorIs(t, err, recognitiondomain.ErrNotRecognized)
}
