package navigation

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOverlayBeatsScreenBeneath(t *testing.T) {
	g := newFakeGame("mdconfirm", menus())
	r := NewResolver(g, g, DefaultChecklist(), 0.85)

	for i := 0; i < 3; i++ {
		s, err := r.Resolve()
		require.NoError(t, err)
		assert.Equal(t, MirrorDungeonConfirmation, s)
	}
}

func TestResolveChargeTabOverDrive(t *testing.T) {
	g := newFakeGame("lunacy", menus())
	r := NewResolver(g, g, DefaultChecklist(), 0.85)

	s, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, ChargeLunacy, s)
}

func TestResolveUnknown(t *testing.T) {
	g := newFakeGame("nowhere", menus())
	r := NewResolver(g, g, DefaultChecklist(), 0.85)

	s, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Unknown, s)
}

func TestSurveyReturnsEveryHitInOrder(t *testing.T) {
	g := newFakeGame("levels", menus())
	r := NewResolver(g, g, DefaultChecklist(), 0.85)

	frame, err := g.CaptureFrame(image.Rectangle{})
	require.NoError(t, err)
	hits, err := r.Survey(frame)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, AnchorThreadLevels, hits[0].Anchor.Template)
	assert.Equal(t, AnchorLuxThread, hits[1].Anchor.Template)
}

type thresholdSpy struct {
	seen map[string]float64
	err  error
}

func (s *thresholdSpy) Find(_ image.Image, name string, threshold float64, _ bool) (image.Rectangle, error) {
	s.seen[name] = threshold
	return image.Rectangle{}, s.err
}

func (s *thresholdSpy) FindAll(image.Image, string, float64, bool) ([]image.Rectangle, error) {
	return nil, s.err
}

func TestAnchorThresholdOverride(t *testing.T) {
	g := newFakeGame("hub", menus())
	spy := &thresholdSpy{seen: map[string]float64{}}
	r := NewResolver(g, spy, []Anchor{
		{Template: AnchorHub, State: Hub},
		{Template: AnchorDrive, State: Drive, Threshold: 0.95},
	}, 0.8)

	_, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.8, spy.seen[string(AnchorHub)])
	assert.Equal(t, 0.95, spy.seen[string(AnchorDrive)])
}

func TestResolvePropagatesLocatorError(t *testing.T) {
	g := newFakeGame("hub", menus())
	boom := errors.New("decode failed")
	r := NewResolver(g, &thresholdSpy{seen: map[string]float64{}, err: boom}, DefaultChecklist(), 0.85)

	s, err := r.Resolve()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Unknown, s)
}
