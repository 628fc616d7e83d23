package browser

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusufSemihCan/Charon-LCBot/internal/input"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

func TestCookieFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.yaml")
	in := []Cookie{{Name: "sid", Value: "abc", Domain: ".example.com", Path: "/", Expires: 1.7e9, Secure: true, SameSite: "Lax"}}

	require.NoError(t, WriteCookies(path, in))
	out, err := LoadCookies(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadCookiesMissingFile(t *testing.T) {
	out, err := LoadCookies(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnstartedSessionRefusesWork(t *testing.T) {
	s := NewSession(Options{URL: "about:blank"})
	assert.Equal(t, image.Rect(0, 0, 1920, 1080), s.Bounds())

	_, err := s.CaptureFrame(image.Rectangle{})
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, s.MoveTo(image.Pt(1, 1), false), ErrNotRunning)
	assert.ErrorIs(t, s.Drag(image.Pt(1, 1), image.Pt(5, 5), false), ErrNotRunning)
}

func TestTripLatchesFailSafe(t *testing.T) {
	s := NewSession(Options{URL: "about:blank"})
	require.NoError(t, s.CheckFailSafe())

	s.Trip()
	assert.ErrorIs(t, s.CheckFailSafe(), input.ErrFailSafe)
	assert.ErrorIs(t, s.Click(input.ButtonLeft, time.Millisecond), input.ErrFailSafe)
	assert.ErrorIs(t, s.PressKey(input.KeyEscape, 0), input.ErrFailSafe)
	assert.ErrorIs(t, s.Drag(image.Pt(1, 1), image.Pt(5, 5), true), input.ErrFailSafe)

	s.Reset()
	assert.NoError(t, s.CheckFailSafe())
}

func TestLaunchFlags(t *testing.T) {
	s := NewSession(Options{URL: "about:blank", Headless: true})
	flags := s.launchFlags()
	assert.Equal(t, true, flags["headless"])
	assert.NotContains(t, flags, "enable-automation")
	assert.NotContains(t, flags, "disable-blink-features")
}

func TestSessionIsAProviderAndActuator(t *testing.T) {
	var _ input.Actuator = (*Session)(nil)
	var _ screen.Provider = (*Session)(nil)
}
