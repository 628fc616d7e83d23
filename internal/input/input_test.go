package input

import (
	"errors"
	"image"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurvedPathEndsAtTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		start := image.Pt(rng.Intn(1920), rng.Intn(1080))
		end := image.Pt(rng.Intn(1920), rng.Intn(1080))

		path := CurvedPath(rng, start, end)
		require.GreaterOrEqual(t, len(path), minSteps)
		require.LessOrEqual(t, len(path), maxSteps)
		assert.Equal(t, end, path[len(path)-1])
	}
}

func TestStepDelayBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 100; i++ {
		d := stepDelay(rng)
		assert.GreaterOrEqual(t, d, minStepDelay)
		assert.LessOrEqual(t, d, maxStepDelay)
	}
}

func TestGlideChecksFailSafeEveryStride(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var moves, checks int
	err := Glide(rng, image.Pt(0, 0), image.Pt(500, 500),
		func(image.Point) error { moves++; return nil },
		func() error { checks++; return nil },
		func(time.Duration) {},
	)
	require.NoError(t, err)
	assert.Equal(t, (moves+failSafeStride-1)/failSafeStride, checks)
}

func TestGlideStopsOnFailSafe(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	var moves, checks int
	err := Glide(rng, image.Pt(0, 0), image.Pt(500, 500),
		func(image.Point) error { moves++; return nil },
		func() error {
			checks++
			if checks == 2 {
				return ErrFailSafe
			}
			return nil
		},
		func(time.Duration) {},
	)
	assert.True(t, errors.Is(err, ErrFailSafe))
	assert.Equal(t, failSafeStride, moves)
}

type recorder struct {
	moves  []image.Point
	clicks []Button
}

func (r *recorder) MoveTo(p image.Point, _ bool) error    { r.moves = append(r.moves, p); return nil }
func (r *recorder) Click(b Button, _ time.Duration) error { r.clicks = append(r.clicks, b); return nil }
func (r *recorder) PressKey(Key, time.Duration) error     { return nil }
func (r *recorder) Drag(_, _ image.Point, _ bool) error   { return nil }
func (r *recorder) CheckFailSafe() error                  { return nil }

func TestRobotIsAnActuator(t *testing.T) {
	var _ Actuator = (*Robot)(nil)
}

func TestClickAtMovesThenClicks(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, ClickAt(rec, image.Pt(10, 20), ButtonRight, 0, false))
	assert.Equal(t, []image.Point{{X: 10, Y: 20}}, rec.moves)
	assert.Equal(t, []Button{ButtonRight}, rec.clicks)
}

func TestButtonNames(t *testing.T) {
	assert.Equal(t, "left", ButtonLeft.String())
	assert.Equal(t, "right", ButtonRight.String())
	assert.Equal(t, "center", ButtonMiddle.String())
}
