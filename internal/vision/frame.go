package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
)

// representationOf picks the lookup path for a frame.
func representationOf(frame image.Image) Representation {
	if _, ok := frame.(*image.Gray); ok {
		return Gray
	}
	return Color
}

// frameMemo keeps the Mat of the most recent frame so a resolver running a
// whole anchor battery against one capture converts it once. Only the
// provider frame types are memoized, keyed by pointer; providers hand out
// fresh images per capture.
type frameMemo struct {
	key interface{}
	mat gocv.Mat
	ok  bool
}

// memoKey returns the pointer identity of a provider frame.
func memoKey(frame image.Image) (interface{}, bool) {
	switch f := frame.(type) {
	case *image.RGBA:
		return f, true
	case *image.Gray:
		return f, true
	}
	return nil, false
}

// get returns the Mat for frame and a release func the caller runs after
// matching. Memoized Mats are released on the next reset instead.
func (fm *frameMemo) get(frame image.Image, rep Representation) (gocv.Mat, func(), error) {
	noop := func() {}
	key, cacheable := memoKey(frame)
	if cacheable && fm.ok && fm.key == key {
		return fm.mat, noop, nil
	}

	m, err := toMat(frame, rep)
	if err != nil {
		return gocv.Mat{}, noop, err
	}
	if !cacheable {
		return m, func() { m.Close() }, nil
	}
	fm.reset()
	fm.key, fm.mat, fm.ok = key, m, true
	return m, noop, nil
}

func (fm *frameMemo) reset() {
	if fm.ok {
		fm.mat.Close()
	}
	fm.key, fm.mat, fm.ok = nil, gocv.Mat{}, false
}

// toMat converts a frame: gray frames to CV_8UC1, anything else to BGR CV_8UC3.
func toMat(frame image.Image, rep Representation) (gocv.Mat, error) {
	var (
		m   gocv.Mat
		err error
	)
	if rep == Gray {
		m, err = gocv.ImageGrayToMatGray(screen.ToGray(frame))
	} else {
		m, err = gocv.ImageToMatRGB(frame)
	}
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("vision: convert frame: %w", err)
	}
	return m, nil
}
