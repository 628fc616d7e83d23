package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// maxMatches caps FindAll results.
const maxMatches = 32

// Canny thresholds for the edge pass.
const (
	cannyLow  = 100
	cannyHigh = 200
)

// accept turns a correlation peak into a match rectangle when it reaches
// threshold. NaN scores (flat templates) never match.
func accept(score float64, loc, size image.Point, threshold float64) (image.Rectangle, bool) {
	if !(score >= threshold) {
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: loc, Max: loc.Add(size)}, true
}

// correlate runs TM_CCOEFF_NORMED and extracts up to limit peaks, blanking a
// template-sized neighbourhood around each peak so the same control is not
// reported twice. It also returns the best score seen.
func correlate(frame, tmpl gocv.Mat, threshold float64, limit int) ([]image.Rectangle, float64) {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(frame, tmpl, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return nil, 0
	}

	size := image.Point{X: tmpl.Cols(), Y: tmpl.Rows()}
	var hits []image.Rectangle
	var best float64
	for len(hits) < limit {
		_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
		if len(hits) == 0 {
			best = float64(maxVal)
		}
		r, ok := accept(float64(maxVal), maxLoc, size, threshold)
		if !ok {
			break
		}
		hits = append(hits, r)
		if len(hits) < limit {
			suppress(&result, maxLoc, size)
		}
	}
	return hits, best
}

// suppress overwrites the neighbourhood of loc in a correlation map with -1.
func suppress(result *gocv.Mat, loc, size image.Point) {
	bounds := image.Rect(0, 0, result.Cols(), result.Rows())
	r := image.Rect(loc.X-size.X/2, loc.Y-size.Y/2, loc.X+size.X/2+1, loc.Y+size.Y/2+1).Intersect(bounds)
	if r.Empty() {
		return
	}
	roi := result.Region(r)
	roi.SetTo(gocv.NewScalar(-1, 0, 0, 0))
	roi.Close()
}

// correlateEdges correlates Canny edge maps of gray versions of both inputs.
func correlateEdges(frame, tmpl gocv.Mat, threshold float64, limit int) ([]image.Rectangle, float64) {
	frameGray := grayOf(frame)
	defer frameGray.Close()
	tmplGray := grayOf(tmpl)
	defer tmplGray.Close()

	frameEdges := gocv.NewMat()
	defer frameEdges.Close()
	tmplEdges := gocv.NewMat()
	defer tmplEdges.Close()

	gocv.Canny(frameGray, &frameEdges, cannyLow, cannyHigh)
	gocv.Canny(tmplGray, &tmplEdges, cannyLow, cannyHigh)
	return correlate(frameEdges, tmplEdges, threshold, limit)
}

// grayOf returns a new single-channel copy of m.
func grayOf(m gocv.Mat) gocv.Mat {
	if m.Channels() == 1 {
		return m.Clone()
	}
	out := gocv.NewMat()
	gocv.CvtColor(m, &out, gocv.ColorBGRToGray)
	return out
}
