// Package main - inspect.go
//
// Offline diagnosis of a saved screenshot. Runs every checklist anchor against
// the image, logs which ones hit and which state the resolver would pick, and
// writes result.png with the hits boxed.
//
// Usage:
//  1. Save a screenshot of the client (full screen or browser viewport)
//  2. Run: charon -inspect shot.png [-ocr x0,y0,x1,y1 [-expect "Luxcavation"]]
//  3. Check result.png and Debug.log
//
// With -expect the run fails when the OCR text does not read as the expected
// string within ocr.max_distance edits.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"github.com/YusufSemihCan/Charon-LCBot/internal/app"
	"github.com/YusufSemihCan/Charon-LCBot/internal/config"
	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
	"github.com/YusufSemihCan/Charon-LCBot/internal/navigation"
	"github.com/YusufSemihCan/Charon-LCBot/internal/screen"
	"github.com/YusufSemihCan/Charon-LCBot/internal/vision"
)

const resultPath = "result.png"

var errTextMismatch = errors.New("OCR text mismatch")

// Inspect classifies the screenshot at path. ocrArea, when non-empty, is a
// "x0,y0,x1,y1" region whose text is read and logged. expect, when non-empty,
// is compared against that text after result.png is written.
func Inspect(cfg config.Config, path, ocrArea, expect string) error {
	logging.Info("=== Inspect Started ===")
	if expect != "" && ocrArea == "" {
		return errors.New("-expect needs an -ocr region")
	}

	shot, err := screen.LoadStatic(path)
	if err != nil {
		return err
	}
	frame, err := shot.CaptureFrame(image.Rectangle{})
	if err != nil {
		return err
	}
	info := screen.NewInfo(shot.Bounds())
	logging.Info("Image loaded: %dx%d (scale %.3f)", info.Width, info.Height, info.ScaleFactor())

	opts, err := app.LocatorOptions(cfg, info.ScaleFactor())
	if err != nil {
		return err
	}
	loc := vision.NewLocator(opts...)
	defer loc.Close()

	dir, err := cfg.ResolveAssetsDir(".")
	if err != nil {
		return err
	}
	if _, err := loc.IndexTemplates(dir); err != nil {
		return err
	}

	resolver := navigation.NewResolver(shot, loc, navigation.DefaultChecklist(), cfg.Vision.AnchorThreshold)
	hits, err := resolver.Survey(frame)
	if err != nil {
		return err
	}
	for _, h := range hits {
		logging.Info("Anchor %s (%s) at %v", h.Anchor.Template, h.Anchor.State, h.Rect)
	}
	state, err := resolver.Resolve()
	if err != nil {
		return err
	}
	logging.Info("Resolved state: %s (%d anchors hit)", state, len(hits))

	var text string
	if ocrArea != "" {
		var area image.Rectangle
		if _, err := fmt.Sscanf(ocrArea, "%d,%d,%d,%d", &area.Min.X, &area.Min.Y, &area.Max.X, &area.Max.Y); err != nil {
			return fmt.Errorf("bad -ocr region %q: %w", ocrArea, err)
		}
		reader := vision.NewReader(cfg.OCR.Language, cfg.OCR.TessData)
		defer reader.Close()
		text, err = reader.Read(frame, area.Canon())
		if err != nil {
			return err
		}
		logging.Info("OCR %v: %q", area, text)
	}

	if err := drawInspection(frame, state, hits, text); err != nil {
		return err
	}
	if st, err := os.Stat(resultPath); err == nil {
		logging.Info("%s written (%d bytes)", resultPath, st.Size())
	}
	if err := checkExpected(text, expect, cfg.OCR.MaxDistance); err != nil {
		return err
	}
	logging.Info("=== Inspect Completed ===")
	return nil
}

// checkExpected fails when text does not read as expect. An empty expect
// always passes.
func checkExpected(text, expect string, maxDistance int) error {
	if expect == "" {
		return nil
	}
	if !vision.TextMatches(text, expect, maxDistance) {
		logging.Warn("[MISMATCH] OCR read %q, expected %q (max distance %d)", text, expect, maxDistance)
		return fmt.Errorf("%w: read %q, expected %q", errTextMismatch, text, expect)
	}
	logging.Info("OCR text matches %q", expect)
	return nil
}

// drawInspection boxes every hit, green for the one that decided the state.
func drawInspection(frame *image.RGBA, state navigation.State, hits []navigation.Hit, text string) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return err
	}
	defer mat.Close()

	green := color.RGBA{0, 255, 0, 255}
	yellow := color.RGBA{255, 255, 0, 255}
	white := color.RGBA{255, 255, 255, 255}

	decided := false
	for _, h := range hits {
		c := yellow
		if !decided && h.Anchor.State == state {
			c, decided = green, true
		}
		gocv.Rectangle(&mat, h.Rect, c, 2)
		gocv.PutText(&mat, string(h.Anchor.Template), image.Pt(h.Rect.Min.X, h.Rect.Min.Y-6),
			gocv.FontHersheyPlain, 1.0, c, 1)
	}

	gocv.PutText(&mat, fmt.Sprintf("State: %s", state), image.Pt(10, 30),
		gocv.FontHersheyPlain, 2.0, white, 2)
	if text != "" {
		gocv.PutText(&mat, fmt.Sprintf("OCR: %s", text), image.Pt(10, 60),
			gocv.FontHersheyPlain, 1.2, white, 1)
	}

	if !gocv.IMWrite(resultPath, mat) {
		return fmt.Errorf("write %s failed", resultPath)
	}
	return nil
}
