package debug

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

func fixedCapture(t *testing.T, dir, format string) *ScreenshotCapture {
	t.Helper()
	sc, err := NewScreenshotCapture(dir, "skinview", format)
	if err != nil {
		t.Fatal(err)
	}
	sc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	return sc
}

func TestNewScreenshotCaptureFormat(t *testing.T) {
	if _, err := NewScreenshotCapture("", "x", "gif"); err == nil {
		t.Error("expected gif to be rejected")
	}
	if _, err := NewScreenshotCapture("", "x", "PNG"); err != nil {
		t.Errorf("PNG should be accepted: %v", err)
	}
}

func TestGenerateFilename(t *testing.T) {
	sc := fixedCapture(t, "shots", "bmp")
	want := filepath.Join("shots", "skinview_2024-05-06_07-08-09.000.bmp")
	if got := sc.GenerateFilename(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCaptureFromPixelsSizeMismatch(t *testing.T) {
	sc := fixedCapture(t, t.TempDir(), "png")
	if _, err := sc.CaptureFromPixels(make([]byte, 10), 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureFromPixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sc := fixedCapture(t, dir, "bmp")

	// bottom row red, top row blue as OpenGL reads them
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := sc.CaptureFromPixels(pixels, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, ".bmp") {
		t.Errorf("unexpected path %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds: got %v", img.Bounds())
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("top-left should be blue, got r=%d b=%d", r, b)
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r == 0 || b != 0 {
		t.Errorf("bottom-left should be red, got r=%d b=%d", r, b)
	}
}
