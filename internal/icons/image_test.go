package icons

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rook-computer/crhashtag/internal/card"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCatalogFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "c.txt", ".hidden.png", "d.webp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	catalog, err := LoadCatalog(dir)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	want := []string{"a.jpg", "b.PNG", "d.webp"}
	if len(catalog.Names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, catalog.Names)
	}
	for i := range want {
		if catalog.Names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, catalog.Names)
		}
	}
}

func TestLoadAndResize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wide.png")
	writePNG(t, path, 200, 100)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	small := Resize(img, card.Size{W: 70, H: 70})
	if small.Bounds().Dx() != 70 || small.Bounds().Dy() != 35 {
		t.Errorf("Expected 70x35, got %v", small.Bounds())
	}

	tall := Resize(image.NewNRGBA(image.Rect(0, 0, 100, 200)), card.Size{W: 70, H: 70})
	if tall.Bounds().Dx() != 35 || tall.Bounds().Dy() != 70 {
		t.Errorf("Expected 35x70, got %v", tall.Bounds())
	}

	if Resize(img, card.Size{}) != nil {
		t.Error("Expected nil for empty box")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, card.ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound, got %v", err)
	}

	corrupt := filepath.Join(dir, "corrupt.png")
	if err := os.WriteFile(corrupt, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(corrupt); !errors.Is(err, card.ErrAssetDecode) {
		t.Errorf("Expected ErrAssetDecode, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "star.png"), 10, 10)
	catalog := Catalog{Dir: dir, Names: []string{"star.png"}}

	img, err := catalog.Resolve(card.Icon{Source: "star.png"})
	if err != nil || img.Bounds().Dx() != 10 {
		t.Fatalf("Expected catalog icon, got %v (%v)", img, err)
	}

	qr, err := catalog.Resolve(card.Icon{Source: "qr:https://example.com/#tag"})
	if err != nil {
		t.Fatalf("Resolve qr: %v", err)
	}
	if qr.Bounds().Dx() != defaultQRSizePx {
		t.Errorf("Expected %dpx QR, got %v", defaultQRSizePx, qr.Bounds())
	}

	if _, err := catalog.Resolve(card.Icon{Source: "../star.png"}); !errors.Is(err, card.ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound for traversal, got %v", err)
	}

	preset := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	if got, _ := catalog.Resolve(card.Icon{Source: "ignored.png", Image: preset}); got != image.Image(preset) {
		t.Error("Expected already decoded image to be returned as is")
	}
}

func TestQREmptyPayload(t *testing.T) {
	if _, err := QR("", 100); !errors.Is(err, card.ErrAssetDecode) {
		t.Errorf("Expected ErrAssetDecode, got %v", err)
	}
}
