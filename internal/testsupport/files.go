package testsupport

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path string, contents []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteImage writes a small decodable image to path. The encoding follows the
// extension: .png produces PNG, anything else JPEG. seed varies the pixels so
// distinct fixtures have distinct bytes.
func WriteImage(t testing.TB, path string, width, height int, seed uint8) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) + seed, G: uint8(y) * seed, B: seed, A: 0xff})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = png.Encode(f, img)
	} else {
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back %s: %v", path, err)
	}
	return data
}

// CopyingThumbnailRunner stands in for the external thumbnail tool: it copies the
// first existing file argument to the last argument. Install it with
// thumbnail.SetRunnerForTests. failOn makes invocations for sources with that
// base name fail without output.
func CopyingThumbnailRunner(failOn ...string) func(context.Context, string, ...string) ([]byte, error) {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		if len(args) < 2 {
			return nil, errors.New("stub thumbnail: not enough arguments")
		}
		dst := args[len(args)-1]
		var src string
		for _, arg := range args[:len(args)-1] {
			if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
				src = arg
				break
			}
		}
		if src == "" {
			return []byte("no input file"), errors.New("exit status 1")
		}
		for _, base := range failOn {
			if filepath.Base(src) == base {
				return []byte(name + ": simulated failure"), errors.New("exit status 1")
			}
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return nil, fmt.Errorf("stub thumbnail write: %w", err)
		}
		return nil, nil
	}
}
