package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"photoreel/internal/album"
	"photoreel/internal/logging"
)

// Generator writes a scaled WebP rendition of src to dst.
type Generator interface {
	Generate(ctx context.Context, src, dst string) error
}

// CommandRunner executes name with args and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

var runCommand CommandRunner = defaultCommandRunner

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

// Options configures the external tool invocation.
type Options struct {
	Tool         string
	ScalePercent int
	Quality      int
	Verify       bool
	Timeout      time.Duration
}

// CLI runs an external image tool.
type CLI struct {
	opts   Options
	logger *slog.Logger
}

// NewCLI constructs a CLI generator. Zero option values fall back to
// magick at 50% scale and quality 85.
func NewCLI(opts Options, logger *slog.Logger) *CLI {
	if strings.TrimSpace(opts.Tool) == "" {
		opts.Tool = "magick"
	}
	if opts.ScalePercent <= 0 {
		opts.ScalePercent = 50
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}
	return &CLI{opts: opts, logger: logging.NewComponentLogger(logger, "thumbnail")}
}

// Binary returns the executable name invoked by Generate.
func (c *CLI) Binary() string {
	return c.opts.Tool
}

// Generate runs the tool for one photo. Any failure removes dst and is tagged
// with album.ErrToolInvocation; src is never modified.
func (c *CLI) Generate(ctx context.Context, src, dst string) error {
	// magick takes a percentage; only cwebp and verification need source pixel sizes.
	var targetW, targetH int
	if c.opts.Tool == "cwebp" || c.opts.Verify {
		width, height, err := sourceDimensions(src)
		switch {
		case err == nil:
			targetW, targetH = scaled(width, c.opts.ScalePercent), scaled(height, c.opts.ScalePercent)
		case c.opts.Tool == "cwebp":
			return album.Wrap(album.ErrToolInvocation, "", "thumbnail", "read source "+filepath.Base(src), err)
		}
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	args := c.args(src, dst, targetW, targetH)
	started := time.Now()
	output, err := runCommand(ctx, c.opts.Tool, args...)
	if err != nil {
		_ = os.Remove(dst)
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return album.Wrap(album.ErrToolInvocation, "", "thumbnail", c.opts.Tool+" "+filepath.Base(src), err)
	}

	info, err := os.Stat(dst)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(dst)
		if err == nil {
			err = errors.New("empty output")
		}
		return album.Wrap(album.ErrToolInvocation, "", "thumbnail", c.opts.Tool+" produced no output for "+filepath.Base(src), err)
	}

	if c.opts.Verify {
		if err := c.verify(dst, targetW, targetH); err != nil {
			_ = os.Remove(dst)
			return err
		}
	}

	c.logger.Debug("thumbnail generated",
		logging.Source(filepath.Base(src)),
		logging.String("output", filepath.Base(dst)),
		logging.Int("width", targetW),
		logging.Int("height", targetH),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (c *CLI) args(src, dst string, width, height int) []string {
	quality := strconv.Itoa(c.opts.Quality)
	switch c.opts.Tool {
	case "cwebp":
		return []string{"-quiet", "-q", quality, "-resize", strconv.Itoa(width), strconv.Itoa(height), src, "-o", dst}
	default:
		return []string{src, "-resize", strconv.Itoa(c.opts.ScalePercent) + "%", "-quality", quality, dst}
	}
}

// verify decodes the generated file. Unreadable output is fatal; a size that
// differs from the requested scale is only logged since tools round differently.
// A zero wanted size skips the comparison.
func (c *CLI) verify(dst string, wantW, wantH int) error {
	img, err := imaging.Open(dst)
	if err != nil {
		return album.Wrap(album.ErrToolInvocation, "", "thumbnail", "verify "+filepath.Base(dst), err)
	}
	bounds := img.Bounds()
	if wantW == 0 || wantH == 0 {
		return nil
	}
	if abs(bounds.Dx()-wantW) > 1 || abs(bounds.Dy()-wantH) > 1 {
		logging.WarnWithContext(c.logger, "thumbnail size differs from requested scale", "thumbnail_size_mismatch",
			logging.String("output", filepath.Base(dst)),
			logging.Int("width", bounds.Dx()),
			logging.Int("height", bounds.Dy()),
			logging.Int("want_width", wantW),
			logging.Int("want_height", wantH),
			logging.String(logging.FieldImpact, "gallery thumbnail may load slower or look softer"),
			logging.String(logging.FieldErrorHint, "check the thumbnail tool version"),
		)
	}
	return nil
}

func sourceDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func scaled(v, percent int) int {
	out := (v*percent + 50) / 100
	if out < 1 {
		return 1
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
