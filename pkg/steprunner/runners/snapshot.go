package runners

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavsurve/browser-agent/pkg/driver"
	"github.com/arnavsurve/browser-agent/pkg/fileutil"
	"github.com/arnavsurve/browser-agent/pkg/steprunner"
	"github.com/arnavsurve/browser-agent/pkg/types"
	"github.com/disintegration/imaging"
)

const defaultJPEGQuality = 80

type SnapshotRunner struct {
	StepCtx types.ExecutionContext

	path     string
	format   driver.ImageFormat
	fullPage bool
	maxWidth int
	quality  int
	timeout  time.Duration
}

func init() {
	steprunner.RegisterRunnerFactory("snapshot", func(ctx types.ExecutionContext) (steprunner.StepRunner, error) {
		return &SnapshotRunner{StepCtx: ctx}, nil
	})
	steprunner.Describe("snapshot", "path (.png|.jpg|.jpeg) [full_page=true] [max_width=0] [quality=80] [timeout_ms]")
}

func (r *SnapshotRunner) Validate() error {
	args := steprunner.NewArgs(r.StepCtx.Step.Args)
	r.path = strings.TrimSpace(args.String("path"))
	r.fullPage = args.Bool("full_page", true)
	r.maxWidth = args.Int("max_width", 0)
	r.quality = args.Int("quality", defaultJPEGQuality)
	r.timeout = args.Timeout(0)
	if err := args.Err(); err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".png":
		r.format = driver.FormatPNG
	case ".jpg", ".jpeg":
		r.format = driver.FormatJPEG
	default:
		return &steprunner.FieldError{Field: "path", Reason: fmt.Sprintf("must end in .png, .jpg or .jpeg, got %q", r.path)}
	}
	if r.maxWidth < 0 {
		return &steprunner.FieldError{Field: "max_width", Reason: fmt.Sprintf("must not be negative, got %d", r.maxWidth)}
	}
	if r.quality < 1 || r.quality > 100 {
		return &steprunner.FieldError{Field: "quality", Reason: fmt.Sprintf("must be between 1 and 100, got %d", r.quality)}
	}
	return nil
}

func (r *SnapshotRunner) Timeout() time.Duration {
	return r.timeout
}

func (r *SnapshotRunner) Run(ctx context.Context) (*types.StepResult, error) {
	session, err := sessionOf(r.StepCtx)
	if err != nil {
		return nil, err
	}

	data, err := session.Screenshot(ctx, driver.ScreenshotOptions{
		FullPage: r.fullPage,
		Format:   r.format,
		Quality:  r.quality,
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	if err := fileutil.EnsureParentDir(r.path); err != nil {
		return nil, err
	}

	meta := map[string]any{"path": r.path}
	if r.maxWidth == 0 {
		if err := os.WriteFile(r.path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing screenshot: %w", err)
		}
		meta["bytes"] = len(data)
		return &types.StepResult{Meta: meta}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot: %w", err)
	}
	if img.Bounds().Dx() > r.maxWidth {
		img = imaging.Resize(img, r.maxWidth, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, r.path, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, fmt.Errorf("writing screenshot: %w", err)
	}
	meta["width"] = img.Bounds().Dx()
	meta["height"] = img.Bounds().Dy()
	return &types.StepResult{Meta: meta}, nil
}
