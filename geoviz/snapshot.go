package geoviz

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/hopus-ml/hopus/pkg/errors"
	"github.com/hopus-ml/hopus/pkg/log"
)

// SnapshotOptions configures Snapshot.
type SnapshotOptions struct {
	// Wait is how long tiles get to load before the screenshot.
	Wait time.Duration
	// Timeout bounds the whole browser session.
	Timeout   time.Duration
	Width     int64
	Height    int64
	NoSandbox bool
}

func (o SnapshotOptions) withDefaults() SnapshotOptions {
	if o.Wait == 0 {
		o.Wait = 2 * time.Second
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Width == 0 {
		o.Width = 1280
	}
	if o.Height == 0 {
		o.Height = 960
	}
	return o
}

// Snapshot opens the rendered map in headless Chrome and saves a PNG
// screenshot of it. It needs a Chrome or Chromium binary on the PATH.
func Snapshot(ctx context.Context, htmlPath, pngPath string, opts SnapshotOptions) error {
	opts = opts.withDefaults()
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", htmlPath)
	}
	if _, err := os.Stat(abs); err != nil {
		return errors.Wrapf(err, "stat %s", abs)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(int(opts.Width), int(opts.Height)),
	)
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitVisible("#map", chromedp.ByID),
		chromedp.Sleep(opts.Wait),
		chromedp.CaptureScreenshot(&buf),
	); err != nil {
		return errors.Wrap(err, "capture map screenshot")
	}
	if err := os.WriteFile(pngPath, buf, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", pngPath)
	}
	log.GetLoggerWithName("geoviz").Info("Wrote map snapshot", log.PathKey, pngPath, "bytes", len(buf))
	return nil
}
