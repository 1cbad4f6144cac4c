package exports

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"

	"github.com/signintech/gopdf"

	"github.com/shifterapi/webscraping-go/internal"
)

// ScreenshotReport collects screenshots returned by the scraping API into
// one PDF, a page per capture. Safe for concurrent AddScreenshot calls.
type ScreenshotReport struct {
	pdf   *gopdf.GoPdf
	mutex sync.Mutex
	pages int
}

func NewScreenshotReport() *ScreenshotReport {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: *gopdf.PageSizeA4,
	})
	return &ScreenshotReport{pdf: pdf}
}

// AddScreenshot appends one capture as a page sized to the image. Bad
// image data is logged and skipped so one failed capture does not sink a
// whole batch.
func (r *ScreenshotReport) AddScreenshot(imgBytes []byte, sourceURL string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(imgBytes) == 0 {
		internal.WarningLog("Skipping empty screenshot for %s", sourceURL)
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		internal.WarningLog("Failed to decode screenshot for %s: %v", sourceURL, err)
		return nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		internal.WarningLog("Skipping screenshot with invalid dimensions %dx%d for %s", width, height, sourceURL)
		return nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		internal.WarningLog("Failed to convert screenshot to JPEG: %v (original format: %s)", err, format)
		return nil
	}

	imageHolder, err := gopdf.ImageHolderByBytes(buf.Bytes())
	if err != nil {
		internal.WarningLog("Failed to create PDF image holder: %v", err)
		return nil
	}

	pageSize := &gopdf.Rect{
		W: float64(width) * 72 / 128,
		H: float64(height) * 72 / 128,
	}

	r.pdf.AddPageWithOption(gopdf.PageOption{PageSize: pageSize})
	if err := r.pdf.ImageByHolder(imageHolder, 0, 0, nil); err != nil {
		internal.WarningLog("Failed to add screenshot to PDF: %v", err)
		return nil
	}

	r.pages++
	internal.InfoLog("Added screenshot page %d: format (%s), size (%dx%d), source (%s)", r.pages, format, width, height, sourceURL)
	return nil
}

// Pages reports how many screenshots made it into the report.
func (r *ScreenshotReport) Pages() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.pages
}

func (r *ScreenshotReport) Save(outputPath string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.pdf == nil {
		return errors.New("report not initialized")
	}
	if r.pages == 0 {
		return errors.New("no screenshots collected")
	}
	return r.pdf.WritePdf(outputPath)
}

func (r *ScreenshotReport) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pdf != nil {
		r.pdf.Close()
		r.pdf = nil
	}
}
