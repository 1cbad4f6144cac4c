package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	webscrapingapi "github.com/shifterapi/webscraping-go"
	"github.com/shifterapi/webscraping-go/internal"
	"github.com/shifterapi/webscraping-go/internal/exports"
)

type fetchProcess struct {
	wsa    *webscrapingapi.WebScrapingAPI
	report *exports.ScreenshotReport
}

func newFetchProcess(flags *Flag) *fetchProcess {
	wsa := webscrapingapi.NewWithOptions(flags.APIKey, &webscrapingapi.ClientOptions{
		Timeout:   time.Duration(flags.Timeout) * time.Second,
		UserAgent: "wsa-cli/1.0",
	})

	fp := &fetchProcess{wsa: wsa}
	if flags.ScreenshotPDF != "" {
		fp.report = exports.NewScreenshotReport()
	}
	return fp
}

func (fp *fetchProcess) close() {
	if fp.report != nil {
		fp.report.Close()
	}
	fp.wsa.Close()
}

func (fp *fetchProcess) run(flags *Flag) error {
	urls := flags.URLs
	if flags.URL != "" {
		urls = []string{flags.URL}
	}

	if !flags.ExtractLinks && flags.ScreenshotPDF == "" {
		if err := os.MkdirAll(flags.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	internal.InfoLog("Fetching %d URLs with %d max workers", len(urls), flags.MaxConcurrent)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(flags.MaxConcurrent)

	for _, rawURL := range urls {
		rawURL := rawURL
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fp.processSingleURL(ctx, flags, rawURL)
			}
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error processing URLs: %w", err)
	}

	if fp.report != nil {
		if err := fp.report.Save(flags.ScreenshotPDF); err != nil {
			return fmt.Errorf("failed to save screenshot report: %w", err)
		}
		internal.SuccessLog("Saved %d screenshot pages to %s", fp.report.Pages(), flags.ScreenshotPDF)
	}
	return nil
}

func (fp *fetchProcess) processSingleURL(ctx context.Context, flags *Flag, rawURL string) error {
	qb := webscrapingapi.NewQueryBuilder().URL(rawURL)
	if flags.RenderJS {
		qb.RenderJS("1")
	}
	if flags.Country != "" {
		qb.Country(flags.Country)
	}
	if flags.Device != "" {
		qb.Device(flags.Device)
	}
	if flags.ProxyType != "" {
		qb.ProxyType(flags.ProxyType)
	}
	if flags.Session != "" {
		qb.Session(flags.Session)
	}
	if fp.report != nil {
		qb.RenderJS("1").Screenshot("1")
	}

	response, err := fp.wsa.Get(ctx, qb)
	if err != nil {
		internal.ErrorLog("Failed to fetch %s: %s", rawURL, err.Error())
		return err
	}
	defer response.Body.Close()

	if failed, reason := remoteStatus(response); failed {
		internal.WarningLog("%s: %s", rawURL, reason)
	}

	if fp.report != nil {
		imgBytes, err := io.ReadAll(response.Body)
		if err != nil {
			return fmt.Errorf("failed to read screenshot body: %w", err)
		}
		return fp.report.AddScreenshot(imgBytes, rawURL)
	}

	if flags.ExtractLinks {
		links, err := collectLinks(response.Body, response.Header().Get("Content-Type"), rawURL)
		if err != nil {
			return err
		}
		for _, link := range links {
			fmt.Println(link)
		}
		internal.InfoLog("Found %d links on %s", len(links), rawURL)
		return nil
	}

	return saveBody(flags.OutputDir, rawURL, response.Body)
}

func remoteStatus(resp *resty.Response) (bool, string) {
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return true, "Invalid API key (401)"
	case http.StatusPaymentRequired:
		return true, "Plan quota exhausted (402)"
	case http.StatusUnprocessableEntity:
		return true, "Missing or invalid request parameters (422)"
	case http.StatusTooManyRequests:
		return true, "Concurrency limit reached (429)"
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return true, fmt.Sprintf("Remote scrape failed (%d)", resp.StatusCode())
	}
	return false, "Status OK"
}

func collectLinks(body io.Reader, contentType, rawURL string) ([]string, error) {
	bodyReader, err := charset.NewReader(body, contentType)
	if err != nil {
		internal.ErrorLog("Failed to create charset reader: %s", err.Error())
		return nil, err
	}

	document, err := goquery.NewDocumentFromReader(bodyReader)
	if err != nil {
		internal.ErrorLog("Failed to parse HTML document: %s", err.Error())
		return nil, err
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	var links []string
	document.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}

func saveBody(outputDir, rawURL string, body io.Reader) error {
	outPath := filepath.Join(outputDir, outputFileName(rawURL))

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}

	internal.InfoLog("Wrote %d bytes from %s to %s", written, rawURL, outPath)
	return nil
}

// outputFileName flattens a page URL into a single safe file name,
// e.g. "http://httpbin.org/headers" becomes "httpbin.org_headers.html".
func outputFileName(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "page.html"
	}

	name := parsed.Host
	if p := strings.Trim(parsed.Path, "/"); p != "" {
		name += "_" + p
	}

	replacer := strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", "=", "_", "%", "_")
	return replacer.Replace(name) + ".html"
}
