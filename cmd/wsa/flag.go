package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/shifterapi/webscraping-go/internal"
)

type Flag struct {
	APIKey        string
	URL           string
	URLs          []string
	RenderJS      bool
	Country       string
	Device        string
	ProxyType     string
	Session       string
	ScreenshotPDF string
	ExtractLinks  bool
	OutputDir     string
	MaxConcurrent int
	Timeout       int
}

func parseFlag() *Flag {
	help := flag.Bool("h", false, "Display this help message and exit")
	flag.BoolVar(help, "help", false, "Alias for -h")
	apiKey := flag.String("k", "", `WebScraping API key (falls back to the WSA_API_KEY environment variable)`)
	url := flag.String("u", "", `Target page URL (e.g. "http://httpbin.org/headers")`)
	batchFile := flag.String("b", "", `Path to file containing multiple URLs (one per line)`)
	renderJS := flag.Bool("render", false, `Execute JavaScript remotely before the page is returned`)
	country := flag.String("country", "", `Proxy exit country as a two letter code (e.g. "us")`)
	device := flag.String("device", "", `Emulated device: "desktop" or "mobile"`)
	proxyType := flag.String("proxy", "", `Proxy pool: "datacenter" or "residential"`)
	session := flag.String("session", "", `Session id to keep the same proxy across requests`)
	screenshot := flag.String("screenshot", "", `Collect page screenshots into a single PDF at this path (implies -render)`)
	links := flag.Bool("links", false, `Print the absolute links found on each page instead of saving the body`)
	outputDir := flag.String("o", ".", `Directory for saved page bodies`)
	maxConcurrent := flag.Int("x", 4, `Maximum concurrent requests. Higher values may exhaust the plan's concurrency limit`)
	timeout := flag.Int("t", 60, `Request timeout in seconds (rendering can be slow, keep this generous)`)

	flag.Parse()

	if *help {
		fmt.Println("wsa - fetch pages through the WebScraping API")
		fmt.Println("Usage: `wsa -k <key> -u <url>` or `wsa -k <key> -b <file>`")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Fetch one rendered page:      -u <URL> -render")
		fmt.Println("  Fetch through a US proxy:     -u <URL> -country us -proxy residential")
		fmt.Println("  Screenshot a batch into PDF:  -b urls.txt -screenshot report.pdf")
		fmt.Println("  List links on a page:         -u <URL> -links")
		os.Exit(0)
	}

	if *apiKey == "" {
		*apiKey = os.Getenv("WSA_API_KEY")
	}
	if *apiKey == "" {
		internal.ErrorLog("API key is required. Use -k or set WSA_API_KEY")
		os.Exit(1)
	}

	if *url == "" && *batchFile == "" {
		fmt.Println("Either URL or batch file is required. Use -u or -b flag")
		os.Exit(1)
	}

	if *url != "" && *batchFile != "" {
		internal.ErrorLog("Cannot use both -u and -b at the same time")
		os.Exit(1)
	}

	if *screenshot != "" && *links {
		internal.ErrorLog("Cannot use both -screenshot and -links at the same time")
		os.Exit(1)
	}

	if *maxConcurrent < 1 {
		internal.ErrorLog("Concurrency value (-x) must be >= 1")
		os.Exit(1)
	}

	if *timeout < 1 {
		internal.ErrorLog("Timeout value (-t) must be >= 1")
		os.Exit(1)
	}

	var urls []string
	if *batchFile != "" {
		file, err := os.Open(*batchFile)
		if err != nil {
			internal.ErrorLog("Failed to open batch file: %v", err)
			os.Exit(1)
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				urls = append(urls, line)
			}
		}

		if err := scanner.Err(); err != nil {
			internal.ErrorLog("Error reading batch file: %v", err)
			os.Exit(1)
		}

		if len(urls) == 0 {
			internal.ErrorLog("Batch file is empty or contains no valid URLs")
			os.Exit(1)
		}
	}

	return &Flag{
		APIKey:        *apiKey,
		URL:           *url,
		URLs:          urls,
		RenderJS:      *renderJS,
		Country:       *country,
		Device:        *device,
		ProxyType:     *proxyType,
		Session:       *session,
		ScreenshotPDF: *screenshot,
		ExtractLinks:  *links,
		OutputDir:     *outputDir,
		MaxConcurrent: *maxConcurrent,
		Timeout:       *timeout,
	}
}
