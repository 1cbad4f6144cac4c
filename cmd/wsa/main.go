package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shifterapi/webscraping-go/internal"
)

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wsa -k <key> -u <url>")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	startTime := time.Now()
	flags := parseFlag()

	process := newFetchProcess(flags)
	defer process.close()

	if err := process.run(flags); err != nil {
		internal.ErrorLog("Something went wrong : %s", err.Error())
		return
	}
	internal.SuccessLog("Program completed in %v", time.Since(startTime))
}
