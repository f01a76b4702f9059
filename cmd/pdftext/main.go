// Command pdftext extracts text from PDF files (spec §6's CLI surface).
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	pdf "github.com/dcarden/pdftext"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "extract":
		err = runExtract(args)
	case "info":
		err = runInfo(args)
	case "bench":
		err = runBench(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "pdftext: unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pdftext: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: pdftext <command> [flags] file.pdf

commands:
  extract   extract text from a PDF
  info      print page count and per-page dimensions
  bench     time extraction across all pages
  help      print this message

extract flags:
  -o FILE            write output to FILE instead of stdout
  -p RANGES          comma-separated page numbers or A-B ranges (default: all)
  --reading-order    use structure-tree/layout reading order instead of raster order
  --sequential       extract pages one at a time instead of concurrently
  --json             emit {"pages":[{"page":N,"text":"..."}]}
  --strict           abort on the first error (pdf.Strict())
  --permissive       tolerate all recoverable errors (pdf.Permissive())
`)
}

// errorConfigFromFlags resolves -strict/-permissive to an ErrorConfig,
// defaulting to pdf.Default() when neither is set.
func errorConfigFromFlags(strict, permissive bool) pdf.ErrorConfig {
	switch {
	case strict:
		return pdf.Strict()
	case permissive:
		return pdf.Permissive()
	default:
		return pdf.Default()
	}
}

// parsePageRanges parses spec §6's "-p RANGES" grammar: a comma-separated
// list of page numbers or A-B ranges. An empty string selects every page
// from 1 to max.
func parsePageRanges(s string, max int) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		pages := make([]int, max)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	var pages []int
	add := func(n int) {
		if !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '-'); i > 0 {
			lo, err1 := strconv.Atoi(strings.TrimSpace(part[:i]))
			hi, err2 := strconv.Atoi(strings.TrimSpace(part[i+1:]))
			if err1 != nil || err2 != nil || lo > hi {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			for n := lo; n <= hi; n++ {
				add(n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		add(n)
	}
	sort.Ints(pages)
	return pages, nil
}

// runConcurrent runs fn(i, pages[i]) across a worker pool of at most
// runtime.NumCPU() goroutines and no more goroutines than pages.
func runConcurrent(pages []int, fn func(i, num int) error) error {
	workers := runtime.NumCPU()
	if workers > len(pages) {
		workers = len(pages)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	errs := make([]error, len(pages))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = fn(i, pages[i])
			}
		}()
	}
	for i := range pages {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type pageResult struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outPath := fs.String("o", "", "write output to FILE instead of stdout")
	pageFlag := fs.String("p", "", "comma-separated page numbers or A-B ranges")
	readingOrder := fs.Bool("reading-order", false, "use reading order instead of raster order")
	sequential := fs.Bool("sequential", false, "extract pages one at a time")
	jsonOut := fs.Bool("json", false, `emit {"pages":[{"page":N,"text":"..."}]}`)
	strict := fs.Bool("strict", false, "abort on the first error")
	permissive := fs.Bool("permissive", false, "tolerate all recoverable errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("extract requires exactly one file argument")
	}

	doc, err := pdf.OpenDocument(fs.Arg(0), errorConfigFromFlags(*strict, *permissive))
	if err != nil {
		return err
	}
	defer doc.Close()

	pages, err := parsePageRanges(*pageFlag, doc.PageCount())
	if err != nil {
		return err
	}

	extractOne := func(num int) (string, error) {
		if *readingOrder {
			return doc.ExtractPageReadingOrder(num)
		}
		return doc.ExtractPageText(num)
	}

	results := make([]pageResult, len(pages))
	fill := func(i, num int) error {
		text, err := extractOne(num)
		if err != nil {
			return fmt.Errorf("page %d: %w", num, err)
		}
		results[i] = pageResult{Page: num, Text: text}
		return nil
	}

	if *sequential {
		for i, num := range pages {
			if err := fill(i, num); err != nil {
				return err
			}
		}
	} else if err := runConcurrent(pages, fill); err != nil {
		return err
	}

	w := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	if *jsonOut {
		return json.NewEncoder(bw).Encode(struct {
			Pages []pageResult `json:"pages"`
		}{Pages: results})
	}
	for _, r := range results {
		bw.WriteString(r.Text)
		if !strings.HasSuffix(r.Text, "\n") {
			bw.WriteByte('\n')
		}
	}
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info requires exactly one file argument")
	}

	doc, err := pdf.OpenDocument(fs.Arg(0), pdf.Default())
	if err != nil {
		return err
	}
	defer doc.Close()

	n := doc.PageCount()
	fmt.Printf("pages: %d\n", n)
	for i := 1; i <= n; i++ {
		info, err := doc.PageInfo(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "page %d: %v\n", i, err)
			continue
		}
		fmt.Printf("page %d: %.2fx%.2f rotation=%d\n", info.Page, info.Width, info.Height, info.Rotation)
	}
	return nil
}

func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	sequential := fs.Bool("sequential", false, "extract pages one at a time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("bench requires exactly one file argument")
	}

	doc, err := pdf.OpenDocument(fs.Arg(0), pdf.Default())
	if err != nil {
		return err
	}
	defer doc.Close()

	n := doc.PageCount()
	start := time.Now()
	totalBytes := 0

	if *sequential {
		for i := 1; i <= n; i++ {
			text, err := doc.ExtractPageText(i)
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}
			totalBytes += len(text)
		}
	} else {
		pages := make([]int, n)
		for i := range pages {
			pages[i] = i + 1
		}
		lens := make([]int, n)
		err := runConcurrent(pages, func(i, num int) error {
			text, err := doc.ExtractPageText(num)
			if err != nil {
				return fmt.Errorf("page %d: %w", num, err)
			}
			lens[i] = len(text)
			return nil
		})
		if err != nil {
			return err
		}
		for _, l := range lens {
			totalBytes += l
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("pages=%d bytes=%d elapsed=%s\n", n, totalBytes, elapsed)
	return nil
}
