// Command ecmdecode reconstructs a CD-ROM disc image from an ECM stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/retrodecode/ecmdecode/archive"
	"github.com/retrodecode/ecmdecode/ecm"
	"github.com/retrodecode/ecmdecode/inputstream"
)

var (
	outputFile = flag.String("o", "", "output file path (default: input path with .ecm and outer compression stripped)")
	member     = flag.String("member", "", "internal path of the .ecm member when input is an archive (auto-detected if omitted)")
	verbose    = flag.Bool("v", false, "print progress to stderr")
	version    = flag.Bool("version", false, "print version and exit")
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reconstructs a CD-ROM disc image from an ECM stream.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s disc.ecm\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -o disc.bin disc.ecm.zst\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -member disc.ecm discs.7z\n", os.Args[0])
	}
	flag.Parse()

	if *version {
		fmt.Printf("ecmdecode version %s\n", appVersion)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one input path required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inputPath string) error {
	r, memberName, totalIn, err := openInput(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = r.Close() }()

	dr, err := inputstream.Open(r, memberName)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	defer func() { _ = dr.Close() }()

	outDir := filepath.Dir(inputPath)
	if archive.IsArchivePath(inputPath) {
		if p, perr := archive.ParsePath(inputPath); perr == nil && p != nil {
			outDir = filepath.Dir(p.ArchivePath)
		}
	}
	outPath := outputPath(filepath.Join(outDir, memberName))
	out, err := os.Create(outPath) //nolint:gosec // output path is user-specified by design
	if err != nil {
		return fmt.Errorf("create output file %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	var canceled atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			canceled.Store(true)
		}
	}()

	opts := ecm.Options{
		TotalIn: totalIn,
		Cancel:  canceled.Load,
	}
	if *verbose {
		opts.Progress = func(bytesIn, totalIn int64) {
			if totalIn > 0 {
				fmt.Fprintf(os.Stderr, "\r%d/%d bytes", bytesIn, totalIn)
			} else {
				fmt.Fprintf(os.Stderr, "\r%d bytes", bytesIn)
			}
		}
	}

	stats, err := ecm.Decode(dr, out, opts)
	if *verbose {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		_ = out.Close()
		_ = os.Remove(outPath)
		return fmt.Errorf("decode: %w", err)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "decoded %d records, %d bytes -> %s\n", stats.Records, stats.BytesOut, outPath)
	}
	return nil
}

// openInput resolves inputPath to a readable stream: a plain file, or an
// .ecm member located inside a .zip/.7z/.rar archive. It returns the
// reader, the member's own filename (used for outer-compression detection),
// and its size when known.
func openInput(inputPath string) (io.ReadCloser, string, int64, error) {
	if archive.IsArchivePath(inputPath) {
		return openArchiveMember(inputPath)
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, "", 0, fmt.Errorf("stat %s: %w", inputPath, err)
	}
	f, err := os.Open(inputPath) //nolint:gosec // input path is user-specified by design
	if err != nil {
		return nil, "", 0, fmt.Errorf("open %s: %w", inputPath, err)
	}
	return f, filepath.Base(inputPath), info.Size(), nil
}

type archiveMemberReader struct {
	io.ReadCloser
	arc archive.Archive
}

func (r *archiveMemberReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.arc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func openArchiveMember(inputPath string) (io.ReadCloser, string, int64, error) {
	p, err := archive.ParsePath(inputPath)
	if err != nil {
		return nil, "", 0, fmt.Errorf("parse archive path: %w", err)
	}
	if p == nil {
		return nil, "", 0, fmt.Errorf("%s is not a recognized archive path", inputPath)
	}

	arc, err := archive.Open(p.ArchivePath)
	if err != nil {
		return nil, "", 0, fmt.Errorf("open archive %s: %w", p.ArchivePath, err)
	}

	internalPath := p.InternalPath
	if *member != "" {
		internalPath = *member
	}
	if internalPath == "" {
		internalPath, err = archive.DetectECMFile(arc)
		if err != nil {
			_ = arc.Close()
			return nil, "", 0, fmt.Errorf("detect .ecm member: %w", err)
		}
	}

	reader, size, err := arc.Open(internalPath)
	if err != nil {
		_ = arc.Close()
		return nil, "", 0, fmt.Errorf("open member %s: %w", internalPath, err)
	}

	return &archiveMemberReader{ReadCloser: reader, arc: arc}, filepath.Base(internalPath), size, nil
}

// outputPath derives the default output path for the decoded image unless
// -o was given: it strips any outer compression suffix (.gz/.xz/.zst) and
// the trailing .ecm extension.
func outputPath(memberName string) string {
	if *outputFile != "" {
		return *outputFile
	}

	name := inputstream.StripOuterExt(memberName)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".ecm") {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
