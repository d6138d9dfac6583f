// Command secsgml parses an SEC SGML filing and prints its metadata, or
// repackages it as a self-referential tar archive. It's a thin driver
// over the secsgml package, not part of that package's contract: it
// does file I/O, flag parsing, and logging, none of which the core
// parser is allowed to do.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/edgarlake/secsgml"
	"github.com/edgarlake/secsgml/cache"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "secsgml:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("secsgml", flag.ContinueOnError)
	noStandardize := fs.Bool("no-standardize", false, "preserve original header keys instead of canonicalizing them")
	noParallel := fs.Bool("no-parallel", false, "parse document spans sequentially")
	keepFilteredMetadata := fs.Bool("keep-filtered-metadata", false, "retain metadata for filtered-out documents")
	output := fs.String("output", "", "write a self-referential tar archive to this path instead of printing JSON")
	fs.StringVar(output, "o", "", "shorthand for --output")
	cacheDir := fs.String("cache-dir", "", "reuse parses across runs via an on-disk cache at this path")
	verify := fs.Bool("verify", false, "hash each input file's content (via ContentHash) and report which ones are byte-identical, instead of printing metadata")
	var filterTypes stringList
	fs.Var(&filterTypes, "filter-type", "restrict to documents whose type matches (repeatable; globs allowed)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] <sgml-file>\n       %s --verify [flags] <sgml-file>...\n\nParses an SEC SGML filing and prints its metadata as JSON, or\nwrites a tar archive with --output. --verify instead hashes one or\nmore filings and reports duplicates among them.\n\n", fs.Name(), fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("missing <sgml-file> argument")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := secsgml.DefaultParseOptions()
	opts.StandardizeMetadata = !*noStandardize
	opts.Parallel = !*noParallel
	opts.KeepFilteredMetadata = *keepFilteredMetadata
	opts.FilterDocumentTypes = filterTypes

	var c *cache.Cache
	if *cacheDir != "" {
		var err error
		c, err = cache.New(cache.WithDiskPath(*cacheDir), cache.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer c.Close()
	}

	parse := func(path string) (*secsgml.ParsedSubmission, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if c != nil {
			return c.Parse(data, opts)
		}
		return secsgml.Parse(data, opts)
	}

	if *verify {
		return runVerify(fs.Args(), parse)
	}

	if fs.NArg() > 1 {
		return fmt.Errorf("only one <sgml-file> is accepted without --verify, got %d", fs.NArg())
	}
	path := fs.Arg(0)

	sub, err := parse(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fmt.Printf("Format: %s\n", sub.Format)
	fmt.Printf("Documents: %d\n", len(sub.Documents))
	for i, doc := range sub.Metadata.Documents {
		fmt.Printf("  [%d] %s - %s (%d bytes)\n", i+1, orPlaceholder(doc.Type(), "?"), orPlaceholder(doc.Filename(), "unnamed"), doc.SizeBytes)
	}

	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("create %s: %w", *output, err)
		}
		defer f.Close()
		if err := secsgml.WriteTar(f, sub); err != nil {
			return fmt.Errorf("write tar: %w", err)
		}
		fmt.Printf("\nWrote tar to: %s\n", *output)
		return nil
	}

	out, err := json.MarshalIndent(sub.Metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	fmt.Printf("\nMetadata:\n%s\n", out)
	return nil
}

// runVerify fingerprints each of paths via ParsedSubmission.ContentHash
// and reports any set of two or more files that parsed to the same
// content hash, a cheap de-dup check for a corpus of filings that may
// contain repeats under different names.
func runVerify(paths []string, parse func(string) (*secsgml.ParsedSubmission, error)) error {
	byHash := make(map[uint64][]string)
	for _, path := range paths {
		sub, err := parse(path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		hash := sub.ContentHash()
		fmt.Printf("%016x  %s\n", hash, path)
		byHash[hash] = append(byHash[hash], path)
	}

	hashes := make([]uint64, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	dupesFound := false
	for _, h := range hashes {
		group := byHash[h]
		if len(group) < 2 {
			continue
		}
		if !dupesFound {
			fmt.Println("\nDuplicate content:")
			dupesFound = true
		}
		fmt.Printf("  %016x: %v\n", h, group)
	}
	if !dupesFound {
		fmt.Println("\nNo duplicate content found.")
	}
	return nil
}

func orPlaceholder(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// stringList implements flag.Value to collect repeated --filter-type
// flags into a slice.
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
