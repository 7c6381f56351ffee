// Command i18nbackend loads, translates and audits translation namespaces.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ZaguanLabs/i18nbackend"
	"github.com/ZaguanLabs/i18nbackend/internal/server"
	"github.com/ZaguanLabs/i18nbackend/processor"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = i18nbackend.Version
	commit    = i18nbackend.GitCommit
	buildDate = i18nbackend.BuildDate
)

const usageText = `Usage: i18nbackend <command> [flags] [args]

Commands:
  read    <lng> <ns>          Print a namespace as the backend resolves it
  diff    <old> <new>         Compare two resource files
  diff    -lang <lng> <ns>    List keys the language lacks compared to the source
  scan    [files...]          Report data-i18n keys missing from loaded namespaces
  render  -lang <lng> <file>  Localize data-i18n markup
  serve                       Serve namespaces over HTTP
  version                     Show version

Run "i18nbackend <command> -h" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return errors.New("command required")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version", "-version", "--version":
		return runVersion(stdout)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usageText)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	switch cmd {
	case "read":
		return runRead(ctx, cfg, rest, stdout, stderr)
	case "diff":
		return runDiff(ctx, cfg, rest, stdout, stderr)
	case "scan":
		return runScan(ctx, cfg, rest, stdin, stdout, stderr)
	case "render":
		return runRender(ctx, cfg, rest, stdin, stdout, stderr)
	case "serve":
		return runServe(ctx, cfg, rest, stdout, stderr)
	default:
		fmt.Fprint(stderr, usageText)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runVersion(stdout io.Writer) error {
	fmt.Fprintf(stdout, "%s %s\n", i18nbackend.Name, version)
	fmt.Fprintf(stdout, "  %s\n", i18nbackend.Description)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(stdout, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
	}
	return nil
}

func newFlagSet(name string, cfg *Config, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("i18nbackend "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.bindFlags(fs)
	return fs
}

// openBackend builds a Backend from cfg. The returned close func flushes
// pending missing keys and releases everything the backend holds.
func openBackend(cfg Config, stderr io.Writer, extra ...i18nbackend.Option) (*i18nbackend.Backend, *slog.Logger, func(), error) {
	logger := newLogger(stderr, cfg.LogLevel, cfg.LogColored)

	opts, cleanup, err := backendOptions(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	b, err := i18nbackend.New(append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+time.Second)
		defer cancel()
		if err := b.Close(ctx); err != nil {
			logger.Warn("final missing-key flush failed", "error", err)
		}
		cleanup()
	}
	return b, logger, closeFn, nil
}

// runRead prints a namespace.
func runRead(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("read", &cfg, stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("read requires <lng> <ns>")
	}

	b, _, closeFn, err := openBackend(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := b.Read(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	return writeJSON(stdout, res)
}

// runDiff compares two resource files, or the source namespace with a language.
func runDiff(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("diff", &cfg, stderr)
	lang := fs.String("lang", "", "Compare the source language with this language")
	report := fs.Bool("report", false, "Report keys missing from -lang as missing keys")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *lang != "" {
		if fs.NArg() != 1 {
			fs.Usage()
			return errors.New("diff -lang requires <ns>")
		}
		return runDiffLanguage(ctx, cfg, *lang, fs.Arg(0), *report, *jsonOutput, stdout, stderr)
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("diff requires <old> <new>")
	}

	parse := i18nbackend.ParseJSON
	if strings.EqualFold(cfg.Format, "yaml") || strings.EqualFold(cfg.Format, "yml") {
		parse = processor.ParseYAML
	}

	oldRes, err := readResourceFile(fs.Arg(0), parse)
	if err != nil {
		return fmt.Errorf("reading previous version: %w", err)
	}
	newRes, err := readResourceFile(fs.Arg(1), parse)
	if err != nil {
		return fmt.Errorf("reading new version: %w", err)
	}

	diff := i18nbackend.DiffResources(oldRes, newRes)
	if *jsonOutput {
		return writeJSON(stdout, diffOutput(filepath.Base(fs.Arg(0)), filepath.Base(fs.Arg(1)), diff))
	}

	fmt.Fprintf(stdout, "Diff: %s vs %s\n\n", filepath.Base(fs.Arg(0)), filepath.Base(fs.Arg(1)))
	printDiff(stdout, diff)
	return nil
}

func runDiffLanguage(ctx context.Context, cfg Config, lang, ns string, report, jsonOut bool, stdout, stderr io.Writer) error {
	// Compare what is really on disk, not what translation would produce.
	cfg.TranslateOnLoad = false

	b, _, closeFn, err := openBackend(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	source, err := b.Read(ctx, cfg.SourceLanguage, ns)
	if err != nil {
		return err
	}
	target, err := b.Read(ctx, lang, ns)
	if err != nil {
		return err
	}

	missing := i18nbackend.MissingKeys(source, target)
	keys := sortedKeys(missing)

	if report {
		for _, key := range keys {
			b.Create([]string{lang}, ns, key, missing[key])
		}
		if err := b.Flush(ctx); err != nil {
			return fmt.Errorf("reporting missing keys: %w", err)
		}
	}

	if jsonOut {
		return writeJSON(stdout, struct {
			Namespace string            `json:"namespace"`
			Source    string            `json:"source"`
			Target    string            `json:"target"`
			Missing   map[string]string `json:"missing"`
			Reported  bool              `json:"reported"`
		}{ns, cfg.SourceLanguage, lang, missing, report})
	}

	fmt.Fprintf(stdout, "Namespace %q: %s vs %s\n", ns, cfg.SourceLanguage, lang)
	if len(keys) == 0 {
		fmt.Fprintf(stdout, "No missing keys. %s is up to date.\n", lang)
		return nil
	}
	fmt.Fprintf(stdout, "Missing in %s: %d keys\n\n", lang, len(keys))
	for _, key := range keys {
		fmt.Fprintf(stdout, "  + %s = %q\n", key, truncate(missing[key], 50))
	}
	if report {
		fmt.Fprintf(stdout, "\nReported %d missing keys.\n", len(keys))
	}
	return nil
}

// scanResult is the JSON form of a scan.
type scanResult struct {
	Language string          `json:"language"`
	Keys     int             `json:"keys"`
	Missing  []scanMissedKey `json:"missing"`
	Reported bool            `json:"reported"`
}

type scanMissedKey struct {
	File      string `json:"file"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Default   string `json:"default,omitempty"`
}

// runScan extracts data-i18n keys from HTML and reports the ones the loaded
// namespaces do not define.
func runScan(ctx context.Context, cfg Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("scan", &cfg, stderr)
	lang := fs.String("lang", "", "Language to check (default: source language)")
	ns := fs.String("ns", "translation", "Namespace for keys without a prefix")
	attr := fs.String("attr", processor.DefaultKeyAttribute, "Attribute that carries keys")
	report := fs.Bool("report", false, "Report missing keys to the translation API")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lang == "" {
		*lang = cfg.SourceLanguage
	}

	inputs, err := readInputs(fs.Args(), stdin)
	if err != nil {
		return err
	}

	extractor := processor.NewHTMLKeyExtractor(*ns).WithAttribute(*attr)

	type fileKey struct {
		file string
		key  processor.HTMLKey
	}
	var found []fileKey
	var all []processor.HTMLKey
	for _, in := range inputs {
		keys, err := extractor.Extract(in.content)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", in.name, err)
		}
		for _, k := range keys {
			found = append(found, fileKey{in.name, k})
			all = append(all, k)
		}
	}

	b, _, closeFn, err := openBackend(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	loaded, err := b.ReadMulti(ctx, []string{*lang}, processor.Namespaces(all))
	if err != nil {
		return err
	}
	flat := make(map[string]map[string]string)
	for n, res := range loaded[*lang] {
		flat[n] = i18nbackend.Flatten(res)
	}

	result := scanResult{Language: *lang, Keys: len(found), Missing: []scanMissedKey{}, Reported: *report}
	for _, fk := range found {
		if _, ok := flat[fk.key.Namespace][fk.key.Key]; ok {
			continue
		}
		result.Missing = append(result.Missing, scanMissedKey{
			File:      fk.file,
			Namespace: fk.key.Namespace,
			Key:       fk.key.Key,
			Default:   fk.key.Default,
		})
		if *report {
			b.Create([]string{*lang}, fk.key.Namespace, fk.key.Key, fk.key.Default)
		}
	}

	if *report && len(result.Missing) > 0 {
		if err := b.Flush(ctx); err != nil {
			return fmt.Errorf("reporting missing keys: %w", err)
		}
	}

	if *jsonOutput {
		return writeJSON(stdout, result)
	}

	fmt.Fprintf(stdout, "Scanned %d key references for %s\n", result.Keys, *lang)
	if len(result.Missing) == 0 {
		fmt.Fprintf(stdout, "All keys are defined.\n")
		return nil
	}
	fmt.Fprintf(stdout, "Missing: %d\n\n", len(result.Missing))
	for _, m := range result.Missing {
		fmt.Fprintf(stdout, "  %s: %s:%s", m.File, m.Namespace, m.Key)
		if m.Default != "" {
			fmt.Fprintf(stdout, " (%q)", truncate(m.Default, 40))
		}
		fmt.Fprintln(stdout)
	}
	if *report {
		fmt.Fprintf(stdout, "\nReported %d missing keys.\n", len(result.Missing))
	}
	return nil
}

// runRender localizes data-i18n markup.
func runRender(ctx context.Context, cfg Config, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", &cfg, stderr)
	lang := fs.String("lang", "", "Target language code (required)")
	ns := fs.String("ns", "translation", "Namespace for keys without a prefix")
	output := fs.String("o", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lang == "" {
		fs.Usage()
		return errors.New("-lang is required")
	}

	inputs, err := readInputs(fs.Args(), stdin)
	if err != nil {
		return err
	}
	if len(inputs) != 1 {
		return errors.New("render takes a single input")
	}

	extractor := processor.NewHTMLKeyExtractor(*ns)
	keys, err := extractor.Extract(inputs[0].content)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", inputs[0].name, err)
	}

	b, logger, closeFn, err := openBackend(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	loaded, err := b.ReadMulti(ctx, []string{*lang}, processor.Namespaces(keys))
	if err != nil {
		return err
	}

	rendered, missing, err := extractor.Apply(inputs[0].content, loaded[*lang])
	if err != nil {
		return err
	}
	for _, m := range missing {
		logger.Warn("no translation", "language", *lang, "key", m.ID())
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, rendered)
	return err
}

// runServe serves namespaces until ctx is cancelled.
func runServe(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("serve", &cfg, stderr)
	addr := fs.String("addr", ":8080", "Listen address")
	metricsPath := fs.String("metrics-path", "/metrics", "Prometheus endpoint (empty to disable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	b, logger, closeFn, err := openBackend(cfg, stderr, i18nbackend.WithMetrics(i18nbackend.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer closeFn()

	srv := server.New(b, &server.Config{
		MetricsEnabled:  *metricsPath != "",
		MetricsEndpoint: *metricsPath,
		Gatherer:        reg,
		Logger:          logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(*addr)
	}()
	logger.Info("serving namespaces", "addr", *addr, "version", i18nbackend.FullVersion())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type input struct {
	name    string
	content string
}

// readInputs reads the named files, or stdin when none are given.
func readInputs(paths []string, stdin io.Reader) ([]input, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []input{{name: "stdin", content: string(data)}}, nil
	}

	inputs := make([]input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		inputs = append(inputs, input{name: filepath.Base(p), content: string(data)})
	}
	return inputs, nil
}

func readResourceFile(path string, parse i18nbackend.ResponseParser) (i18nbackend.Resource, error) {
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	return parse(data)
}

type diffJSON struct {
	PreviousFile string                `json:"previous_file"`
	InputFile    string                `json:"input_file"`
	Stats        i18nbackend.DiffStats `json:"stats"`
	Added        []string              `json:"added,omitempty"`
	Removed      []string              `json:"removed,omitempty"`
	Modified     []modifiedJSON        `json:"modified,omitempty"`
}

type modifiedJSON struct {
	Key string `json:"key"`
	Old string `json:"old"`
	New string `json:"new"`
}

func diffOutput(oldName, newName string, diff *i18nbackend.DiffResult) diffJSON {
	out := diffJSON{
		PreviousFile: oldName,
		InputFile:    newName,
		Stats:        diff.Stats(),
		Added:        diff.Added,
		Removed:      diff.Removed,
	}
	for _, m := range diff.Modified {
		out.Modified = append(out.Modified, modifiedJSON{Key: m.Key, Old: m.Old, New: m.New})
	}
	return out
}

func printDiff(w io.Writer, diff *i18nbackend.DiffResult) {
	stats := diff.Stats()
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Unchanged: %d\n", stats.Unchanged)
	fmt.Fprintf(w, "  Added:     %d\n", stats.Added)
	fmt.Fprintf(w, "  Removed:   %d\n", stats.Removed)
	fmt.Fprintf(w, "  Modified:  %d\n", stats.Modified)
	fmt.Fprintf(w, "\n")

	if !diff.HasChanges() {
		fmt.Fprintf(w, "No changes detected.\n")
		return
	}

	if len(diff.Added) > 0 {
		fmt.Fprintf(w, "Added:\n")
		for _, k := range diff.Added {
			fmt.Fprintf(w, "  + %s\n", k)
		}
		fmt.Fprintf(w, "\n")
	}
	if len(diff.Modified) > 0 {
		fmt.Fprintf(w, "Modified:\n")
		for _, m := range diff.Modified {
			fmt.Fprintf(w, "  ~ %s: %q -> %q\n", m.Key, truncate(m.Old, 30), truncate(m.New, 30))
		}
		fmt.Fprintf(w, "\n")
	}
	if len(diff.Removed) > 0 {
		fmt.Fprintf(w, "Removed:\n")
		for _, k := range diff.Removed {
			fmt.Fprintf(w, "  - %s\n", k)
		}
		fmt.Fprintf(w, "\n")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
