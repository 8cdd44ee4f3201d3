package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/i18n"
	"github.com/reoring/jspec/jsonschema"
	"github.com/reoring/jspec/source/gojson"
	"github.com/reoring/jspec/specfile"
	"github.com/reoring/jspec/value"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "jspec CLI\n\nUsage:\n  jspec validate -spec spec.yaml [-driver builtin|gojson] [-print] [file ...]\n  jspec test -spec spec.yaml [file ...]\n  jspec schema -spec spec.yaml [-o out.json]\n\nNotes:\n  - validate stops at the first violation per document; test reports every violation.\n  - With no files, the document is read from stdin.")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "validate":
		return checkCmd(ctx, "validate", args[1:], stdin, stdout, stderr)
	case "test":
		return checkCmd(ctx, "test", args[1:], stdin, stdout, stderr)
	case "schema":
		return schemaCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return exitUsage
	}
}

// newLogger writes JSON lines to w; verbose enables debug output.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

type checkFlags struct {
	specPath string
	driver   string
	lang     string
	dup      string
	maxDepth int
	maxBytes int64
	print    bool
	verbose  bool
}

func (c checkFlags) options(f *specfile.File, log *zap.Logger, file string) (jspec.ParseOpt, error) {
	opt := f.Options()
	opt.MaxDepth = c.maxDepth
	opt.MaxBytes = c.maxBytes
	switch c.dup {
	case "ignore":
		opt.Strictness.OnDuplicateKey = jspec.Ignore
	case "warn":
		opt.Strictness.OnDuplicateKey = jspec.Warn
	case "error":
		opt.Strictness.OnDuplicateKey = jspec.Error
	default:
		return opt, fmt.Errorf("unknown -dup %q", c.dup)
	}
	opt.OnWarning = func(e jspec.ValidationError) {
		log.Warn(e.Message, zap.String("file", file), zap.String("path", e.Path.String()), zap.String("code", string(e.Code)))
	}
	return opt, nil
}

func checkCmd(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c checkFlags
	fs.StringVar(&c.specPath, "spec", "", "spec document (YAML or JSON)")
	fs.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
	fs.StringVar(&c.dup, "dup", "ignore", "duplicate keys: ignore, warn or error")
	fs.IntVar(&c.maxDepth, "max-depth", 0, "maximum nesting depth (0 = unlimited)")
	fs.Int64Var(&c.maxBytes, "max-bytes", 0, "maximum input size in bytes (0 = unlimited)")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
	if name == "validate" {
		fs.StringVar(&c.driver, "driver", "builtin", "token source: builtin or gojson")
		fs.BoolVar(&c.print, "print", false, "print each accepted document in canonical form")
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if c.specPath == "" {
		fs.Usage()
		return exitUsage
	}
	log := newLogger(stderr, c.verbose)
	defer log.Sync() // nolint

	i18n.SetLanguage(c.lang)
	f, err := specfile.LoadFile(c.specPath)
	if err != nil {
		log.Error("load spec", zap.String("spec", c.specPath), zap.Error(err))
		return exitUsage
	}
	log.Debug("spec loaded", zap.String("spec", c.specPath), zap.Strings("definitions", f.Registry.Names()))

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}
	code := exitOK
	for _, file := range files {
		data, err := readInput(file, stdin)
		if err != nil {
			log.Error("read input", zap.String("file", file), zap.Error(err))
			return exitUsage
		}
		opt, err := c.options(f, log, file)
		if err != nil {
			log.Error("options", zap.Error(err))
			return exitUsage
		}
		var errs jspec.Errors
		var offset int64 = -1
		var accepted value.Value
		if name == "validate" {
			accepted, err = c.parse(ctx, f, data, opt)
			var pe *jspec.ParseError
			if errors.As(err, &pe) {
				errs, offset = jspec.Errors{pe.ValidationError}, pe.Offset
			} else if err != nil {
				log.Error("parse", zap.String("file", file), zap.Error(err))
				return exitUsage
			}
		} else {
			errs, err = test(ctx, f, data, opt)
			if err != nil {
				log.Error("test", zap.String("file", file), zap.Error(err))
				return exitUsage
			}
		}
		if len(errs) == 0 {
			log.Debug("document accepted", zap.String("file", file))
			if c.print && accepted != nil {
				b, err := value.Encode(accepted)
				if err != nil {
					log.Error("encode", zap.String("file", file), zap.Error(err))
					return exitUsage
				}
				fmt.Fprintln(stdout, string(b))
			}
			continue
		}
		code = exitInvalid
		for _, e := range errs {
			report(log, stdout, file, data, e, offset)
		}
	}
	return code
}

func (c checkFlags) parse(ctx context.Context, f *specfile.File, data []byte, opt jspec.ParseOpt) (value.Value, error) {
	switch c.driver {
	case "builtin":
		return jspec.ParseBytes(ctx, f.Root, data, opt)
	case "gojson":
		return jspec.Parse(ctx, f.Root, gojson.NewBytes(data), opt)
	}
	return nil, fmt.Errorf("unknown -driver %q", c.driver)
}

// test decodes the whole document and collects every violation. A document
// that is not JSON reports its syntax error.
func test(ctx context.Context, f *specfile.File, data []byte, opt jspec.ParseOpt) (jspec.Errors, error) {
	v, err := jspec.DecodeBytes(ctx, data, opt)
	if err != nil {
		var pe *jspec.ParseError
		if errors.As(err, &pe) {
			return jspec.Errors{pe.ValidationError}, nil
		}
		return nil, err
	}
	errs := jspec.Test(ctx, f.Root, v, opt)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}

func report(log *zap.Logger, w io.Writer, file string, data []byte, e jspec.ValidationError, offset int64) {
	fields := []zap.Field{
		zap.String("file", file),
		zap.String("path", e.Path.String()),
		zap.String("code", string(e.Code)),
		zap.Int64("offset", offset),
	}
	if frag := fragment(data, e.Path); frag != "" {
		fields = append(fields, zap.String("fragment", frag))
	}
	log.Info("validation failed", fields...)
	fmt.Fprintf(w, "%s: %s: %s\n", file, e.Path, e.Message)
}

const maxFragment = 120

// fragment returns the raw JSON found at p, shortened for display.
func fragment(data []byte, p jspec.Path) string {
	if p.IsRoot() || !gjson.ValidBytes(data) {
		return ""
	}
	raw := gjson.GetBytes(data, gjsonPath(p)).Raw
	if len(raw) > maxFragment {
		raw = raw[:maxFragment] + "..."
	}
	return raw
}

var gjsonEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`)

// gjsonPath converts a path to gjson syntax: dot separated, with array
// indexes as plain numbers.
func gjsonPath(p jspec.Path) string {
	segs := p.Segments()
	parts := make([]string, len(segs))
	for i, s := range segs {
		if s.IsIndex {
			parts[i] = fmt.Sprint(s.Index)
			continue
		}
		parts[i] = gjsonEscaper.Replace(s.Key)
	}
	return strings.Join(parts, ".")
}

func schemaCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var specPath, out string
	var verbose bool
	fs.StringVar(&specPath, "spec", "", "spec document (YAML or JSON)")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if specPath == "" {
		fs.Usage()
		return exitUsage
	}
	log := newLogger(stderr, verbose)
	defer log.Sync() // nolint

	f, err := specfile.LoadFile(specPath)
	if err != nil {
		log.Error("load spec", zap.String("spec", specPath), zap.Error(err))
		return exitUsage
	}
	s, err := jsonschema.FromSpec(f.Root, f.Registry)
	if err != nil {
		log.Error("export", zap.Error(err))
		return exitInvalid
	}
	b, err := jsonschema.Marshal(s)
	if err != nil {
		log.Error("marshal", zap.Error(err))
		return exitInvalid
	}
	b = append(b, '\n')
	if out == "" {
		_, _ = stdout.Write(b)
		return exitOK
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		log.Error("writing output", zap.String("out", out), zap.Error(err))
		return exitInvalid
	}
	log.Debug("wrote schema", zap.String("out", out))
	return exitOK
}

func readInput(file string, stdin io.Reader) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(file)
}
