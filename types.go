package jspec

import (
	eng "github.com/reoring/jspec/internal/engine"
	"github.com/reoring/jspec/spec"
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore (last value wins), Warn or Error.
}

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// ParseOpt bundles parsing options. Entry points take them variadically;
// the last one wins.
type ParseOpt struct {
	// Registry resolves Ref nodes that are not bound by an enclosing Named.
	Registry *spec.Registry
	// BufferSize is the working buffer for reader input (see JSONReaderSize).
	BufferSize int
	Strictness Strictness
	MaxDepth   int
	// MaxBytes fails a document longer than this with limit_exceeded. The
	// built-in reader source stops reading one byte past it.
	MaxBytes int64
	// OnWarning receives non-fatal findings such as duplicate keys under
	// Warn severity.
	OnWarning func(ValidationError)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ParseOpt{}
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	default:
		return eng.DupIgnore
	}
}

func (o ParseOpt) enforceOptions() eng.EnforceOptions {
	eo := eng.EnforceOptions{
		OnDuplicate: toEngineDup(o.Strictness.OnDuplicateKey),
		MaxDepth:    o.MaxDepth,
		MaxBytes:    o.MaxBytes,
	}
	if o.OnWarning != nil {
		warn := o.OnWarning
		eo.IssueSink = func(si eng.SimpleIssue) {
			p, err := ParsePointer(si.Path)
			if err != nil {
				p = Root()
			}
			warn(newError(p, ErrorCode(si.Code), nil, map[string]string{"detail": si.Message}))
		}
	}
	return eo
}
