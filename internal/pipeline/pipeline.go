// Package pipeline wires a source, the CSV parser, column selection with
// per-column transformers, and an atomic destination write into one run.
//
// A run is strictly sequential:
//
//	Reading    open the source, decode it, parse header and rows
//	Projecting check requested columns and transformer targets, build rows
//	Writing    render, encode back to the input encoding, replace dst
//
// Any failure aborts the run before the destination is touched, so a failed
// run never leaves a partial output file behind.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/zeebo/xxh3"

	"csvselect/internal/datasource"
	"csvselect/internal/datasource/httpds"
	"csvselect/internal/metrics"
	pcsv "csvselect/internal/parser/csv"
	"csvselect/internal/record"
	"csvselect/internal/selector"
	sinkfile "csvselect/internal/sink/file"
	"csvselect/internal/textenc"
	"csvselect/internal/transformer"
)

// DefaultJob labels metrics and log lines when no job name is configured.
const DefaultJob = "csvselect"

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithEncoding sets the text encoding of the input. The output is written in
// the same encoding. Names are resolved by textenc.Lookup when Run starts.
func WithEncoding(name string) Option { return func(p *Pipeline) { p.encoding = name } }

// WithComma sets the field delimiter used for both reading and writing.
func WithComma(r rune) Option { return func(p *Pipeline) { p.comma = r } }

// WithCRLF makes the written file use \r\n line endings.
func WithCRLF(on bool) Option { return func(p *Pipeline) { p.crlf = on } }

// WithLogger routes run logging to l.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithJob names the run for metrics and logs.
func WithJob(name string) Option {
	return func(p *Pipeline) {
		if name != "" {
			p.job = name
		}
	}
}

// WithSourceOpener replaces the default opener, which handles local paths
// and http(s) URLs.
func WithSourceOpener(o datasource.Opener) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.opener = o
		}
	}
}

// Pipeline holds the column selection and the transformer registry. It is
// not safe for concurrent configuration; Run may be called repeatedly and
// does not mutate the Pipeline.
type Pipeline struct {
	columns  []string
	registry transformer.Registry

	encoding string
	comma    rune
	crlf     bool
	job      string
	opener   datasource.Opener
	log      *slog.Logger
}

// New returns a Pipeline that keeps every column and transforms nothing.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: transformer.Registry{},
		encoding: textenc.DefaultName,
		comma:    ',',
		job:      DefaultJob,
		opener:   datasource.NewResolver(httpds.Config{}),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SetColumns replaces the requested columns. An empty selection keeps every
// input column.
func (p *Pipeline) SetColumns(cols ...string) *Pipeline {
	p.columns = slices.Clone(cols)
	return p
}

// Columns returns a copy of the requested columns.
func (p *Pipeline) Columns() []string { return slices.Clone(p.columns) }

// AddTransformer registers t for col, replacing any earlier transformer for
// the same column.
func (p *Pipeline) AddTransformer(col string, t transformer.Transformer) *Pipeline {
	p.registry.Register(col, t)
	return p
}

// Transformers exposes the registry. Callers must not mutate it while a run
// is in progress.
func (p *Pipeline) Transformers() transformer.Registry { return p.registry }

// Stats describes a completed run.
type Stats struct {
	Columns     []string
	RowsRead    int
	RowsWritten int
	Encoding    string

	// Bytes and Checksum (xxh3-64) describe the file as written.
	Bytes    int
	Checksum uint64

	Duration time.Duration
}

// Run reads src, projects it and atomically replaces dst with the result.
// src may be a local path or an http(s) URL.
func (p *Pipeline) Run(ctx context.Context, src, dst string) error {
	_, err := p.RunStats(ctx, src, dst)
	return err
}

// RunStats is Run that also reports what was processed.
func (p *Pipeline) RunStats(ctx context.Context, src, dst string) (Stats, error) {
	start := time.Now()
	log := p.log.With("job", p.job, "source", src, "destination", dst)

	var st Stats
	codec, err := textenc.Lookup(p.encoding)
	if err != nil {
		err = fail(Reading, ErrEncoding, err)
		p.observe(Reading, err, time.Since(start))
		log.Error("run failed", "stage", Reading.String(), "err", err)
		return st, err
	}
	st.Encoding = codec.Name()

	var doc *record.Document
	err = p.stage(ctx, Reading, func() error {
		var rerr error
		doc, rerr = p.read(ctx, src, codec)
		return rerr
	})
	if err != nil {
		log.Error("run failed", "stage", Reading.String(), "err", err)
		return st, err
	}
	st.RowsRead = len(doc.Rows)
	metrics.RecordRows(p.job, "read", st.RowsRead)
	log.Debug("input parsed", "encoding", st.Encoding, "columns", len(doc.Header), "rows", st.RowsRead)

	var out *record.Document
	err = p.stage(ctx, Projecting, func() error {
		var perr error
		out, perr = p.Process(doc)
		return perr
	})
	if err != nil {
		log.Error("run failed", "stage", Projecting.String(), "err", err)
		return st, err
	}
	st.Columns = out.Header

	err = p.stage(ctx, Writing, func() error {
		data, werr := p.write(dst, out, codec)
		if werr != nil {
			return werr
		}
		st.Bytes, st.Checksum = len(data), xxh3.Hash(data)
		return nil
	})
	if err != nil {
		log.Error("run failed", "stage", Writing.String(), "err", err)
		return st, err
	}
	st.RowsWritten = len(out.Rows)
	metrics.RecordRows(p.job, "written", st.RowsWritten)

	st.Duration = time.Since(start)
	log.Info("summary",
		"columns", len(st.Columns),
		"rows_read", st.RowsRead,
		"rows_written", st.RowsWritten,
		"bytes", st.Bytes,
		"checksum", fmt.Sprintf("%016x", st.Checksum),
		"elapsed", st.Duration.Truncate(time.Millisecond),
	)
	return st, nil
}

// Process selects and transforms doc. The input document is not modified.
// Requested columns and transformer targets must all exist in doc.Header.
func (p *Pipeline) Process(doc *record.Document) (*record.Document, error) {
	targets := p.registry.Columns()
	slices.Sort(targets)
	if err := selector.Validate(doc.Header, append(slices.Clone(p.columns), targets...)); err != nil {
		return nil, fail(Projecting, ErrInvalidColumn, err)
	}
	cols, err := selector.Select(doc.Header, p.columns)
	if err != nil {
		return nil, fail(Projecting, ErrInvalidColumn, err)
	}

	out := &record.Document{Header: cols, Rows: make([]record.Record, len(doc.Rows))}
	for i, rec := range doc.Rows {
		out.Rows[i] = selector.Project(rec, cols, p.registry)
	}
	return out, nil
}

// stage runs fn as stage s, honoring cancellation at the boundary and
// recording its outcome.
func (p *Pipeline) stage(ctx context.Context, s Stage, fn func() error) error {
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = fn()
	} else {
		err = &Error{Stage: s, Kind: err, Err: err}
	}
	p.observe(s, err, time.Since(start))
	return err
}

func (p *Pipeline) observe(s Stage, err error, d time.Duration) {
	metrics.RecordStage(p.job, s.String(), err, d)
}

func (p *Pipeline) read(ctx context.Context, src string, codec textenc.Codec) (*record.Document, error) {
	rc, err := p.opener.Open(ctx, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Stage: Reading, Kind: ctxErr, Err: err}
		}
		return nil, fail(Reading, ErrSourceNotFound, err)
	}
	defer rc.Close()

	doc, err := pcsv.NewParser(pcsv.Options{Comma: p.comma, Codec: codec}).Parse(rc)
	if err != nil {
		return nil, fail(Reading, classifyParse(err), err)
	}
	return doc, nil
}

func classifyParse(err error) error {
	switch {
	case errors.Is(err, textenc.ErrEncoding):
		return ErrEncoding
	case errors.Is(err, pcsv.ErrMalformedRow):
		return ErrMalformedRow
	case errors.Is(err, pcsv.ErrNoHeader), errors.Is(err, pcsv.ErrMalformedHeader):
		return ErrMalformedHeader
	default:
		return ErrSourceRead
	}
}

// write renders doc and replaces dst. It returns the bytes written.
func (p *Pipeline) write(dst string, doc *record.Document, codec textenc.Codec) ([]byte, error) {
	text, err := pcsv.Render(doc.Header, doc.Rows, pcsv.WriteOptions{Comma: p.comma, UseCRLF: p.crlf})
	if err != nil {
		return nil, fail(Writing, ErrDestinationWrite, err)
	}
	data, err := codec.Encode(text)
	if err != nil {
		return nil, fail(Writing, ErrEncoding, fmt.Errorf("encode output as %s: %w", codec.Name(), err))
	}
	if err := sinkfile.NewAtomic(dst, 0).Write(data); err != nil {
		return nil, fail(Writing, ErrDestinationWrite, err)
	}
	return data, nil
}
