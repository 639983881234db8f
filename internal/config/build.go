package config

import (
	"fmt"
	"log/slog"

	"csvselect/internal/datasource"
	"csvselect/internal/pipeline"
	"csvselect/internal/transformer"
	"csvselect/internal/transformer/builtin"
)

// Transformers builds the per-column transformers of the job. Entries that
// name the same column are chained in file order.
func (j Job) Transformers() (map[string]transformer.Transformer, error) {
	chains := map[string]transformer.Chain{}
	var order []string
	for i, t := range j.Transform {
		tr, err := builtin.New(t.Kind, t.Options)
		if err != nil {
			return nil, fmt.Errorf("transform[%d]: %w", i, err)
		}
		for _, c := range t.Columns {
			if _, ok := chains[c]; !ok {
				order = append(order, c)
			}
			chains[c] = append(chains[c], tr)
		}
	}

	out := make(map[string]transformer.Transformer, len(chains))
	for _, c := range order {
		if ch := chains[c]; len(ch) == 1 {
			out[c] = ch[0]
		} else {
			out[c] = ch
		}
	}
	return out, nil
}

// Pipeline builds a pipeline for the job. Extra options are applied after
// the job's own, so callers can override them.
func (j Job) Pipeline(log *slog.Logger, extra ...pipeline.Option) (*pipeline.Pipeline, error) {
	if errs := Errors(ValidateJob(j)); len(errs) > 0 {
		return nil, fmt.Errorf("invalid job: %w", errs[0])
	}
	trs, err := j.Transformers()
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithJob(j.Job),
		pipeline.WithComma(j.Source.Comma()),
		pipeline.WithCRLF(j.Destination.CRLF),
		pipeline.WithLogger(log),
		pipeline.WithSourceOpener(datasource.NewResolver(j.Source.HTTP.ClientConfig())),
	}
	if j.Source.Encoding != "" {
		opts = append(opts, pipeline.WithEncoding(j.Source.Encoding))
	}
	p := pipeline.New(append(opts, extra...)...).SetColumns(j.Columns...)
	for c, t := range trs {
		p.AddTransformer(c, t)
	}
	return p, nil
}
