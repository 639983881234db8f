// Package config is the JSON job file model for csvselect: where to read,
// where to write, which columns to keep and how to transform them.
//
// Example:
//
//	{
//	  "job": "contacts",
//	  "source":      { "path": "in.csv", "encoding": "latin1", "delimiter": ";" },
//	  "destination": { "path": "out.csv" },
//	  "columns":     ["name", "city"],
//	  "transform": [
//	    { "kind": "strip",  "columns": ["name"] },
//	    { "kind": "prefix", "columns": ["id"], "options": { "prefix": "ID-" } }
//	  ],
//	  "metrics": { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"csvselect/internal/datasource/httpds"
)

// Job is the top-level object of a job file.
type Job struct {
	// Job names the run in logs and metrics.
	Job string `json:"job"`

	Source      Source      `json:"source"`
	Destination Destination `json:"destination"`

	// Columns to keep. Empty keeps every input column.
	Columns []string `json:"columns"`

	// Transform is applied in order. Several entries naming the same column
	// compose left to right.
	Transform []Transform `json:"transform"`

	Metrics Metrics `json:"metrics"`
	Log     Log     `json:"log"`
}

// Source is the input location: a local path or an http(s) URL.
type Source struct {
	Path      string `json:"path"`
	Encoding  string `json:"encoding"`
	Delimiter string `json:"delimiter"`
	HTTP      HTTP   `json:"http"`
}

// HTTP tunes fetching of URL sources.
type HTTP struct {
	TimeoutSeconds     int               `json:"timeout_seconds"`
	MaxRetries         int               `json:"max_retries"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
	Headers            map[string]string `json:"headers"`
}

// Destination is the output file. It is replaced atomically.
type Destination struct {
	Path string `json:"path"`
	CRLF bool   `json:"crlf"`
}

// Transform applies one transformer kind to a set of columns. Options is
// interpreted by the kind (see builtin.New).
type Transform struct {
	Kind    string   `json:"kind"`
	Columns []string `json:"columns"`
	Options Options  `json:"options"`
}

// Metrics selects a metrics backend: "none", "pushgateway" or "datadog".
type Metrics struct {
	Backend        string   `json:"backend"`
	PushgatewayURL string   `json:"pushgateway_url"`
	DogStatsDAddr  string   `json:"dogstatsd_addr"`
	Namespace      string   `json:"namespace"`
	Tags           []string `json:"tags"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Load reads and decodes a job file. Unknown keys are rejected so typos do
// not silently fall back to defaults.
func Load(path string) (Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read config: %w", err)
	}
	return Decode(b)
}

// Decode parses a job from JSON.
func Decode(b []byte) (Job, error) {
	var j Job
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&j); err != nil {
		return Job{}, fmt.Errorf("decode config: %w", err)
	}
	return j, nil
}

// Comma returns the first rune of the configured delimiter, or ','.
func (s Source) Comma() rune {
	for _, r := range s.Delimiter {
		return r
	}
	return ','
}

// ClientConfig maps the HTTP block onto the source client config.
func (h HTTP) ClientConfig() httpds.Config {
	cfg := httpds.Config{
		Timeout:            time.Duration(h.TimeoutSeconds) * time.Second,
		MaxRetries:         h.MaxRetries,
		InsecureSkipVerify: h.InsecureSkipVerify,
	}
	if len(h.Headers) > 0 {
		cfg.BaseHeaders = make(map[string][]string, len(h.Headers))
		for k, v := range h.Headers {
			cfg.BaseHeaders.Set(k, v)
		}
	}
	return cfg
}

// Env names read by ApplyEnv.
const (
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDogStatsDAddr  = "DOGSTATSD_ADDR"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
)

// ApplyEnv fills settings the job leaves empty from the environment. getenv
// is usually os.Getenv.
func (j *Job) ApplyEnv(getenv func(string) string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = getenv(key)
		}
	}
	fill(&j.Metrics.Backend, EnvMetricsBackend)
	fill(&j.Metrics.PushgatewayURL, EnvPushgatewayURL)
	fill(&j.Metrics.DogStatsDAddr, EnvDogStatsDAddr)
	fill(&j.Log.Level, EnvLogLevel)
	fill(&j.Log.Format, EnvLogFormat)
}

// Options is a typed view over a free-form JSON object. Lookups return the
// default when the key is absent or holds another type.
type Options map[string]any

// String returns the string at key or def.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Int returns the number at key truncated to int, or def. encoding/json
// yields float64 for numbers.
func (o Options) Int(key string, def int) int {
	switch n := o[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// UnmarshalJSON makes null or absent options an empty, non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	var tmp map[string]any
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
