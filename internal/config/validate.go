package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"csvselect/internal/logging"
	"csvselect/internal/textenc"
	"csvselect/internal/transformer/builtin"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding. Path is a dotted path into the job
// (e.g. "transform[1].options").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors returns only the error-severity issues.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}

// ValidateJob performs static checks over j without touching the
// filesystem or network. Column names are checked against the input header
// only when a run starts.
func ValidateJob(j Job) []Issue {
	var issues []Issue

	issues = append(issues, validateSource(j.Source)...)
	issues = append(issues, validateDestination(j.Destination, j.Source)...)
	issues = append(issues, validateColumns(j.Columns)...)
	issues = append(issues, validateTransforms(j.Transform)...)
	issues = append(issues, validateMetrics(j.Metrics)...)
	issues = append(issues, validateLog(j.Log)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.path",
			Message:  "source.path must not be empty",
		})
	}
	if s.Encoding != "" {
		if _, err := textenc.Lookup(s.Encoding); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.encoding",
				Message:  err.Error(),
			})
		}
	}
	if s.Delimiter != "" {
		r, _ := utf8.DecodeRuneInString(s.Delimiter)
		switch {
		case utf8.RuneCountInString(s.Delimiter) != 1:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.delimiter",
				Message:  fmt.Sprintf("delimiter must be a single character, got %q", s.Delimiter),
			})
		case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.delimiter",
				Message:  fmt.Sprintf("delimiter %q cannot be used", s.Delimiter),
			})
		}
	}
	if s.HTTP.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.http.max_retries",
			Message:  "max_retries must not be negative",
		})
	}
	if s.HTTP.TimeoutSeconds < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.http.timeout_seconds",
			Message:  "timeout_seconds must not be negative",
		})
	}
	return issues
}

func validateDestination(d Destination, s Source) []Issue {
	if strings.TrimSpace(d.Path) == "" {
		return []Issue{{
			Severity: SeverityError,
			Path:     "destination.path",
			Message:  "destination.path must not be empty",
		}}
	}
	if d.Path == s.Path {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "destination.path",
			Message:  "destination is the same as the source; the input will be replaced",
		}}
	}
	return nil
}

func validateColumns(cols []string) []Issue {
	var issues []Issue
	seen := map[string]bool{}
	for i, c := range cols {
		path := fmt.Sprintf("columns[%d]", i)
		if c == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  "column name must not be empty",
			})
			continue
		}
		if seen[c] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path,
				Message:  fmt.Sprintf("column %q is listed more than once", c),
			})
		}
		seen[c] = true
	}
	return issues
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	for i, t := range ts {
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].kind", i),
				Message:  "transform kind must not be empty",
			})
			continue
		}
		if !builtin.Known(t.Kind) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].kind", i),
				Message:  fmt.Sprintf("unknown transform kind %q; known kinds: %s", t.Kind, strings.Join(builtin.Kinds(), ", ")),
			})
			continue
		}
		if _, err := builtin.New(t.Kind, t.Options); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].options", i),
				Message:  err.Error(),
			})
		}
		if len(t.Columns) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform[%d].columns", i),
				Message:  "transform must name at least one column",
			})
		}
		for k, c := range t.Columns {
			if c == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Path:     fmt.Sprintf("transform[%d].columns[%d]", i, k),
					Message:  "column name must not be empty",
				})
			}
		}
	}

	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway", "prom", "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			}}
		}
	case "datadog", "dogstatsd":
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
	return nil
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if l.Level != "" && !logging.KnownLevel(l.Level) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "log.level",
			Message:  fmt.Sprintf("unknown log level %q; using warn", l.Level),
		})
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q; using text", l.Format),
		})
	}
	return issues
}
