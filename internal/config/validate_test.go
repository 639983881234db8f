package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func minimalJob() Job {
	return Job{
		Job:         "t",
		Source:      Source{Path: "in.csv"},
		Destination: Destination{Path: "out.csv"},
	}
}

func TestValidateJob_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidateJob(minimalJob()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	unnamed := minimalJob()
	unnamed.Job = ""
	if issues := ValidateJob(unnamed); len(issues) != 0 {
		t.Fatalf("job name is optional, got %+v", issues)
	}
}

func TestValidateJob_Cases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(j *Job)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"missing_source", func(j *Job) { j.Source.Path = " " }, SeverityError, "source.path", "must not be empty"},
		{"missing_destination", func(j *Job) { j.Destination.Path = "" }, SeverityError, "destination.path", "must not be empty"},
		{"same_paths", func(j *Job) { j.Destination.Path = "in.csv" }, SeverityWarning, "destination.path", "same as the source"},
		{"bad_encoding", func(j *Job) { j.Source.Encoding = "klingon" }, SeverityError, "source.encoding", "klingon"},
		{"long_delimiter", func(j *Job) { j.Source.Delimiter = ";;" }, SeverityError, "source.delimiter", "single character"},
		{"quote_delimiter", func(j *Job) { j.Source.Delimiter = `"` }, SeverityError, "source.delimiter", "cannot be used"},
		{"negative_retries", func(j *Job) { j.Source.HTTP.MaxRetries = -1 }, SeverityError, "source.http.max_retries", "negative"},
		{"empty_column", func(j *Job) { j.Columns = []string{"a", ""} }, SeverityError, "columns[1]", "must not be empty"},
		{"duplicate_column", func(j *Job) { j.Columns = []string{"a", "a"} }, SeverityWarning, "columns[1]", "more than once"},
		{
			"empty_kind",
			func(j *Job) { j.Transform = []Transform{{Columns: []string{"a"}}} },
			SeverityError, "transform[0].kind", "must not be empty",
		},
		{
			"unknown_kind",
			func(j *Job) { j.Transform = []Transform{{Kind: "rot13", Columns: []string{"a"}}} },
			SeverityError, "transform[0].kind", `unknown transform kind "rot13"`,
		},
		{
			"bad_options",
			func(j *Job) { j.Transform = []Transform{{Kind: "prefix", Columns: []string{"a"}}} },
			SeverityError, "transform[0].options", "prefix",
		},
		{
			"no_columns",
			func(j *Job) { j.Transform = []Transform{{Kind: "strip"}} },
			SeverityError, "transform[0].columns", "at least one column",
		},
		{
			"pushgateway_without_url",
			func(j *Job) { j.Metrics.Backend = "pushgateway" },
			SeverityError, "metrics.pushgateway_url", "requires pushgateway_url",
		},
		{
			"unknown_backend",
			func(j *Job) { j.Metrics.Backend = "graphite" },
			SeverityWarning, "metrics.backend", "graphite",
		},
		{"unknown_level", func(j *Job) { j.Log.Level = "loud" }, SeverityWarning, "log.level", "loud"},
		{"unknown_format", func(j *Job) { j.Log.Format = "xml" }, SeverityWarning, "log.format", "xml"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			j := minimalJob()
			tc.mutate(&j)
			issues := ValidateJob(j)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("expected %s at %s containing %q; got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestErrors_FiltersWarnings(t *testing.T) {
	t.Parallel()

	issues := []Issue{
		{Severity: SeverityWarning, Path: "job", Message: "w"},
		{Severity: SeverityError, Path: "source.path", Message: "e"},
	}
	errs := Errors(issues)
	if len(errs) != 1 || errs[0].Path != "source.path" {
		t.Fatalf("Errors() = %+v", errs)
	}
	if got := errs[0].Error(); got != "error at source.path: e" {
		t.Fatalf("Issue.Error() = %q", got)
	}
}

func TestValidateJob_SampleConfig(t *testing.T) {
	t.Parallel()

	j, err := Load("../../configs/jobs/contacts.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if errs := Errors(ValidateJob(j)); len(errs) != 0 {
		t.Fatalf("sample config has errors: %+v", errs)
	}
	if _, err := j.Transformers(); err != nil {
		t.Fatalf("Transformers: %v", err)
	}
}
