package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// listFlags take one or more names: every following token up to the next
// one starting with "-" belongs to the flag.
var listFlags = map[string]bool{
	"columns":   true,
	"uppercase": true,
	"lowercase": true,
	"strip":     true,
	"title":     true,
}

// usageError is an invalid invocation. It maps to exit status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

// stringList is a repeatable flag that collects values in order.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type cliOptions struct {
	input, output string

	columns   stringList
	uppercase stringList
	lowercase stringList
	strip     stringList
	title     stringList

	encoding  string
	delimiter string
	crlf      bool
	config    string
	job       string
	validate  bool

	metricsBackend string
	pushgatewayURL string
	dogstatsdAddr  string

	logLevel  string
	logFormat string
	verbose   bool

	// set records which flags appeared on the command line.
	set map[string]bool
}

func newFlagSet(o *cliOptions, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("csvselect", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.Var(&o.columns, "columns", "columns to keep (default: all)")
	fs.Var(&o.uppercase, "uppercase", "columns to convert to uppercase")
	fs.Var(&o.lowercase, "lowercase", "columns to convert to lowercase")
	fs.Var(&o.strip, "strip", "columns to strip surrounding whitespace from")
	fs.Var(&o.title, "title", "columns to convert to title case")

	fs.StringVar(&o.encoding, "encoding", "", "input and output encoding (default: utf-8)")
	fs.StringVar(&o.delimiter, "delimiter", "", "field delimiter (default: ,)")
	fs.BoolVar(&o.crlf, "crlf", false, "write \\r\\n line endings")
	fs.StringVar(&o.config, "config", "", "job config JSON path")
	fs.StringVar(&o.job, "job", "", "job name used in logs and metrics")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")

	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (env METRICS_BACKEND)")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&o.dogstatsdAddr, "dogstatsd-addr", "", "DogStatsD address (env DOGSTATSD_ADDR)")

	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: text, json (env LOG_FORMAT)")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging (same as -log-level=debug)")

	fs.Usage = func() {
		fmt.Fprintln(out, "usage: csvselect INPUT OUTPUT [--columns NAME...] [--uppercase NAME...]")
		fmt.Fprintln(out, "                 [--lowercase NAME...] [--strip NAME...] [--title NAME...] [flags]")
		fmt.Fprintln(out)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs turns the command line into options. help is true when usage
// was requested.
func parseArgs(args []string, out io.Writer) (o cliOptions, help bool, err error) {
	o.set = map[string]bool{}
	fs := newFlagSet(&o, out)

	flagArgs, positional, err := expandLists(args)
	if err != nil {
		return o, false, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return o, true, nil
		}
		return o, false, &usageError{msg: err.Error()}
	}
	positional = append(positional, fs.Args()...)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	switch {
	case len(positional) == 2:
		o.input, o.output = positional[0], positional[1]
	case len(positional) == 0 && o.config != "":
		// paths come from the job file
	case len(positional) > 2:
		return o, false, usagef("unexpected arguments: %s", strings.Join(positional[2:], " "))
	default:
		return o, false, usagef("INPUT and OUTPUT are required")
	}

	if o.delimiter == `\t` {
		o.delimiter = "\t"
	}
	if o.delimiter != "" {
		if utf8.RuneCountInString(o.delimiter) != 1 {
			return o, false, usagef("--delimiter must be a single character, got %q", o.delimiter)
		}
	}
	return o, false, nil
}

// expandLists rewrites greedy list flags into repeated "-name=value" flags
// and separates positional arguments. Values of a list flag may also be
// given as --name=a,b.
func expandLists(args []string) (flagArgs, positional []string, err error) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}

		name := strings.TrimLeft(a, "-")
		value, hasValue := "", false
		if k := strings.IndexByte(name, '='); k >= 0 {
			name, value, hasValue = name[:k], name[k+1:], true
		}

		if !listFlags[name] {
			flagArgs = append(flagArgs, a)
			if !hasValue && takesValue(name) && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
			continue
		}

		var vals []string
		if hasValue {
			for _, v := range strings.Split(value, ",") {
				if v != "" {
					vals = append(vals, v)
				}
			}
		} else {
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				vals = append(vals, args[i])
			}
		}
		if len(vals) == 0 {
			return nil, nil, usagef("--%s expects at least one column name", name)
		}
		for _, v := range vals {
			flagArgs = append(flagArgs, "-"+name+"="+v)
		}
	}
	return flagArgs, positional, nil
}

// takesValue reports whether a non-list flag consumes the next token.
func takesValue(name string) bool {
	switch name {
	case "encoding", "delimiter", "config", "job",
		"metrics-backend", "pushgateway-url", "dogstatsd-addr",
		"log-level", "log-format":
		return true
	}
	return false
}
