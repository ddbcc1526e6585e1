package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/quantmind-br/libmanifest/internal/app"
	"github.com/quantmind-br/libmanifest/internal/utils"
	"github.com/quantmind-br/libmanifest/pkg/manifest"
	"github.com/quantmind-br/libmanifest/pkg/version"
	"gopkg.in/yaml.v3"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer renders command results as text, JSON or YAML
type Printer struct {
	out    io.Writer
	format string
	root   string
}

// PrinterOptions contains options for the printer
type PrinterOptions struct {
	Output io.Writer
	Format string
	// Root shortens library directories in text tables; empty prints them as is
	Root string
}

// NewPrinter creates a new printer
func NewPrinter(opts PrinterOptions) (*Printer, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	format := strings.ToLower(opts.Format)
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}

	return &Printer{
		out:    opts.Output,
		format: format,
		root:   opts.Root,
	}, nil
}

// Format returns the output format in use
func (p *Printer) Format() string {
	return p.format
}

type manifestView struct {
	File     string         `json:"file" yaml:"file"`
	Manifest map[string]any `json:"manifest" yaml:"manifest"`
}

// PrintManifest renders a processed manifest and the file it came from
func (p *Printer) PrintManifest(file string, m manifest.Manifest) error {
	view := manifestView{File: file, Manifest: m}

	if p.format == FormatText {
		if _, err := fmt.Fprintf(p.out, "# %s\n", file); err != nil {
			return err
		}
		return p.encodeYAML(yamlValue(map[string]any(m)))
	}
	return p.encode(view)
}

// PrintPath renders a resolved manifest path
func (p *Printer) PrintPath(file string) error {
	if p.format == FormatText {
		_, err := fmt.Fprintln(p.out, file)
		return err
	}
	return p.encode(map[string]string{"file": file})
}

// PrintVersion renders build information
func (p *Printer) PrintVersion(info version.Info) error {
	if p.format == FormatText {
		_, err := fmt.Fprintln(p.out, info.String())
		return err
	}
	return p.encode(info)
}

// Report is the lint result for one manifest
type Report struct {
	File   string                 `json:"file" yaml:"file"`
	Issues manifest.Issues        `json:"issues" yaml:"issues"`
	Schema []manifest.SchemaIssue `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// HasProblems reports whether the report carries anything at all
func (r Report) HasProblems() bool {
	return len(r.Issues.Errors) > 0 || len(r.Issues.Warnings) > 0 || len(r.Schema) > 0
}

// PrintReport renders a lint report
func (p *Printer) PrintReport(r Report) error {
	if p.format != FormatText {
		if r.Issues.Errors == nil {
			r.Issues.Errors = []string{}
		}
		if r.Issues.Warnings == nil {
			r.Issues.Warnings = []string{}
		}
		return p.encode(r)
	}

	if !r.HasProblems() {
		_, err := fmt.Fprintf(p.out, "%s: no issues found\n", r.File)
		return err
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, r.File)
	for _, msg := range r.Issues.Errors {
		fmt.Fprintf(w, "  error\t%s\n", msg)
	}
	for _, msg := range r.Issues.Warnings {
		fmt.Fprintf(w, "  warning\t%s\n", msg)
	}
	for _, issue := range r.Schema {
		fmt.Fprintf(w, "  schema\t%s\n", issue)
	}
	return w.Flush()
}

type libraryView struct {
	Name     string            `json:"name" yaml:"name"`
	Version  string            `json:"version,omitempty" yaml:"version,omitempty"`
	Status   string            `json:"status" yaml:"status"`
	Dir      string            `json:"dir" yaml:"dir"`
	File     string            `json:"file,omitempty" yaml:"file,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	Issues   manifest.Issues   `json:"issues" yaml:"issues"`
	Manifest manifest.Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

type scanView struct {
	Libraries []libraryView `json:"libraries" yaml:"libraries"`
	Summary   app.Summary   `json:"summary" yaml:"summary"`
}

// PrintLibraries renders scan results as a table or a document with a summary
func (p *Printer) PrintLibraries(libs []app.Library) error {
	summary := app.Summarize(libs)

	if p.format != FormatText {
		view := scanView{Libraries: make([]libraryView, 0, len(libs)), Summary: summary}
		for _, lib := range libs {
			lv := libraryView{
				Name:     lib.Name(),
				Version:  lib.Manifest.Version(),
				Status:   lib.Status(),
				Dir:      lib.Dir,
				File:     lib.File,
				Issues:   lib.Issues,
				Manifest: lib.Manifest,
			}
			if lib.Err != nil {
				lv.Error = lib.Err.Error()
			}
			view.Libraries = append(view.Libraries, lv)
		}
		return p.encode(view)
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSTATUS\tPATH\tDETAIL")
	for _, lib := range libs {
		version := lib.Manifest.Version()
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", lib.Name(), version, lib.Status(), p.relative(lib.Dir), detail(lib))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(p.out, "\n%d libraries: %d ok, %d with warnings, %d invalid, %d errors\n",
		summary.Total, summary.OK, summary.Warnings, summary.Invalid, summary.Errors)
	return err
}

// detail is the most important message for a library
func detail(lib app.Library) string {
	switch {
	case lib.Err != nil:
		return lib.Err.Error()
	case len(lib.Issues.Errors) > 0:
		return lib.Issues.Errors[0]
	case len(lib.Issues.Warnings) == 1:
		return lib.Issues.Warnings[0]
	case len(lib.Issues.Warnings) > 1:
		return fmt.Sprintf("%s (+%d more)", lib.Issues.Warnings[0], len(lib.Issues.Warnings)-1)
	}
	return ""
}

func (p *Printer) relative(dir string) string {
	if p.root == "" {
		return dir
	}
	return utils.RelPath(p.root, dir)
}

func (p *Printer) encode(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatYAML:
		// Round-trip through JSON so tags and json.Number are honored
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return err
		}
		return p.encodeYAML(yamlValue(doc))
	}
	return fmt.Errorf("unsupported output format %q", p.format)
}

func (p *Printer) encodeYAML(v any) error {
	enc := yaml.NewEncoder(p.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// yamlValue replaces json.Number with int64 or float64 so numbers are not
// quoted as strings
func yamlValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = yamlValue(item)
		}
		return out
	case manifest.Manifest:
		return yamlValue(map[string]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = yamlValue(item)
		}
		return out
	default:
		return val
	}
}
