// Package snippet loads and validates config snippet files, grounded on
// netcat_deploy.py's read_snippet_files: multiple files are concatenated,
// the result is checked for Go-template placeholder well-formedness, and
// scanned for which per-device values ({site_id}, {inet_gw}) a deploy job
// will need to resolve before formatting.
package snippet

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"
)

// Placeholders are the per-device values a snippet may reference. Unlike
// the original's str.format(**kwargs), Go's text/template requires a
// struct or map target; Placeholders doubles as that target.
type Placeholders struct {
	SiteName string
	SiteID   string
	InetGW   string
}

// Snippet is a validated, loaded configuration snippet ready to be
// rendered per device.
type Snippet struct {
	text     string
	tmpl     *template.Template
	SiteID   bool // site ID from the device is required to render this snippet
	InetGW   bool // internet gateway IP from the device is required to render this snippet
}

// Load reads and concatenates filenames in order (each file's contents
// followed by a blank line, matching the original's `read() + "\n\n"`),
// validates the result is parseable, and detects which placeholders
// require a per-device lookup before rendering.
func Load(filenames []string) (*Snippet, error) {
	var b strings.Builder
	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading configuration snippet file %q: %w", filename, err)
		}
		b.Write(data)
		b.WriteString("\n\n")
	}

	text := b.String()
	if text == "" {
		return nil, fmt.Errorf("configuration snippet is empty")
	}

	rendered, err := renderForValidation(text)
	if err != nil {
		return nil, fmt.Errorf("formatting error found in snippet: %w", err)
	}

	return &Snippet{
		text:   text,
		tmpl:   rendered,
		SiteID: strings.Contains(text, "{site_id}"),
		InetGW: strings.Contains(text, "{inet_gw}"),
	}, nil
}

// renderForValidation performs a trial render against an all-blank
// Placeholders, the Go analogue of the original's
// `snippet.format(site_name="", site_id="", inet_gw="")` integrity check:
// a malformed placeholder surfaces here rather than mid-deployment. A
// {name} left over once the known placeholders are rewritten is rejected
// as unknown, as str.format would reject it.
func renderForValidation(text string) (*template.Template, error) {
	normalized := toGoTemplate(text)
	if unknown := regexp.MustCompile(`\{[A-Za-z0-9_]*\}`).FindString(normalized); unknown != "" {
		return nil, fmt.Errorf("unknown placeholder %s", unknown)
	}
	tmpl, err := template.New("snippet").Option("missingkey=error").Parse(normalized)
	if err != nil {
		return nil, err
	}
	var discard strings.Builder
	if err := tmpl.Execute(&discard, Placeholders{}); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// toGoTemplate rewrites the original's Python str.format placeholders
// ({site_name}, {site_id}, {inet_gw}) into Go text/template actions, so
// operators can keep writing snippet files exactly as the original
// expected them.
func toGoTemplate(text string) string {
	replacer := strings.NewReplacer(
		"{site_name}", "{{.SiteName}}",
		"{site_id}", "{{.SiteID}}",
		"{inet_gw}", "{{.InetGW}}",
	)
	return replacer.Replace(text)
}

// Render fills the snippet's placeholders with per-device values.
func (s *Snippet) Render(p Placeholders) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, p); err != nil {
		return "", fmt.Errorf("rendering configuration snippet: %w", err)
	}
	return b.String(), nil
}

// Text returns the raw, unrendered snippet text (for confirmation prompts).
func (s *Snippet) Text() string {
	return s.text
}
