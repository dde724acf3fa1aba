package fingerprint

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/valyala/fasttemplate"
)

// Format selects a report encoding.
type Format string

// Supported report encodings.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultTemplate is the per-certificate text block.
// Placeholders are {index}, {sha1} and {sha256}.
const DefaultTemplate = "SHA-1: {sha1}\nSHA-256: {sha256}\n"

// ParseFormat maps a flag value to a Format. The empty
// string selects FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf(
			"parsing format: unknown format %q", s,
		)
	}
}

// Text renders the report with DefaultTemplate.
func (r Report) Text() string {
	return r.Execute(DefaultTemplate)
}

// Execute renders tpl once per entry and concatenates
// the blocks. Unknown placeholders are kept verbatim.
func (r Report) Execute(tpl string) string {
	var sb strings.Builder

	for idx, en := range r.Entries {
		sb.WriteString(
			fasttemplate.ExecuteStringStd(
				tpl, "{", "}",
				map[string]interface{}{
					"index":  strconv.Itoa(idx),
					"sha1":   en.SHA1,
					"sha256": en.SHA256,
				},
			),
		)
	}

	return sb.String()
}

// Render writes the report to w in the given format. tpl
// overrides DefaultTemplate for FormatText and is
// ignored otherwise.
func (r Report) Render(
	w io.Writer,
	format Format,
	tpl string,
) error {
	const errCtx = "rendering report"

	var (
		buf []byte
		err error
	)

	switch format {
	case "", FormatText:
		if tpl == "" {
			tpl = DefaultTemplate
		}

		buf = []byte(r.Execute(tpl))
	case FormatJSON:
		buf, err = json.MarshalIndent(r, "", "  ")
		buf = append(buf, '\n')
	case FormatYAML:
		buf, err = yaml.Marshal(r)
	default:
		return fmt.Errorf(
			"%s: unknown format %q", errCtx, format,
		)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
