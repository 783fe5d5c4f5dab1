package article

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// tomlFrontMatter is the on-disk shape written for new articles. Dates are
// written as TOML local dates.
type tomlFrontMatter struct {
	Title       string         `toml:"title"`
	Date        toml.LocalDate `toml:"date"`
	Description string         `toml:"description"`
	Draft       bool           `toml:"draft"`
	Tags        []string       `toml:"tags,omitempty"`
}

// Render writes a content file with a TOML front-matter block followed by a
// blank line and body.
func Render(fm FrontMatter, body string) ([]byte, error) {
	d := fm.Date.UTC()
	data, err := toml.Marshal(tomlFrontMatter{
		Title:       fm.Title,
		Date:        toml.LocalDate{Year: d.Year(), Month: int(d.Month()), Day: d.Day()},
		Description: fm.Description,
		Draft:       fm.Draft,
		Tags:        fm.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("+++\n")
	buf.Write(data)
	if !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString("+++\n\n")
	if body = strings.TrimSpace(body); body != "" {
		buf.WriteString(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
