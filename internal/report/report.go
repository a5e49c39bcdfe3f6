// Package report renders Super Cards as markdown for terminal output.
package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Income-Clarity-Backend/internal/currency"
	"github.com/ndewijer/Income-Clarity-Backend/internal/model"
)

//go:embed templates/*.md
var templates embed.FS

var hundred = decimal.NewFromInt(100)

func funcs(code string) template.FuncMap {
	return template.FuncMap{
		"money":  func(f model.Figure) string { return currency.FormatFigure(f, code) },
		"amount": func(d decimal.Decimal) string { return currency.Format(d, code) },
		"nullAmount": func(d decimal.NullDecimal) string {
			if !d.Valid {
				return "n/a"
			}
			return currency.Format(d.Decimal, code)
		},
		"pct":     currency.FormatPercentFigure,
		"percent": currency.Percent,
		// rates are stored as fractions
		"ratio": func(d decimal.Decimal) string { return currency.Percent(d.Mul(hundred)) },
		"rate": func(f model.Figure) string {
			if f.Available() {
				f.Value.Decimal = f.Value.Decimal.Mul(hundred)
			}
			return currency.FormatPercentFigure(f)
		},
		"months": func(m *int) string {
			if m == nil {
				return "n/a"
			}
			if *m < 12 {
				return fmt.Sprintf("%d months", *m)
			}
			return fmt.Sprintf("%d years %d months", *m/12, *m%12)
		},
	}
}

// Markdown renders all five cards as a markdown document.
func Markdown(cards *model.SuperCards) (string, error) {
	tmpl, err := template.New("supercards.md").Funcs(funcs(cards.Currency)).ParseFS(templates, "templates/supercards.md")
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}
	notes, err := templates.ReadFile("templates/notes.md")
	if err != nil {
		return "", fmt.Errorf("failed to read report template: %w", err)
	}
	if _, err := tmpl.New("notes").Parse(string(notes)); err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, "supercards.md", cards); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return b.String(), nil
}

// Terminal styles markdown for a terminal of the given width. Style is a
// glamour style name such as "dark", "light" or "notty"; empty selects one
// from the terminal background.
func Terminal(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render(md)
}
