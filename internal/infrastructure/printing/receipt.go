// Package printing renders kitchen receipts for accepted platform orders and
// hands them to the store's print bridge.
package printing

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RabbirReaper/online-order-system-sub004/internal/domain/platform"
)

// receiptWidth is the character width of the thermal printer paper.
const receiptWidth = 32

// defaultReceiptTemplate is the plain-text layout sent to thermal printers.
const defaultReceiptTemplate = `{{center .PlatformName}}
{{center (printf "Order %s" .Order.DisplayID)}}
{{rule}}
{{formatDateTime .Order.PlacedAt}}
{{if .Order.CustomerName}}Customer: {{.Order.CustomerName}}{{end}}
{{rule}}
{{range .Order.Items}}{{.Quantity}}x {{.Name}}
{{range .Options}}   + {{.}}
{{end}}{{padLeft (formatMoney .UnitPrice) 32}}
{{end}}{{rule}}
{{padLeft (printf "TOTAL %s %s" .Order.Currency (formatMoney .Order.Total)) 32}}
{{if .Order.Note}}{{rule}}
Note: {{.Order.Note}}{{end}}
`

// ReceiptRenderer renders platform orders into plain-text receipts using
// Go's text/template package with formatting helpers.
type ReceiptRenderer struct {
	tmpl *template.Template
}

// NewReceiptRenderer creates a renderer with the default receipt layout.
func NewReceiptRenderer() (*ReceiptRenderer, error) {
	return NewReceiptRendererWithTemplate(defaultReceiptTemplate)
}

// NewReceiptRendererWithTemplate creates a renderer with a custom layout.
func NewReceiptRendererWithTemplate(layout string) (*ReceiptRenderer, error) {
	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDateTime": formatDateTime,
		"padLeft":        padLeft,
		"center":         center,
		"rule":           rule,
	}).Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("printing: invalid receipt template: %w", err)
	}
	return &ReceiptRenderer{tmpl: tmpl}, nil
}

// receiptData is the template context for one order.
type receiptData struct {
	PlatformName string
	Order        *platform.PlatformOrder
}

// Render produces the receipt text for one order.
func (r *ReceiptRenderer) Render(order *platform.PlatformOrder) (string, error) {
	var buf bytes.Buffer
	data := receiptData{
		PlatformName: platformDisplayName(order.PlatformCode),
		Order:        order,
	}
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("printing: receipt render failed: %w", err)
	}
	return collapseBlankLines(buf.String()), nil
}

func platformDisplayName(code platform.Code) string {
	switch code {
	case platform.CodeUberEats:
		return "Uber Eats"
	case platform.CodeFoodpanda:
		return "foodpanda"
	default:
		return string(code)
	}
}

func formatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func formatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func rule() string {
	return strings.Repeat("-", receiptWidth)
}

// collapseBlankLines removes the empty lines template conditionals leave
// behind so the paper feed stays short.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	return strings.Join(out, "\n") + "\n"
}
