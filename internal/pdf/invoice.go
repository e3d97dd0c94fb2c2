// Package pdf renders invoices as PDF documents.
package pdf

import (
	"fmt"

	"github.com/diewo77/go-invoices/i18n"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceDocument is the display-ready content of one invoice.
type InvoiceDocument struct {
	Lang          string
	Number        string
	Date          string
	Status        string
	CustomerName  string
	CustomerEmail string
	Lines         []Line
	Total         string
}

// Line is one product of the invoice.
type Line struct {
	Name        string
	Description string
	Price       string
}

// NewInvoiceDocument formats row for lang with f.
func NewInvoiceDocument(row services.InvoiceRow, f *money.Formatter, lang string) InvoiceDocument {
	if f == nil {
		f = money.Default()
	}
	doc := InvoiceDocument{
		Lang:          lang,
		Number:        row.ID.String(),
		Date:          row.Date.Format("2006-01-02"),
		Status:        i18n.T(lang, string(row.Status)),
		CustomerName:  row.Customer.Name,
		CustomerEmail: row.Customer.Email,
		Total:         f.Cents(row.Amount),
	}
	for _, p := range row.Products {
		doc.Lines = append(doc.Lines, Line{Name: p.Name, Description: p.Description, Price: f.Cents(p.Price)})
	}
	return doc
}

// InvoicePDF renders doc and returns the PDF bytes.
func InvoicePDF(doc InvoiceDocument) ([]byte, error) {
	t := func(code string) string { return i18n.T(doc.Lang, code) }

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "{current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, t("pdf_invoice"), props.Text{Size: 20, Style: fontstyle.Bold, Align: align.Left}),
	)
	m.AddRow(22,
		col.New(6).Add(
			text.New("# "+doc.Number, props.Text{Size: 9}),
			text.New(t("pdf_date")+": "+doc.Date, props.Text{Top: 5, Size: 9}),
			text.New(t("pdf_status")+": "+doc.Status, props.Text{Top: 10, Size: 9}),
		),
		col.New(6).Add(
			text.New(t("pdf_bill_to"), props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(doc.CustomerName, props.Text{Top: 5, Align: align.Right}),
			text.New(doc.CustomerEmail, props.Text{Top: 10, Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(10,
		text.NewCol(9, t("pdf_product"), props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, t("pdf_price"), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, l := range doc.Lines {
		name := l.Name
		if l.Description != "" {
			name = fmt.Sprintf("%s - %s", l.Name, l.Description)
		}
		m.AddRow(8,
			text.NewCol(9, name, props.Text{Size: 9}),
			text.NewCol(3, l.Price, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(6),
		text.NewCol(3, t("pdf_total"), props.Text{Style: fontstyle.Bold, Top: 3}),
		text.NewCol(3, doc.Total, props.Text{Style: fontstyle.Bold, Top: 3, Align: align.Right}),
	)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return out.GetBytes(), nil
}
