package view

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"
)

//go:embed checkout.html.tmpl
var pageTemplate string

var page = template.Must(template.New("checkout").Funcs(template.FuncMap{
	"pathEscape": url.PathEscape,
}).Parse(pageTemplate))

// HTML writes the checkout document.
func HTML(w io.Writer, pg Page) error {
	return page.Execute(w, pg)
}

// Text renders the page for a terminal. cursor marks the selected row.
func Text(pg Page, cursor int) string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "Checkout")
	fmt.Fprintln(b, "")
	switch {
	case pg.Loading:
		fmt.Fprintln(b, "Loading...")
	case pg.Error != "":
		fmt.Fprintf(b, "Failed to load products: %s\n", pg.Error)
	case pg.ShowTable:
		tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  \tProduct ID\tProduct Name\t# Available\tPrice\tQuantity\tTotal\t\t")
		for i, r := range pg.Rows {
			marker := " "
			if i == cursor {
				marker = ">"
			}
			fmt.Fprintf(tw, "%s \t%s\t%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
				marker, r.ID, r.Name, r.Available, r.Price, r.Quantity, r.LineTotal,
				button("+", r.CanIncrement), button("-", r.CanDecrement))
		}
		_ = tw.Flush()
	}
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Order summary")
	fmt.Fprintf(b, "Discount: %s\n", pg.Discount)
	fmt.Fprintf(b, "Total: %s\n", pg.Total)
	return b.String()
}

func button(label string, enabled bool) string {
	if enabled {
		return "[" + label + "]"
	}
	return " " + label + " "
}
