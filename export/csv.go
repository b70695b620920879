// Package export renders sales history for spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
)

// Header is the fixed first row of every sales export.
var Header = []string{"Fecha", "Agencia", "Producto", "Cantidad"}

// DateLayout is how sale timestamps appear in the export.
const DateLayout = "2006-01-02 15:04"

// ContentType is served with CSV downloads.
const ContentType = "text/csv; charset=utf-8"

// WriteSalesCSV writes one row per (sale, item) pair in sale order. Dates are
// rendered in loc (UTC when nil). A sale referencing an id outside the
// catalog fails the whole export and nothing is written to w.
func WriteSalesCSV(w io.Writer, sales []ledger.Sale, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, sale := range sales {
		agency, err := catalog.LookupAgency(sale.AgencyID)
		if err != nil {
			return fmt.Errorf("sale %s: %w", sale.ID, err)
		}
		date := sale.Date.In(loc).Format(DateLayout)
		for _, it := range sale.Items {
			product, err := catalog.LookupProduct(it.ProductID)
			if err != nil {
				return fmt.Errorf("sale %s: %w", sale.ID, err)
			}
			row := []string{date, agency.Name, product.Name, strconv.Itoa(it.Quantity)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// FileName is the download name for an export produced at now.
func FileName(now time.Time) string {
	return "reporte_ventas_" + now.Format("2006-01-02") + ".csv"
}
