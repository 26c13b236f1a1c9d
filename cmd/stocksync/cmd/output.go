package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mhollis/stocksync/internal/engine"
	domain "github.com/mhollis/stocksync/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printSyncSummary(s *engine.SyncSummary) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Pages:\t%d\n", s.Pages)
	tw.writef("Records:\t%d\n", s.Records)
	tw.writef("Changes logged:\t%d\n", s.ChangesLogged)
	tw.writef("Alerts raised:\t%d\n", s.AlertsRaised)
	tw.writef("Masters:\t%d\n", s.Masters)
	tw.writef("Kits:\t%d\n", s.Kits)
	tw.writef("Duration:\t%s\n", s.Duration)
	return tw.finish()
}

func printHistoryTable(entries []domain.HistoryEntry) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TIMESTAMP\tTYPE\tSKU\tOLD\tNEW\tDIFF\tUSER\tSOURCE\n")
	for i := range entries {
		e := &entries[i]
		tw.writef("%s\t%s\t%s\t%d\t%d\t%+d\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Type,
			e.SKU,
			e.OldQuantity,
			e.NewQuantity,
			e.Difference,
			e.User,
			truncate(e.Source, 30),
		)
	}
	return tw.finish()
}

func printSnapshotsTable(snapshots []domain.Snapshot) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tTIMESTAMP\tTYPE\tPRODUCTS\tVALUE\n")
	for i := range snapshots {
		s := &snapshots[i]
		tw.writef("%s\t%s\t%s\t%d\t$%.2f\n",
			s.ID,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Type,
			s.TotalProducts,
			s.TotalValue,
		)
	}
	return tw.finish()
}

func printSnapshotDetail(s *domain.Snapshot) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", s.ID)
	tw.writef("Timestamp:\t%s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	tw.writef("Type:\t%s\n", s.Type)
	tw.writef("Products:\t%d\n", s.TotalProducts)
	tw.writef("Total Value:\t$%.2f\n", s.TotalValue)
	tw.writef("\nSKU\tNAME\tQTY\tPRICE\n")
	for i := range s.Products {
		p := &s.Products[i]
		tw.writef("%s\t%s\t%d\t$%.2f\n",
			p.SKU, truncate(p.ProductName, 40), p.Quantity, p.SellingPrice)
	}
	return tw.finish()
}

func printComparison(c *domain.SnapshotComparison) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("From:\t%s\n", c.FromID)
	tw.writef("To:\t%s\n", c.ToID)
	tw.writef("Elapsed:\t%s\n", c.Elapsed)
	tw.writef("Product Delta:\t%+d\n", c.ProductDelta)
	tw.writef("Value Delta:\t$%.2f\n", c.ValueDelta)
	if len(c.Changes) == 0 {
		tw.writef("\nNo product changes.\n")
		return tw.finish()
	}
	tw.writef("\nSKU\tNAME\tSTATUS\tOLD\tNEW\tDIFF\n")
	for i := range c.Changes {
		ch := &c.Changes[i]
		tw.writef("%s\t%s\t%s\t%d\t%d\t%+d\n",
			ch.SKU,
			truncate(ch.ProductName, 40),
			ch.Status,
			ch.OldQuantity,
			ch.NewQuantity,
			ch.QuantityDiff,
		)
	}
	return tw.finish()
}

func printUploadsTable(uploads []domain.UploadResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("UPLOAD ID\tTIMESTAMP\tTOTAL\tOK\tERRORS\n")
	for i := range uploads {
		u := &uploads[i]
		tw.writef("%s\t%s\t%d\t%d\t%d\n",
			u.UploadID,
			u.Timestamp.Format("2006-01-02 15:04:05"),
			u.TotalItems,
			u.SuccessCount,
			u.ErrorCount,
		)
	}
	return tw.finish()
}

func printUploadResult(u *domain.UploadResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Upload ID:\t%s\n", u.UploadID)
	tw.writef("Total Items:\t%d\n", u.TotalItems)
	tw.writef("Succeeded:\t%d\n", u.SuccessCount)
	tw.writef("Failed:\t%d\n", u.ErrorCount)
	if err := tw.finish(); err != nil {
		return err
	}
	for _, msg := range u.Errors {
		fmt.Println("  error:", msg)
	}
	for _, msg := range u.Warnings {
		fmt.Println("  warning:", msg)
	}
	return nil
}

func printAlertsTable(alerts []domain.Alert) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("TIMESTAMP\tSEVERITY\tSKU\tSTOCK\tTHRESHOLD\tMESSAGE\n")
	for i := range alerts {
		a := &alerts[i]
		tw.writef("%s\t%s\t%s\t%d\t%d\t%s\n",
			a.Timestamp.Format("2006-01-02 15:04:05"),
			a.Severity,
			a.SKU,
			a.CurrentStock,
			a.Threshold,
			truncate(a.Message, 60),
		)
	}
	return tw.finish()
}

func printRelationshipsTable(rels []domain.ProductRelationship) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("MASTER SKU\tNAME\tPATTERN\tKITS\n")
	for i := range rels {
		r := &rels[i]
		tw.writef("%s\t%s\t%s\t%s\n",
			r.MasterSKU,
			truncate(r.MasterName, 40),
			r.BasePattern,
			strings.Join(r.KitSKUs, ", "),
		)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
