// Package cli renders the terminal output of the ubot command.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ubot-platform/internal/domain/model"
)

const (
	Version = "1.0.0"
	rule    = "════════════════════════════════════════════════"
)

// Printer writes human readable output to W. Times are shown in Loc.
type Printer struct {
	W   io.Writer
	Loc *time.Location
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{W: w, Loc: time.Local}
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.W, format, args...)
}

func (p *Printer) box(title string) {
	p.printf("╔%s╗\n║  %s\n╚%s╝\n\n", rule, title, rule)
}

func (p *Printer) stamp(t time.Time) string {
	return t.In(p.Loc).Format("2006-01-02 15:04:05")
}

func (p *Printer) day(t time.Time) string {
	return t.In(p.Loc).Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (p *Printer) Banner() {
	p.printf("\n")
	p.box("Ubot Platform - CLI Tool\n║  Version " + Version)
}

func (p *Printer) Error(err error) {
	p.printf("✗ Error: %v\n", err)
}

// Issued prints a single freshly generated voucher.
func (p *Printer) Issued(v *model.IssuedVoucher) {
	p.printf("\n")
	p.box("VOUCHER GENERATED SUCCESSFULLY")
	p.printf("Voucher Code: %s\n", v.Code)
	p.printf("Voucher ID:   %s\n", v.ID)
	p.printf("Expires At:   %s\n", p.stamp(v.ExpiresAt))
	p.printf("Status:       ACTIVE\n\n")
	p.printf("Voucher code ready to share with user\n\n")
}

// Batch prints the codes of a multi-voucher run, numbered by request index.
func (p *Printer) Batch(res *model.BatchResult) {
	p.printf("\n✓ Generated %d vouchers\n", len(res.Succeeded))
	if len(res.Failed) > 0 {
		p.printf("✗ %d failed\n", len(res.Failed))
	}
	p.printf("Voucher Codes:\n\n")
	for i, v := range res.Succeeded {
		p.printf("%d. %s\n", i+1, v.Code)
	}
	p.printf("\n")
}

// Details prints the inspection view of one voucher.
func (p *Printer) Details(d *model.VoucherDetails) {
	p.box("VOUCHER DETAILS")
	status := "✗ INVALID"
	if d.IsValid {
		status = "✓ VALID"
	}
	owner := d.OwnerName
	if owner == "" {
		owner = "Unknown"
	}
	p.printf("Code:      %s\n", d.Code)
	p.printf("Status:    %s\n", status)
	p.printf("Used:      %s\n", yesNo(d.IsUsed))
	p.printf("Expired:   %s\n", yesNo(d.IsExpired))
	p.printf("Owner:     %s\n", owner)
	p.printf("Created:   %s\n", p.stamp(d.CreatedAt))
	p.printf("Expires:   %s\n", p.stamp(d.ExpiresAt))
	if d.UsedAt != nil {
		p.printf("Used At:   %s\n", p.stamp(*d.UsedAt))
	}
	p.printf("\n")
}

// OwnerTable prints an owner's vouchers as an aligned table.
func (p *Printer) OwnerTable(ownerID string, list []*model.VoucherSummary) {
	if len(list) == 0 {
		p.printf("No vouchers found for owner %s\n\n", ownerID)
		return
	}
	p.printf("Found %d vouchers:\n\n", len(list))
	tw := tabwriter.NewWriter(p.W, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CODE\tSTATUS\tCREATED\tEXPIRES")
	for _, v := range list {
		status := "ACTIVE"
		if v.IsUsed {
			status = "USED"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Code, status, p.day(v.CreatedAt), p.day(v.ExpiresAt))
	}
	_ = tw.Flush()
	p.printf("\n")
}

// Redeemed prints the outcome of a terminal redemption.
func (p *Printer) Redeemed(r *model.Redemption, sessionID string) {
	p.box("VOUCHER REDEEMED")
	p.printf("Code:      %s\n", r.Code)
	p.printf("User:      %s\n", r.UserID)
	p.printf("Used At:   %s\n", p.stamp(r.UsedAt))
	p.printf("Session:   %s\n\n", sessionID)
}

type helpEntry struct{ usage, about string }

var (
	commands = []helpEntry{
		{"ubot voucher [owner_id] [quantity] [days]", "Generate one or more vouchers"},
		{"ubot vouchers generate [owner_id] [quantity]", "Generate multiple vouchers (alias for voucher command)"},
		{"ubot validate <voucher_code>", "Check if a voucher is valid"},
		{"ubot list [owner_id]", "List all vouchers for an owner"},
		{"ubot redeem <voucher_code> <user_id>", "Redeem a voucher and open a deployment session"},
		{"ubot help", "Show this help message"},
	}
	examples = []helpEntry{
		{"ubot voucher admin", "Generate 1 voucher for admin"},
		{"ubot vouchers generate admin 10", "Generate 10 vouchers for admin"},
		{"ubot validate UBOT-XXXX-XXXX-XXXX", "Validate a specific voucher"},
		{"ubot list glen", "List all vouchers for glen"},
	}
)

func (p *Printer) Help() {
	p.printf("Available Commands:\n\n")
	for _, c := range commands {
		p.printf("  %s\n    %s\n\n", c.usage, c.about)
	}
	p.printf("Examples:\n\n")
	for _, e := range examples {
		p.printf("  %s\n    → %s\n\n", e.usage, e.about)
	}
}

func (p *Printer) Usage(line string) {
	p.printf("Usage: %s\n", strings.TrimSpace(line))
}

func (p *Printer) Info(format string, args ...any) {
	p.printf(format+"\n", args...)
}
