package cli

import (
	"context"
	"strconv"

	"ubot-platform/internal/application"
)

const (
	defaultOwner     = "admin"
	defaultBulkCount = 5
)

// Runner dispatches ubot subcommands to the deployment facade.
type Runner struct {
	App         *application.DeploymentFacade
	Out         *Printer
	DefaultDays int
}

// intArg returns args[i] as a positive int, or def when absent or unparsable.
func intArg(args []string, i, def int) int {
	if i >= len(args) {
		return def
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func strArg(args []string, i int, def string) string {
	if i >= len(args) || args[i] == "" {
		return def
	}
	return args[i]
}

// Run executes one command. Domain failures are printed and returned.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if r.DefaultDays <= 0 {
		r.DefaultDays = 30
	}
	r.Out.Banner()

	if len(args) == 0 {
		r.Out.Help()
		return nil
	}
	cmd, params := args[0], args[1:]

	var err error
	switch cmd {
	case "voucher":
		err = r.voucher(ctx, params)
	case "vouchers":
		err = r.vouchers(ctx, params)
	case "validate":
		err = r.validate(ctx, params)
	case "list":
		err = r.list(ctx, params)
	case "redeem":
		err = r.redeem(ctx, params)
	case "help":
		r.Out.Help()
	default:
		r.Out.Info("Unknown command. Use: ubot help")
		r.Out.Help()
	}
	if err != nil {
		r.Out.Error(err)
	}
	return err
}

// voucher [owner_id] [quantity] [days]
func (r *Runner) voucher(ctx context.Context, params []string) error {
	owner := strArg(params, 0, defaultOwner)
	qty := intArg(params, 1, 1)
	days := intArg(params, 2, r.DefaultDays)

	r.Out.Info("\nGenerating %d voucher(s) for owner: %s", qty, owner)
	r.Out.Info("Expiration: %d days", days)

	if qty == 1 {
		v, err := r.App.IssueVoucher(ctx, owner, days)
		if err != nil {
			return err
		}
		r.Out.Issued(v)
		return nil
	}
	res, err := r.App.IssueBatch(ctx, owner, qty, days)
	if err != nil {
		return err
	}
	r.Out.Batch(res)
	return nil
}

// vouchers generate [owner_id] [quantity]
func (r *Runner) vouchers(ctx context.Context, params []string) error {
	if strArg(params, 0, "") != "generate" {
		r.Out.Usage("ubot vouchers generate [owner_id] [quantity]")
		return nil
	}
	owner := strArg(params, 1, defaultOwner)
	qty := intArg(params, 2, defaultBulkCount)

	r.Out.Info("\nGenerating bulk vouchers")
	res, err := r.App.IssueBatch(ctx, owner, qty, r.DefaultDays)
	if err != nil {
		return err
	}
	r.Out.Batch(res)
	return nil
}

// validate <code>
func (r *Runner) validate(ctx context.Context, params []string) error {
	code := strArg(params, 0, "")
	if code == "" {
		r.Out.Usage("ubot validate <voucher_code>")
		return nil
	}
	r.Out.Info("\nValidating voucher: %s\n", code)
	d, err := r.App.CheckVoucher(ctx, code)
	if err != nil {
		return err
	}
	r.Out.Details(d)
	return nil
}

// list [owner_id]
func (r *Runner) list(ctx context.Context, params []string) error {
	owner := strArg(params, 0, defaultOwner)
	r.Out.Info("\nListing vouchers for owner: %s\n", owner)
	list, err := r.App.VouchersByOwner(ctx, owner)
	if err != nil {
		return err
	}
	r.Out.OwnerTable(owner, list)
	return nil
}

// redeem <code> <user_id>
func (r *Runner) redeem(ctx context.Context, params []string) error {
	code, user := strArg(params, 0, ""), strArg(params, 1, "")
	if code == "" || user == "" {
		r.Out.Usage("ubot redeem <voucher_code> <user_id>")
		return nil
	}
	red, sessionID, err := r.App.RedeemAndLink(ctx, code, user)
	if err != nil {
		return err
	}
	r.Out.Redeemed(red, sessionID)
	return nil
}
