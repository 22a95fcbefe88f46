package main

import (
	"context"

	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

type refundOptions struct {
	ids       identifierFlags
	refundAmt string
	yes       bool
}

func (o *refundOptions) register(fs *pflag.FlagSet) {
	o.ids.register(fs)
	fs.StringVar(&o.refundAmt, "refund-amt", "", "amount to refund, prompts when empty (default 1.00)")
	fs.BoolVar(&o.yes, "yes", false, "skip the confirmation")
}

// runRefund refunds an earlier payment on its own.
func runRefund(ctx context.Context, con *console, svc certifier, opts refundOptions) error {
	con.section("Refund")

	ids := opts.ids.identifier()
	if ids.Validate() != nil {
		var err error
		if ids, err = con.chooseIdentifier(ctx, true); err != nil {
			return err
		}
	} else if ids.ReqDate == "" {
		if d, ok := domain.DateFromReqSeqID(ids.ReqSeqID); ok {
			con.printf("Request date taken from req_seq_id: %s\n", d)
		}
	}

	amountText := opts.refundAmt
	if amountText == "" {
		var err error
		if amountText, err = con.askDefault(ctx, "Refund amount (default 1.00): ", "1.00"); err != nil {
			return err
		}
	}
	amount, err := domain.ParseAmount(amountText)
	if err != nil {
		return err
	}
	if err := domain.ValidateRefundAmount(amount, decimal.Zero); err != nil {
		return err
	}

	con.printf("\nAbout to refund %s\n", domain.FormatAmount(amount))
	con.printIdentifiers("Original transaction", ids)

	if !opts.yes {
		ok, err := con.confirm(ctx, "\nExecute the refund?")
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	record, err := svc.Refund(ctx, service.RefundInput{Original: ids, Amount: amount})
	if err != nil {
		return err
	}

	con.section("Refund accepted")
	con.printf("\n  refund req_seq_id: %s\n", orNA(record.ReqSeqID))
	con.printf("  hf_seq_id:         %s\n", orNA(record.HfSeqID))
	con.printf("  amount:            %s\n", domain.FormatAmount(amount))
	con.printf("\nFunds return to the paying account.\n")
	return nil
}
