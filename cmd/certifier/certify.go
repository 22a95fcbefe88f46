package main

import (
	"context"
	"errors"

	"qrpay-certifier/internal/core/qrterm"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/spf13/pflag"
)

type certifyOptions struct {
	amount string
	wait   bool
	yes    bool
}

func (o *certifyOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.amount, "amount", "", "payment amount in CNY, prompts when empty (minimum 1.00)")
	fs.BoolVar(&o.wait, "wait", false, "wait for settlement without asking")
	fs.BoolVar(&o.yes, "yes", false, "refund the full amount without asking")
}

// runCertify walks through the certification scenario: a QR payment of at
// least 1.00, an optional settlement wait and a refund of the payment.
func runCertify(ctx context.Context, con *console, svc certifier, poll service.PollOptions, opts certifyOptions) error {
	con.section("Merchant certification: QR payment + refund")
	con.printf("\nRequirements:\n")
	con.printf("  1. Aggregated QR payment (trade_type A_NATIVE) of at least 1.00\n")
	con.printf("  2. Refund of that payment back to the payer\n")
	con.printf("  req_seq_id must carry the user id and the request date\n")

	con.section("Step 1: QR payment")

	amountText := opts.amount
	if amountText == "" {
		var err error
		if amountText, err = con.askDefault(ctx, "\nPayment amount (default 1.00): ", "1.00"); err != nil {
			return err
		}
	}
	amount, err := domain.ParseAmount(amountText)
	if err != nil {
		return err
	}

	payment, err := svc.Pay(ctx, amount)
	if err != nil {
		return err
	}

	original := payment.Identifier()

	switch payment.TransStat {
	case domain.TransStatusSuccess:
		con.printf("\nPayment succeeded.\n")

	case domain.TransStatusProcessing:
		if payment.QRCode == "" {
			con.printf("\nOrder placed, status %s.\n", payment.TransStat)
			break
		}

		con.printf("\nScan the code below with Alipay to pay %s:\n", domain.FormatAmount(amount))
		if err := qrterm.Render(con.out, payment.QRCode); err != nil {
			return err
		}

		wait := opts.wait
		if !wait {
			if wait, err = con.confirm(ctx, "\nWait for the payment to complete?"); err != nil {
				return err
			}
		}
		if wait {
			original = waitAfterPayment(ctx, con, svc, poll, original)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

	default:
		con.printf("\nOrder placed, status %s.\n", payment.TransStat)
	}

	con.printIdentifiers("Original transaction", original)

	con.section("Step 2: refund")

	refund := opts.yes
	if !refund {
		if refund, err = con.confirm(ctx, "\nContinue with the refund?"); err != nil {
			return err
		}
	}
	if !refund {
		con.printf("\nRefund skipped. To refund later use hf_seq_id %s.\n", orNA(original.HfSeqID))
		return nil
	}

	refundAmount := amount
	if !opts.yes {
		text, err := con.askDefault(ctx, "Refund amount (paid "+domain.FormatAmount(amount)+"): ", domain.FormatAmount(amount))
		if err != nil {
			return err
		}
		if refundAmount, err = domain.ParseAmount(text); err != nil {
			return err
		}
	}

	record, err := svc.Refund(ctx, service.RefundInput{
		Original:       original,
		Amount:         refundAmount,
		OriginalAmount: amount,
	})
	if err != nil {
		return err
	}

	con.printf("\nRefund accepted.\n")

	con.section("Certification complete")
	con.printf("\nSubmit these on the certification page:\n")
	con.printf("\n  QR payment req_seq_id: %s\n", original.ReqSeqID)
	con.printf("  Refund req_seq_id:     %s\n", orNA(record.ReqSeqID))
	return nil
}

// waitAfterPayment polls the payment and returns the identifiers enriched
// with whatever the settled record adds. Failures are reported, not returned:
// the operator may still refund by hand.
func waitAfterPayment(ctx context.Context, con *console, svc certifier, poll service.PollOptions, ids domain.OrderIdentifier) domain.OrderIdentifier {
	con.printf("\nWaiting for the payment (up to %s, every %s)...\n", poll.MaxWait, poll.Interval)

	final, err := svc.WaitForSettlement(ctx, ids, poll)
	switch {
	case errors.Is(err, service.ErrPollTimeout):
		con.printf("\nPayment status could not be confirmed, query it later.\n")
		return ids
	case err != nil:
		if ctx.Err() == nil {
			con.printf("\nWaiting failed: %v\n", err)
		}
		return ids
	}

	if final.TransStat != domain.TransStatusSuccess {
		con.printf("\nPayment status: %s. Check it before continuing.\n", final.TransStat)
		return ids
	}

	con.printf("\nPayment completed, the refund can proceed.\n")
	if final.HfSeqID != "" {
		ids.HfSeqID = final.HfSeqID
	}
	if final.PartyOrderID != "" {
		ids.PartyOrderID = final.PartyOrderID
	}
	return ids
}
