package main

import (
	"context"

	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/spf13/pflag"
)

// identifierFlags are the order identifier flags shared by query and refund.
type identifierFlags struct {
	reqSeqID     string
	hfSeqID      string
	partyOrderID string
	reqDate      string
}

func (f *identifierFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.reqSeqID, "req-seq-id", "", "request sequence id of the order")
	fs.StringVar(&f.hfSeqID, "hf-seq-id", "", "settlement sequence id assigned by the gateway")
	fs.StringVar(&f.partyOrderID, "party-order-id", "", "wallet order id")
	fs.StringVar(&f.reqDate, "req-date", "", "request date YYYYMMDD, taken from --req-seq-id when omitted")
}

func (f identifierFlags) identifier() domain.OrderIdentifier {
	return domain.OrderIdentifier{
		ReqSeqID:     f.reqSeqID,
		HfSeqID:      f.hfSeqID,
		PartyOrderID: f.partyOrderID,
		ReqDate:      f.reqDate,
	}
}

type queryOptions struct {
	ids  identifierFlags
	wait bool
}

func (o *queryOptions) register(fs *pflag.FlagSet) {
	o.ids.register(fs)
	fs.BoolVar(&o.wait, "wait", false, "poll until the order reaches a terminal status")
}

// runQuery looks an order up once, or waits for it to settle with --wait.
func runQuery(ctx context.Context, con *console, svc certifier, poll service.PollOptions, opts queryOptions) error {
	con.section("Order query")

	ids := opts.ids.identifier()
	if ids.Validate() != nil {
		var err error
		if ids, err = con.chooseIdentifier(ctx, false); err != nil {
			return err
		}
	}

	var (
		record *domain.OrderStatusRecord
		err    error
	)
	if opts.wait {
		con.printf("\nWaiting for a terminal status (up to %s, every %s)...\n", poll.MaxWait, poll.Interval)
		record, err = svc.WaitForSettlement(ctx, ids, poll)
	} else {
		record, err = svc.Query(ctx, ids)
	}
	if err != nil {
		return err
	}

	con.printRecord(record)
	if !record.Succeeded() {
		return &service.RejectedError{Code: record.RespCode, Desc: record.RespDesc}
	}
	return nil
}
