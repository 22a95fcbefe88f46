package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/service"

	"github.com/shopspring/decimal"
)

// errAborted is returned when the operator declines a confirmation.
var errAborted = errors.New("cancelled by operator")

// errInputClosed is returned when stdin ends while a prompt is waiting.
var errInputClosed = errors.New("input closed")

// certifier is the part of service.PaymentService the commands drive.
type certifier interface {
	Pay(ctx context.Context, amount decimal.Decimal) (*domain.PaymentRecord, error)
	Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error)
	WaitForSettlement(ctx context.Context, ids domain.OrderIdentifier, opts service.PollOptions) (*domain.OrderStatusRecord, error)
	Refund(ctx context.Context, in service.RefundInput) (*domain.RefundRecord, error)
}

// console is the interactive terminal the commands talk through.
type console struct {
	out  io.Writer
	in   io.Reader
	once sync.Once
	// lines is fed by a reader goroutine so prompts can be interrupted.
	lines chan string
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: in, out: out}
}

func (c *console) start() {
	c.lines = make(chan string)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			c.lines <- sc.Text()
		}
		close(c.lines)
	}()
}

// ask prints question and returns the trimmed answer.
func (c *console) ask(ctx context.Context, question string) (string, error) {
	c.once.Do(c.start)
	fmt.Fprint(c.out, question)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", errInputClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// askDefault is ask with a fallback for an empty answer.
func (c *console) askDefault(ctx context.Context, question, def string) (string, error) {
	answer, err := c.ask(ctx, question)
	if err != nil || answer != "" {
		return answer, err
	}
	return def, nil
}

// askRequired rejects an empty answer.
func (c *console) askRequired(ctx context.Context, question, what string) (string, error) {
	answer, err := c.ask(ctx, question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%s must not be empty", what)
	}
	return answer, nil
}

// confirm asks a y/n question; anything but "y" is a no.
func (c *console) confirm(ctx context.Context, question string) (bool, error) {
	answer, err := c.ask(ctx, question+" (y/n): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) section(title string) {
	rule := strings.Repeat("=", 60)
	c.printf("\n%s\n%s\n%s\n", rule, title, rule)
}

// printRecord dumps the raw record followed by a one-line verdict.
func (c *console) printRecord(record *domain.OrderStatusRecord) {
	c.section("Query result")
	data, err := json.MarshalIndent(record, "", "  ")
	if err == nil {
		c.printf("%s\n", data)
	}

	if !record.Succeeded() {
		c.printf("\nQuery rejected: [%s] %s\n", record.RespCode, record.RespDesc)
		return
	}
	c.printf("\nOrder status: %s\n", describeStatus(record.TransStat))
}

func (c *console) printIdentifiers(title string, ids domain.OrderIdentifier) {
	c.printf("\n%s:\n", title)
	c.printf("  req_seq_id:     %s\n", orNA(ids.ReqSeqID))
	c.printf("  req_date:       %s\n", orNA(ids.ReqDate))
	c.printf("  hf_seq_id:      %s\n", orNA(ids.HfSeqID))
	c.printf("  party_order_id: %s\n", orNA(ids.PartyOrderID))
}

func describeStatus(s domain.TransStatus) string {
	switch s {
	case domain.TransStatusSuccess:
		return "SUCCESS (paid)"
	case domain.TransStatusProcessing:
		return "PROCESSING (waiting for the payer)"
	case domain.TransStatusFailed:
		return "FAILED"
	case domain.TransStatusClosed:
		return "CLOSED"
	}
	return s.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// chooseIdentifier runs the identifier menu shared by query and refund.
// dateRequired forces a date prompt for ids that do not embed one.
func (c *console) chooseIdentifier(ctx context.Context, dateRequired bool) (domain.OrderIdentifier, error) {
	var ids domain.OrderIdentifier

	c.printf("\nIdentify the order by:\n")
	c.printf("  1. request sequence id (req_seq_id, date is taken from it)\n")
	c.printf("  2. settlement id (hf_seq_id)\n")
	c.printf("  3. wallet order id (party_order_id)\n")

	choice, err := c.ask(ctx, "\nOption (1/2/3): ")
	if err != nil {
		return ids, err
	}

	switch choice {
	case "1":
		if ids.ReqSeqID, err = c.askRequired(ctx, "req_seq_id: ", "req_seq_id"); err != nil {
			return ids, err
		}
		if d, ok := domain.DateFromReqSeqID(ids.ReqSeqID); ok {
			c.printf("Request date taken from req_seq_id: %s\n", d)
			return ids, nil
		}
		ids.ReqDate, err = c.ask(ctx, "Request date (YYYYMMDD, empty for today): ")
		return ids, err
	case "2":
		ids.HfSeqID, err = c.askRequired(ctx, "hf_seq_id: ", "hf_seq_id")
	case "3":
		ids.PartyOrderID, err = c.askRequired(ctx, "party_order_id: ", "party_order_id")
	default:
		return ids, fmt.Errorf("invalid option %q", choice)
	}
	if err != nil {
		return ids, err
	}

	if dateRequired {
		ids.ReqDate, err = c.askRequired(ctx, "Original request date (YYYYMMDD): ", "request date")
	} else {
		ids.ReqDate, err = c.ask(ctx, "Request date (YYYYMMDD, empty for today): ")
	}
	return ids, err
}
