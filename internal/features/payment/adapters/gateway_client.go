package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"qrpay-certifier/internal/core/config"
	"qrpay-certifier/internal/core/httpclient"
	"qrpay-certifier/internal/core/proxy"
	"qrpay-certifier/internal/features/payment/domain"
	"qrpay-certifier/internal/features/payment/ports"
)

const (
	payPath    = "/v3/trade/payment/jspay"
	queryPath  = "/v3/trade/payment/scanpay/query"
	refundPath = "/v3/trade/payment/scanpay/refund"

	// tradeTypeAlipayNative asks for a QR code the payer scans with Alipay.
	tradeTypeAlipayNative = "A_NATIVE"
)

// Signer signs the serialized request data.
type Signer interface {
	Sign(data []byte) (string, error)
}

// GatewayClient implements ports.PaymentGateway over the gateway's JSON API.
type GatewayClient struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the gateway API root, without trailing slash.
	baseURL string
	// merchant identifies the caller.
	merchant config.MerchantConfig
	// signer signs every request body with the merchant key.
	signer Signer
}

// NewGatewayClient creates a new instance of GatewayClient.
func NewGatewayClient(gw config.GatewayConfig, merchant config.MerchantConfig, p proxy.Settings, signer Signer) *GatewayClient {
	return &GatewayClient{
		client:   httpclient.NewClient(gw.Timeout(), p),
		baseURL:  strings.TrimRight(gw.URL, "/"),
		merchant: merchant,
		signer:   signer,
	}
}

// gatewayRequest is the signed envelope posted to every endpoint.
type gatewayRequest struct {
	SysID     string          `json:"sys_id"`
	ProductID string          `json:"product_id"`
	Data      json.RawMessage `json:"data"`
	Sign      string          `json:"sign"`
}

// gatewayResponse is the envelope returned by the gateway. The response
// signature is not verified.
type gatewayResponse struct {
	Data gatewayData `json:"data"`
	Sign string      `json:"sign"`
}

// gatewayData holds the fields the certifier reads; the rest are ignored.
type gatewayData struct {
	RespCode     string `json:"resp_code"`
	RespDesc     string `json:"resp_desc"`
	TransStat    string `json:"trans_stat"`
	ReqSeqID     string `json:"req_seq_id"`
	ReqDate      string `json:"req_date"`
	HfSeqID      string `json:"hf_seq_id"`
	PartyOrderID string `json:"party_order_id"`
	TransAmt     string `json:"trans_amt"`
	OrdAmt       string `json:"ord_amt"`
	QRCode       string `json:"qr_code"`
}

func (d gatewayData) toRecord() domain.OrderStatusRecord {
	return domain.OrderStatusRecord{
		RespCode:     d.RespCode,
		RespDesc:     d.RespDesc,
		TransStat:    domain.TransStatus(d.TransStat),
		ReqSeqID:     d.ReqSeqID,
		ReqDate:      d.ReqDate,
		HfSeqID:      d.HfSeqID,
		PartyOrderID: d.PartyOrderID,
		TransAmt:     d.TransAmt,
	}
}

// Pay places an aggregated NATIVE payment and returns the QR code to scan.
func (c *GatewayClient) Pay(ctx context.Context, req ports.PayRequest) (*domain.PaymentRecord, error) {
	data := map[string]string{
		"req_seq_id": req.ReqSeqID,
		"req_date":   req.ReqDate,
		"huifu_id":   c.merchant.HuifuID,
		"trade_type": tradeTypeAlipayNative,
		"trans_amt":  req.TransAmt,
		"goods_desc": req.GoodsDesc,
	}

	resp, err := c.post(ctx, payPath, data)
	if err != nil {
		return nil, err
	}

	return &domain.PaymentRecord{
		OrderStatusRecord: resp.toRecord(),
		QRCode:            resp.QRCode,
	}, nil
}

// Query fetches the current status of an order.
func (c *GatewayClient) Query(ctx context.Context, ids domain.OrderIdentifier) (*domain.OrderStatusRecord, error) {
	data := map[string]string{
		"huifu_id": c.merchant.HuifuID,
		"req_date": ids.ReqDate,
	}
	putIfSet(data, "req_seq_id", ids.ReqSeqID)
	putIfSet(data, "hf_seq_id", ids.HfSeqID)
	putIfSet(data, "party_order_id", ids.PartyOrderID)

	resp, err := c.post(ctx, queryPath, data)
	if err != nil {
		return nil, err
	}

	record := resp.toRecord()
	return &record, nil
}

// Refund returns funds of an earlier payment.
func (c *GatewayClient) Refund(ctx context.Context, req ports.RefundRequest) (*domain.RefundRecord, error) {
	data := map[string]string{
		"req_seq_id":   req.ReqSeqID,
		"req_date":     req.ReqDate,
		"huifu_id":     c.merchant.HuifuID,
		"ord_amt":      req.OrdAmt,
		"org_req_date": req.Original.ReqDate,
	}
	putIfSet(data, "org_req_seq_id", req.Original.ReqSeqID)
	putIfSet(data, "org_hf_seq_id", req.Original.HfSeqID)
	putIfSet(data, "party_order_id", req.Original.PartyOrderID)

	resp, err := c.post(ctx, refundPath, data)
	if err != nil {
		return nil, err
	}

	return &domain.RefundRecord{
		OrderStatusRecord: resp.toRecord(),
		OrdAmt:            resp.OrdAmt,
	}, nil
}

func putIfSet(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// post signs data, sends the envelope and decodes the response data.
func (c *GatewayClient) post(ctx context.Context, path string, data map[string]string) (*gatewayData, error) {
	// map keys marshal in sorted order, which is the canonical form the gateway signs
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request data: %w", err)
	}

	sign, err := c.signer.Sign(payload)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(gatewayRequest{
		SysID:     c.merchant.SysID,
		ProductID: c.merchant.ProductID,
		Data:      payload,
		Sign:      sign,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("gateway API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if out.Data.RespCode == "" {
		return nil, fmt.Errorf("gateway response carries no resp_code")
	}

	return &out.Data, nil
}
