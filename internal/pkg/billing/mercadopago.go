package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eubbbruno/instauto/internal/pkg/env"
)

const (
	defaultMercadoPagoAPIBaseURL = "https://api.mercadopago.com"
	defaultSubscriptionReason    = "Instauto Pro"
	defaultCurrency              = "BRL"
)

var (
	ErrMissingAccessToken  = errors.New("MERCADOPAGO_ACCESS_TOKEN is not configured")
	ErrPreapprovalNotFound = errors.New("preapproval not found")
)

type MercadoPagoClient struct {
	AccessToken string
	APIBaseURL  string

	PlanID   string
	Reason   string
	Amount   float64
	Currency string
	BackURL  string

	HTTPClient *http.Client
}

func NewMercadoPagoClientFromEnv() *MercadoPagoClient {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	backURL := ""
	if base != "" {
		backURL = base + "/oficina/assinatura"
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(env.GetEnv("MERCADOPAGO_PRO_AMOUNT", "0")), 64)
	if err != nil {
		amount = 0
	}

	return &MercadoPagoClient{
		AccessToken: strings.TrimSpace(env.GetEnv("MERCADOPAGO_ACCESS_TOKEN", "")),
		APIBaseURL:  strings.TrimSpace(env.GetEnv("MERCADOPAGO_API_BASE_URL", defaultMercadoPagoAPIBaseURL)),
		PlanID:      strings.TrimSpace(env.GetEnv("MERCADOPAGO_PREAPPROVAL_PLAN_ID", "")),
		Reason:      strings.TrimSpace(env.GetEnv("MERCADOPAGO_SUBSCRIPTION_REASON", defaultSubscriptionReason)),
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(env.GetEnv("MERCADOPAGO_CURRENCY", defaultCurrency))),
		BackURL:     backURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetPreapproval fetches the current state of a subscription.
func (c *MercadoPagoClient) GetPreapproval(ctx context.Context, id string) (*Preapproval, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, ErrMissingAccessToken
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("preapproval id is required")
	}

	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/preapproval/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var out Preapproval
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		out.ID = id
	}
	return &out, nil
}

// CreateSubscription opens a preapproval for the payer and returns it with its checkout URL.
func (c *MercadoPagoClient) CreateSubscription(ctx context.Context, in SubscriptionRequest) (*Preapproval, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, ErrMissingAccessToken
	}
	if strings.TrimSpace(in.PayerEmail) == "" {
		return nil, errors.New("payer email is required")
	}
	if strings.TrimSpace(in.ExternalReference) == "" {
		return nil, errors.New("external reference is required")
	}

	body := map[string]interface{}{
		"reason":             c.Reason,
		"payer_email":        strings.TrimSpace(in.PayerEmail),
		"external_reference": strings.TrimSpace(in.ExternalReference),
		"status":             "pending",
	}
	backURL := strings.TrimSpace(in.BackURL)
	if backURL == "" {
		backURL = c.BackURL
	}
	if backURL != "" {
		body["back_url"] = backURL
	}
	if c.PlanID != "" {
		body["preapproval_plan_id"] = c.PlanID
	} else {
		if c.Amount <= 0 {
			return nil, errors.New("MERCADOPAGO_PREAPPROVAL_PLAN_ID or MERCADOPAGO_PRO_AMOUNT must be configured")
		}
		body["auto_recurring"] = map[string]interface{}{
			"frequency":          1,
			"frequency_type":     "months",
			"transaction_amount": c.Amount,
			"currency_id":        c.Currency,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimRight(c.APIBaseURL, "/") + "/preapproval"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out Preapproval
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("mercadopago create preapproval returned empty id")
	}
	return &out, nil
}

func (c *MercadoPagoClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode == http.StatusNotFound {
		return ErrPreapprovalNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mercadopago request failed: method=%s status=%d body=%s", req.Method, resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode mercadopago response: %w", err)
	}
	return nil
}
