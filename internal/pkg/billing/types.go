package billing

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Preapproval is the subset of a Mercado Pago preapproval resource this service reads.
type Preapproval struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	Reason            string     `json:"reason,omitempty"`
	PayerEmail        string     `json:"payer_email,omitempty"`
	ExternalReference string     `json:"external_reference,omitempty"`
	PreapprovalPlanID string     `json:"preapproval_plan_id,omitempty"`
	InitPoint         string     `json:"init_point,omitempty"`
	DateCreated       *time.Time `json:"date_created,omitempty"`
	LastModified      *time.Time `json:"last_modified,omitempty"`
}

// SubscriptionRequest describes a new preapproval for a workshop.
type SubscriptionRequest struct {
	ExternalReference string
	PayerEmail        string
	BackURL           string
}

// Notification is the normalized form of an inbound webhook delivery.
type Notification struct {
	Type           string
	Action         string
	SubscriptionID string
	RequestID      string
	Signature      string
	Raw            []byte
}

// flexibleID accepts ids sent either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = flexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexibleID(n.String())
	return nil
}

type webhookPayload struct {
	ID     flexibleID `json:"id"`
	Type   string     `json:"type"`
	Topic  string     `json:"topic"`
	Action string     `json:"action"`
	Data   struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}
