package billing

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidPayload = errors.New("invalid webhook payload")

// ParseNotification normalizes a webhook delivery. Mercado Pago sends the
// category and id either in the JSON body or as query parameters depending
// on the notification version, so both are consulted. An empty body is fine.
func ParseNotification(body []byte, query func(key string) string) (Notification, error) {
	n := Notification{Raw: body}
	if query == nil {
		query = func(string) string { return "" }
	}

	var p webhookPayload
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &p); err != nil {
			return n, ErrInvalidPayload
		}
	}

	n.Type = firstNonEmpty(p.Type, p.Topic, query("type"), query("topic"))
	n.Action = strings.TrimSpace(p.Action)
	n.SubscriptionID = firstNonEmpty(string(p.Data.ID), query("data.id"), query("id"))
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
