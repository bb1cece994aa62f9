package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification_Body(t *testing.T) {
	body := []byte(`{"id":12345,"type":"subscription_preapproval","action":"updated","data":{"id":"2c938084726fca480172750000000000"}}`)
	n, err := ParseNotification(body, nil)
	require.NoError(t, err)
	assert.Equal(t, "subscription_preapproval", n.Type)
	assert.Equal(t, "updated", n.Action)
	assert.Equal(t, "2c938084726fca480172750000000000", n.SubscriptionID)
	assert.Equal(t, body, n.Raw)
}

func TestParseNotification_NumericDataID(t *testing.T) {
	n, err := ParseNotification([]byte(`{"topic":"preapproval","data":{"id":987654321}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "preapproval", n.Type)
	assert.Equal(t, "987654321", n.SubscriptionID)
}

func TestParseNotification_QueryFallback(t *testing.T) {
	q := url.Values{}
	q.Set("topic", "preapproval")
	q.Set("id", "pre-9")

	n, err := ParseNotification(nil, q.Get)
	require.NoError(t, err)
	assert.Equal(t, "preapproval", n.Type)
	assert.Equal(t, "pre-9", n.SubscriptionID)

	q = url.Values{}
	q.Set("type", "subscription_preapproval")
	q.Set("data.id", "pre-10")
	n, err = ParseNotification([]byte(`{}`), q.Get)
	require.NoError(t, err)
	assert.Equal(t, "subscription_preapproval", n.Type)
	assert.Equal(t, "pre-10", n.SubscriptionID)
}

func TestParseNotification_InvalidJSON(t *testing.T) {
	_, err := ParseNotification([]byte(`{"type":`), nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestVerifyMercadoPagoSignature(t *testing.T) {
	secret := "top-secret"
	manifest := "id:pre-abc;request-id:req-1;ts:1704908010;"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	sig := hex.EncodeToString(mac.Sum(nil))
	header := "ts=1704908010,v1=" + sig

	assert.True(t, VerifyMercadoPagoSignature(header, "req-1", "PRE-ABC", secret))
	assert.False(t, VerifyMercadoPagoSignature(header, "req-2", "pre-abc", secret))
	assert.False(t, VerifyMercadoPagoSignature(header, "req-1", "pre-abc", "other"))
	assert.False(t, VerifyMercadoPagoSignature("ts=1704908010", "req-1", "pre-abc", secret))
	assert.False(t, VerifyMercadoPagoSignature("ts=1,v1=zz", "req-1", "pre-abc", secret))
	assert.False(t, VerifyMercadoPagoSignature(header, "req-1", "pre-abc", ""))
}
