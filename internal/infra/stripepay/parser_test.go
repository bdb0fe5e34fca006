package stripepay

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/yanqian/roofbook/internal/domain/payment"
)

const testSecret = "whsec_test"

func signed(t *testing.T, body string) ([]byte, string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(body),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Payload, sp.Header
}

func eventBody(id, typ, object string) string {
	return fmt.Sprintf(`{"id":%q,"object":"event","type":%q,"api_version":%q,"created":1792000000,"data":{"object":%s}}`,
		id, typ, stripe.APIVersion, object)
}

func TestParser_SucceededIntent(t *testing.T) {
	p := NewParser(testSecret, time.Minute)
	body, sig := signed(t, eventBody("evt_1", "payment_intent.succeeded",
		`{"id":"pi_1","object":"payment_intent","amount":19900,"currency":"usd","metadata":{"measurement_id":"lead-1"}}`))

	evt, err := p.Parse(body, sig)
	require.NoError(t, err)
	require.Equal(t, "evt_1", evt.ID)
	require.Equal(t, payment.OutcomeSucceeded, evt.Outcome)
	require.Equal(t, "pi_1", evt.PaymentIntentID)
	require.EqualValues(t, 19900, evt.AmountCents)
	require.Equal(t, "usd", evt.Currency)
	require.Equal(t, "lead-1", evt.MeasurementID)
}

func TestParser_FailedIntentAndOtherEvents(t *testing.T) {
	p := NewParser(testSecret, 0)
	body, sig := signed(t, eventBody("evt_2", "payment_intent.payment_failed",
		`{"id":"pi_2","object":"payment_intent","amount":500,"currency":"usd","last_payment_error":{"message":"card declined"}}`))
	evt, err := p.Parse(body, sig)
	require.NoError(t, err)
	require.Equal(t, payment.OutcomeFailed, evt.Outcome)
	require.Equal(t, "card declined", evt.FailureMessage)

	body, sig = signed(t, eventBody("evt_3", "customer.created", `{"id":"cus_1","object":"customer"}`))
	evt, err = p.Parse(body, sig)
	require.NoError(t, err)
	require.Empty(t, evt.Outcome)
}

func TestParser_RejectsBadSignature(t *testing.T) {
	require.Nil(t, NewParser(" ", time.Minute))

	p := NewParser(testSecret, time.Minute)
	body, _ := signed(t, eventBody("evt_4", "payment_intent.succeeded", `{"id":"pi_4"}`))
	_, err := p.Parse(body, "t=1,v1=deadbeef")
	require.ErrorIs(t, err, payment.ErrInvalidSignature)
	_, err = p.Parse(body, "")
	require.ErrorIs(t, err, payment.ErrInvalidSignature)
}
