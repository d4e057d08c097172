package stripe

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"

	"payflow-backend/internal/domains/payment/model"
)

const testSecret = "whsec_test_secret"

// sign produces a valid Stripe-Signature header for payload.
func sign(payload []byte, secret string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func eventJSON(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"type":%q,"created":1700000100,"data":{"object":%s}}`, id, eventType, object))
}

func TestVerifyAndClassify_SignatureChecks(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_sig", "payment_intent.succeeded", `{"id":"pi_1","status":"succeeded"}`)

	t.Run("missing header", func(t *testing.T) {
		_, err := v.VerifyAndClassify(payload, "")
		require.Error(t, err)
		assert.Equal(t, model.ErrKindWebhookSignature, model.KindOf(err))
	})

	t.Run("garbage header", func(t *testing.T) {
		_, err := v.VerifyAndClassify(payload, "t=123,v1=deadbeef")
		require.Error(t, err)
		assert.Equal(t, model.ErrKindWebhookSignature, model.KindOf(err))
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.VerifyAndClassify(payload, sign(payload, "whsec_other"))
		require.Error(t, err)
		assert.Equal(t, model.ErrKindWebhookSignature, model.KindOf(err))
	})

	t.Run("tampered payload", func(t *testing.T) {
		header := sign(payload, testSecret)
		tampered := eventJSON("evt_sig", "payment_intent.succeeded", `{"id":"pi_2","status":"succeeded"}`)
		_, err := v.VerifyAndClassify(tampered, header)
		require.Error(t, err)
		assert.Equal(t, model.ErrKindWebhookSignature, model.KindOf(err))
	})
}

func TestVerifyAndClassify_PaymentIntentTrigger(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_pi_1", "payment_intent.succeeded", `{"id":"pi_3AbC","status":"succeeded"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPayment, trigger.Kind)
	require.NotNil(t, trigger.Payment)

	assert.Equal(t, "evt_pi_1", trigger.Payment.EventID.String())
	assert.Equal(t, "payment_intent.succeeded", trigger.Payment.EventType)
	assert.Equal(t, "pi_3AbC", trigger.Payment.ExternalID.String())
	assert.Equal(t, int64(1700000100), trigger.Payment.ProviderTS)
	assert.JSONEq(t, string(payload), string(trigger.Payment.RawEvent))
}

func TestVerifyAndClassify_RefundTrigger(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_re_1", "refund.created", `{"id":"re_9XyZ","status":"pending"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPayment, trigger.Kind)
	assert.Equal(t, "re_9XyZ", trigger.Payment.ExternalID.String())
	assert.Equal(t, "refund.created", trigger.Payment.EventType)
}

func TestVerifyAndClassify_InvalidObjectIDIsIgnored(t *testing.T) {
	v := NewVerifier(testSecret)
	// A payment_intent event whose object id has the wrong prefix. Stripe
	// will retry a non-2xx forever, so this classifies as ignorable instead
	// of erroring.
	payload := eventJSON("evt_bad_obj", "payment_intent.succeeded", `{"id":"tr_wrong","status":"succeeded"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, model.TriggerIgnored, trigger.Kind)
	assert.Nil(t, trigger.Payment)
	assert.Nil(t, trigger.Passthrough)
}

func TestVerifyAndClassify_ChargePassthroughLinked(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_ch_1", "charge.succeeded", `{"id":"ch_1","payment_intent":"pi_parent","status":"succeeded"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPassthrough, trigger.Kind)
	require.NotNil(t, trigger.Passthrough)

	require.NotNil(t, trigger.Passthrough.ExternalID)
	assert.Equal(t, "pi_parent", trigger.Passthrough.ExternalID.String())
	assert.Equal(t, "evt_ch_1", trigger.Passthrough.EventID.String())
	assert.Equal(t, "charge.succeeded", trigger.Passthrough.EventType)
	assert.Equal(t, model.ActorWebhookStripe, trigger.Passthrough.Actor)
}

func TestVerifyAndClassify_ChargePassthroughUnlinked(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_ch_2", "charge.updated", `{"id":"ch_2","status":"succeeded"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPassthrough, trigger.Kind)
	assert.Nil(t, trigger.Passthrough.ExternalID)
}

func TestVerifyAndClassify_ChargeWithBadParentErrors(t *testing.T) {
	v := NewVerifier(testSecret)
	// The embedded payment_intent id fails validation; unlike the trigger
	// path this propagates, because the envelope itself is malformed.
	payload := eventJSON("evt_ch_3", "charge.succeeded", `{"id":"ch_3","payment_intent":"bogus_id"}`)

	_, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.Error(t, err)
	assert.Equal(t, model.ErrKindValidation, model.KindOf(err))
}

func TestVerifyAndClassify_ChargeRefundStaysUnlinked(t *testing.T) {
	v := NewVerifier(testSecret)
	// charge.refund.updated carries a refund object. It must not be parsed
	// as a charge and must not trigger payment processing.
	payload := eventJSON("evt_chre_1", "charge.refund.updated", `{"id":"re_5","payment_intent":"pi_x","status":"succeeded"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPassthrough, trigger.Kind)
	assert.Nil(t, trigger.Passthrough.ExternalID)
	assert.Equal(t, "charge.refund.updated", trigger.Passthrough.EventType)
}

func TestVerifyAndClassify_UnrelatedEventPassthrough(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("evt_inv_1", "invoice.paid", `{"id":"in_1"}`)

	trigger, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.NoError(t, err)
	require.Equal(t, model.TriggerPassthrough, trigger.Kind)
	assert.Nil(t, trigger.Passthrough.ExternalID)
	assert.Equal(t, "invoice.paid", trigger.Passthrough.EventType)
	assert.JSONEq(t, string(payload), string(trigger.Passthrough.RawPayload))
}

func TestVerifyAndClassify_BadEventIDPropagates(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := eventJSON("not_an_event_id", "payment_intent.succeeded", `{"id":"pi_1"}`)

	_, err := v.VerifyAndClassify(payload, sign(payload, testSecret))
	require.Error(t, err)
	assert.Equal(t, model.ErrKindValidation, model.KindOf(err))
}
