package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

func TestDecodeLifecycleEvent_TestNotificationReturns200NoSideEffects(t *testing.T) {
	event, resp := DecodeLifecycleEvent([]byte(`{"Event": "autoscaling:TEST_NOTIFICATION"}`))
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, domain.LifecycleEvent{}, event)
}

func TestDecodeLifecycleEvent_MissingTransitionReturns400(t *testing.T) {
	raw := `{"Records": [{"Sns": {"Message": "{\"AutoScalingGroupName\": \"asg-a\"}"}}]}`
	_, resp := DecodeLifecycleEvent([]byte(raw))
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDecodeLifecycleEvent_MalformedEnvelopeReturns500(t *testing.T) {
	_, resp := DecodeLifecycleEvent([]byte(`not json`))
	require.NotNil(t, resp)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestDecodeLifecycleEvent_MalformedSnsMessageReturns500(t *testing.T) {
	raw := `{"Records": [{"Sns": {"Message": "not json"}}]}`
	_, resp := DecodeLifecycleEvent([]byte(raw))
	require.NotNil(t, resp)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestDecodeLifecycleEvent_LaunchingDecodesFields(t *testing.T) {
	inner := `{"LifecycleTransition":"autoscaling:EC2_INSTANCE_LAUNCHING","AutoScalingGroupName":"asg-a",` +
		`"EC2InstanceId":"i-1","LifecycleHookName":"hook","LifecycleActionToken":"tok"}`
	raw := `{"Records": [{"Sns": {"Message": ` + jsonQuote(inner) + `}}]}`
	event, resp := DecodeLifecycleEvent([]byte(raw))
	require.Nil(t, resp)
	assert.Equal(t, domain.TransitionLaunching, event.Transition)
	assert.Equal(t, "asg-a", event.SgName)
	assert.Equal(t, "i-1", event.InstanceID)
	assert.Equal(t, "hook", event.HookName)
	assert.Equal(t, "tok", event.ActionToken)
}

func TestDecodeLifecycleEvent_TerminatingMapsToDraining(t *testing.T) {
	inner := `{"LifecycleTransition":"autoscaling:EC2_INSTANCE_TERMINATING","AutoScalingGroupName":"asg-a",` +
		`"EC2InstanceId":"i-1","LifecycleHookName":"hook","LifecycleActionToken":"tok"}`
	raw := `{"Records": [{"Sns": {"Message": ` + jsonQuote(inner) + `}}]}`
	event, resp := DecodeLifecycleEvent([]byte(raw))
	require.Nil(t, resp)
	assert.Equal(t, domain.TransitionDraining, event.Transition)
}

func TestDecodeLifecycleEvent_UnrecognizedTransitionIsUnrelated(t *testing.T) {
	inner := `{"LifecycleTransition":"autoscaling:SOMETHING_ELSE","AutoScalingGroupName":"asg-a"}`
	raw := `{"Records": [{"Sns": {"Message": ` + jsonQuote(inner) + `}}]}`
	event, resp := DecodeLifecycleEvent([]byte(raw))
	require.Nil(t, resp)
	assert.Equal(t, domain.TransitionUnrelated, event.Transition)
}

func jsonQuote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
