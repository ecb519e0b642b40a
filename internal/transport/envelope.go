// Package transport decodes the two invocation envelopes of
// spec.md §6 into domain types, using only encoding/json (spec.md §1
// names this "a thin adapter", and SPEC_FULL.md §11.8 keeps it free of
// any third-party dependency for exactly that reason). It never
// imports net/http: cmd/lifecycle-handler and cmd/reconciler own the
// HTTP boundary and translate Response into their runtime's shape.
package transport

import (
	"encoding/json"
	"strings"

	"github.com/nprokhorov/sgdns-discovery/internal/domain"
)

// Response is the `{statusCode, body, handled}` shape every invocation
// returns (spec.md §6).
type Response struct {
	StatusCode int
	Body       string
	Handled    bool
}

func statusResponse(code int, body string) Response {
	return Response{StatusCode: code, Body: body}
}

// snsEnvelope is Trigger 1's outer shape.
type snsEnvelope struct {
	Records []struct {
		Sns struct {
			Message string `json:"Message"`
		} `json:"Sns"`
	} `json:"Records"`
}

// testNotification is the short-circuit shape SNS sends on hook
// subscription confirmation and its periodic test pings.
type testNotification struct {
	Event string `json:"Event"`
}

// awsLifecycleMessage is the inner JSON object of Trigger 1's SNS
// message.
type awsLifecycleMessage struct {
	LifecycleTransition  string `json:"LifecycleTransition"`
	AutoScalingGroupName string `json:"AutoScalingGroupName"`
	EC2InstanceId        string `json:"EC2InstanceId"`
	LifecycleHookName    string `json:"LifecycleHookName"`
	LifecycleActionToken string `json:"LifecycleActionToken"`
	Origin               string `json:"Origin"`
	Destination          string `json:"Destination"`
	Service              string `json:"Service"`
}

// DecodeLifecycleEvent implements spec.md §6 Trigger 1: a
// TEST_NOTIFICATION short-circuits to 200 with no side effects
// (SPEC_FULL.md §12 item 3), a missing LifecycleTransition is a 400,
// any other decode failure is a 500.
func DecodeLifecycleEvent(raw []byte) (domain.LifecycleEvent, *Response) {
	var test testNotification
	if err := json.Unmarshal(raw, &test); err == nil && strings.HasSuffix(test.Event, "TEST_NOTIFICATION") {
		resp := statusResponse(200, "test notification acknowledged")
		return domain.LifecycleEvent{}, &resp
	}

	var envelope snsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Records) == 0 {
		resp := statusResponse(500, "malformed lifecycle envelope: "+errString(err))
		return domain.LifecycleEvent{}, &resp
	}

	var msg awsLifecycleMessage
	if err := json.Unmarshal([]byte(envelope.Records[0].Sns.Message), &msg); err != nil {
		resp := statusResponse(500, "malformed sns message: "+err.Error())
		return domain.LifecycleEvent{}, &resp
	}

	if msg.LifecycleTransition == "" {
		resp := statusResponse(400, "missing LifecycleTransition")
		return domain.LifecycleEvent{}, &resp
	}

	event := domain.LifecycleEvent{
		Transition:  transitionFromRaw(msg.LifecycleTransition),
		SgName:      msg.AutoScalingGroupName,
		InstanceID:  msg.EC2InstanceId,
		HookName:    msg.LifecycleHookName,
		ActionToken: msg.LifecycleActionToken,
	}
	return event, nil
}

// transitionFromRaw maps the raw AWS lifecycle transition string
// ("autoscaling:EC2_INSTANCE_LAUNCHING" / "..._TERMINATING") onto the
// domain's transition set, replacing the origin/destination
// comparison the source used (which compared a string against a list
// literal and could never match DRAINING).
func transitionFromRaw(raw string) domain.Transition {
	switch {
	case strings.Contains(raw, "LAUNCHING"):
		return domain.TransitionLaunching
	case strings.Contains(raw, "TERMINATING"):
		return domain.TransitionDraining
	default:
		return domain.TransitionUnrelated
	}
}

func errString(err error) string {
	if err == nil {
		return "no SNS records"
	}
	return err.Error()
}
