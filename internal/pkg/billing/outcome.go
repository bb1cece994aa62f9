package billing

import "github.com/eubbbruno/instauto/app/models"

type OutcomeKind string

const (
	OutcomeProcessed OutcomeKind = "processed"
	OutcomeIgnored   OutcomeKind = "ignored"
	OutcomeError     OutcomeKind = "error"
)

// Ignore reasons
const (
	ReasonEventTypeNotHandled   = "event_type_not_handled"
	ReasonMissingSubscriptionID = "missing_subscription_id"
	ReasonWorkshopNotFound      = "workshop_not_found"
	ReasonInvalidSignature      = "invalid_signature"
	ReasonInvalidPayload        = "invalid_payload"
)

// Failure stages
const (
	StageStatusFetch    = "status_fetch_failed"
	StageWorkshopLookup = "workshop_lookup_failed"
	StageUpdate         = "update_failed"
)

// Outcome is the result of handling one webhook delivery or manual sync.
type Outcome struct {
	Kind           OutcomeKind
	Reason         string
	Stage          string
	Err            error
	SubscriptionID string
	WorkshopID     string
	OldStatus      models.SubscriptionStatus
	NewStatus      models.SubscriptionStatus
	OldPlanType    models.PlanType
	NewPlanType    models.PlanType
	RetryScheduled bool
}

func Ignored(reason, subscriptionID string) Outcome {
	return Outcome{Kind: OutcomeIgnored, Reason: reason, SubscriptionID: subscriptionID}
}

func Failed(stage, subscriptionID string, err error) Outcome {
	return Outcome{Kind: OutcomeError, Stage: stage, SubscriptionID: subscriptionID, Err: err}
}

// WebhookResponse is the JSON body acknowledged to the payment processor.
type WebhookResponse struct {
	Received       bool   `json:"received"`
	Ignored        bool   `json:"ignored,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Updated        bool   `json:"updated,omitempty"`
	WorkshopID     string `json:"workshopId,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	OldStatus      string `json:"oldStatus,omitempty"`
	NewStatus      string `json:"newStatus,omitempty"`
	OldPlanType    string `json:"oldPlanType,omitempty"`
	NewPlanType    string `json:"newPlanType,omitempty"`
	Error          string `json:"error,omitempty"`
	RetryScheduled bool   `json:"retryScheduled,omitempty"`
}

func (o Outcome) Response() WebhookResponse {
	resp := WebhookResponse{Received: true, SubscriptionID: o.SubscriptionID}
	switch o.Kind {
	case OutcomeIgnored:
		resp.Ignored = true
		resp.Reason = o.Reason
	case OutcomeError:
		resp.Error = o.Stage
		resp.WorkshopID = o.WorkshopID
		resp.RetryScheduled = o.RetryScheduled
	case OutcomeProcessed:
		resp.Updated = true
		resp.WorkshopID = o.WorkshopID
		resp.OldStatus = string(o.OldStatus)
		resp.NewStatus = string(o.NewStatus)
		resp.OldPlanType = string(o.OldPlanType)
		resp.NewPlanType = string(o.NewPlanType)
	}
	return resp
}
