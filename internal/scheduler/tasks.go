package scheduler

import (
	"encoding/json"

	"naql_backend/internal/leads/domain"

	"github.com/hibiken/asynq"
)

// TaskRedeliverLead retries delivery of a lead that neither the sink nor the
// fallback webhook accepted.
const TaskRedeliverLead = "leads:redeliver"

type RedeliverLeadPayload struct {
	Lead   domain.ServerLead `json:"lead"`
	Reason string            `json:"reason,omitempty"`
}

func NewRedeliverLeadTask(payload RedeliverLeadPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRedeliverLead, data), nil
}

func ParseRedeliverLeadPayload(task *asynq.Task) (RedeliverLeadPayload, error) {
	var payload RedeliverLeadPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RedeliverLeadPayload{}, err
	}
	return payload, nil
}
