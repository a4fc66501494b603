package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskGrantsIngest = "grants:ingest"

const TaskMilestonesAutoClose = "milestones:autoclose"

const TaskFollowUpDigest = "leads:followup_digest"

type GrantsIngestPayload struct {
	TriggeredBy string `json:"triggeredBy"`
}

type MilestonesAutoClosePayload struct {
	IDPrefix string `json:"idPrefix"`
}

type FollowUpDigestPayload struct {
	Recipient string `json:"recipient"`
}

func NewGrantsIngestTask(payload GrantsIngestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGrantsIngest, data), nil
}

func ParseGrantsIngestPayload(task *asynq.Task) (GrantsIngestPayload, error) {
	var payload GrantsIngestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GrantsIngestPayload{}, err
	}
	return payload, nil
}

func NewMilestonesAutoCloseTask(payload MilestonesAutoClosePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMilestonesAutoClose, data), nil
}

func ParseMilestonesAutoClosePayload(task *asynq.Task) (MilestonesAutoClosePayload, error) {
	var payload MilestonesAutoClosePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MilestonesAutoClosePayload{}, err
	}
	return payload, nil
}

func NewFollowUpDigestTask(payload FollowUpDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpDigest, data), nil
}

func ParseFollowUpDigestPayload(task *asynq.Task) (FollowUpDigestPayload, error) {
	var payload FollowUpDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpDigestPayload{}, err
	}
	return payload, nil
}
