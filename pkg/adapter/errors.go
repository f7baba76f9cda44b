package adapter

import "errors"

// ErrPublishFailed is wrapped when publish_script exhausts its retry budget
// against the voice runtime (spec.md §4.8, §7 PublishError policy: log,
// emit publish_failed, previous script stays active).
var ErrPublishFailed = errors.New("adapter: publish_script failed")

// ErrUnknownProject names the case of a webhook whose agent_id matches no
// project (spec.md §7 UnknownProject: 404-equivalent, no state change).
// Nothing in this repository returns it: pkg/pipeline reports that case with
// its own ErrUnknownProject. pkg/api's writeError maps both to 404.
var ErrUnknownProject = errors.New("adapter: no project owns this agent_id")

// ErrInvalidPayload means the webhook body is missing a required field.
var ErrInvalidPayload = errors.New("adapter: invalid transcript payload")
