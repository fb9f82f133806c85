package domain

import (
	"encoding/json"
	"strings"
)

// PipelineStatus is the lifecycle state of a pipeline or job. The order of
// the constants matters: a status is "active" exactly when it sorts before
// StatusSuccess, meaning the pipeline or job may still change.
type PipelineStatus int

const (
	StatusCreated PipelineStatus = iota
	StatusWaitingForResource
	StatusPreparing
	StatusPending
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusCanceling
	StatusCanceled
	StatusSkipped
	StatusManual
	StatusScheduled
	StatusUnknown
)

var statusNames = map[PipelineStatus]string{
	StatusCreated:            "created",
	StatusWaitingForResource: "waiting_for_resource",
	StatusPreparing:          "preparing",
	StatusPending:            "pending",
	StatusRunning:            "running",
	StatusSuccess:            "success",
	StatusFailed:             "failed",
	StatusCanceling:          "canceling",
	StatusCanceled:           "canceled",
	StatusSkipped:            "skipped",
	StatusManual:             "manual",
	StatusScheduled:          "scheduled",
	StatusUnknown:            "unknown",
}

var statusValues = func() map[string]PipelineStatus {
	m := make(map[string]PipelineStatus, len(statusNames))
	for k, v := range statusNames {
		m[v] = k
	}
	return m
}()

func (s PipelineStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsActive reports whether the pipeline or job may still change.
func (s PipelineStatus) IsActive() bool { return s < StatusSuccess }

// Icon returns the single-glyph representation used in tables.
func (s PipelineStatus) Icon() string {
	switch s {
	case StatusCreated:
		return "⚪"
	case StatusWaitingForResource:
		return "⏳"
	case StatusPreparing:
		return "🟡"
	case StatusPending:
		return "🕒"
	case StatusRunning:
		return "🔵"
	case StatusSuccess:
		return "🟢"
	case StatusFailed:
		return "🔴"
	case StatusCanceling, StatusCanceled:
		return "🚫"
	case StatusSkipped:
		return "⚫"
	case StatusManual:
		return "🟣"
	case StatusScheduled:
		return "📅"
	default:
		return "❓"
	}
}

// UnmarshalJSON decodes a GitLab status string. Unrecognized values decode
// to StatusUnknown rather than failing the surrounding payload.
func (s *PipelineStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := statusValues[strings.ToLower(raw)]; ok {
		*s = v
	} else {
		*s = StatusUnknown
	}
	return nil
}
