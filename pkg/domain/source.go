package domain

import (
	"encoding/json"
)

// PipelineSource is what triggered a pipeline's creation.
type PipelineSource int

const (
	SourceAPI PipelineSource = iota
	SourceChat
	SourceExternal
	SourceExternalPullRequestEvent
	SourceMergeRequestEvent
	SourceOndemandDastScan
	SourceOndemandDastValidation
	SourceParentPipeline
	SourcePipeline
	SourcePush
	SourceSchedule
	SourceSecurityOrchestrationPolicy
	SourceTrigger
	SourceWeb
	SourceWebIDE
	SourceOther
)

var sourceValues = map[string]PipelineSource{
	"api":                          SourceAPI,
	"chat":                         SourceChat,
	"external":                     SourceExternal,
	"external_pull_request_event":  SourceExternalPullRequestEvent,
	"merge_request_event":          SourceMergeRequestEvent,
	"ondemand_dast_scan":           SourceOndemandDastScan,
	"ondemand_dast_validation":     SourceOndemandDastValidation,
	"parent_pipeline":              SourceParentPipeline,
	"pipeline":                     SourcePipeline,
	"push":                         SourcePush,
	"schedule":                     SourceSchedule,
	"security_orchestration_policy": SourceSecurityOrchestrationPolicy,
	"trigger":                      SourceTrigger,
	"web":                          SourceWeb,
	"webide":                       SourceWebIDE,
}

// String returns the human-readable label shown in the UI.
func (s PipelineSource) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceChat:
		return "chat"
	case SourceExternal:
		return "external"
	case SourceExternalPullRequestEvent:
		return "pull request"
	case SourceMergeRequestEvent:
		return "merge request"
	case SourceOndemandDastScan:
		return "dast scan"
	case SourceOndemandDastValidation:
		return "dast validation"
	case SourceParentPipeline:
		return "parent pipeline"
	case SourcePipeline:
		return "pipeline"
	case SourcePush:
		return "push"
	case SourceSchedule:
		return "schedule"
	case SourceSecurityOrchestrationPolicy:
		return "sec policy"
	case SourceTrigger:
		return "trigger"
	case SourceWeb:
		return "web"
	case SourceWebIDE:
		return "web ide"
	default:
		return "other"
	}
}

// IsInteresting reports whether pipelines with this source appear in the
// compact per-branch summary. Merge-request and security-scan pipelines
// are hidden there.
func (s PipelineSource) IsInteresting() bool {
	switch s {
	case SourceAPI, SourceChat, SourceParentPipeline, SourcePush,
		SourceSchedule, SourceTrigger, SourceWeb, SourceWebIDE:
		return true
	default:
		return false
	}
}

// UnmarshalJSON decodes a GitLab source string. Unrecognized values decode
// to SourceOther, which is never interesting.
func (s *PipelineSource) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := sourceValues[raw]; ok {
		*s = v
	} else {
		*s = SourceOther
	}
	return nil
}
