// Package id defines the opaque identifier types used throughout glim.
//
// GitLab hands back plain integers for projects, pipelines, and jobs.
// Wrapping each in its own type keeps them from being mixed up at call
// sites; there is deliberately no conversion between them.
package id

import (
	"encoding/json"
	"strconv"
)

// ProjectID identifies a GitLab project.
type ProjectID uint32

// PipelineID identifies a pipeline within a project.
type PipelineID uint32

// JobID identifies a job within a pipeline.
type JobID uint32

func (i ProjectID) String() string  { return strconv.FormatUint(uint64(i), 10) }
func (i PipelineID) String() string { return strconv.FormatUint(uint64(i), 10) }
func (i JobID) String() string      { return strconv.FormatUint(uint64(i), 10) }

// UnmarshalJSON decodes a bare JSON integer.
func (i *ProjectID) UnmarshalJSON(data []byte) error {
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = ProjectID(v)
	return nil
}

// UnmarshalJSON decodes a bare JSON integer.
func (i *PipelineID) UnmarshalJSON(data []byte) error {
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = PipelineID(v)
	return nil
}

// UnmarshalJSON decodes a bare JSON integer.
func (i *JobID) UnmarshalJSON(data []byte) error {
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = JobID(v)
	return nil
}
