package gitlab

import (
	"strings"
	"time"

	"gitlab.com/tinyland/lab/glim/pkg/config"
)

// ClientConfig carries everything the client needs to talk to a GitLab
// instance.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://gitlab.example.com/api/v4".
	BaseURL string
	// Token is the personal access token sent as PRIVATE-TOKEN.
	Token string
	// SearchFilter narrows the project listing; empty means no filter.
	SearchFilter string

	// PerPage is the page size for paginated requests, 1..100.
	PerPage int
	// Timeout bounds each request.
	Timeout time.Duration

	// ProjectsInterval is the cadence of the projects poll loop.
	ProjectsInterval time.Duration
	// JobsInterval is the cadence of the active-jobs poll loop.
	JobsInterval time.Duration

	// DumpResponses writes each response body under DumpDir.
	DumpResponses bool
	DumpDir       string
}

// NewClientConfig returns a configuration with default paging, timeout,
// and polling values.
func NewClientConfig(baseURL, token string) ClientConfig {
	return ClientConfig{
		BaseURL:          strings.TrimRight(baseURL, "/"),
		Token:            token,
		PerPage:          100,
		Timeout:          30 * time.Second,
		ProjectsInterval: 60 * time.Second,
		JobsInterval:     30 * time.Second,
		DumpDir:          "glim-logs",
	}
}

// FromConfig builds a client configuration from the on-disk config.
func FromConfig(cfg *config.Config) ClientConfig {
	cc := NewClientConfig(cfg.GitlabURL, cfg.GitlabToken)
	cc.SearchFilter = cfg.Filter()
	return cc
}

// Validate checks the configuration the same way the bootstrap popup
// does: the client refuses to construct from anything that fails here.
func (c ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return configErr("base URL cannot be empty")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return configErr("base URL must start with http:// or https://")
	}
	if c.Token == "" {
		return configErr("private token cannot be empty")
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		return configErr("per_page must be between 1 and 100")
	}
	if c.Timeout <= 0 {
		return configErr("timeout must be greater than zero")
	}
	return nil
}

// ProjectQuery holds the query parameters of a project listing request.
type ProjectQuery struct {
	SearchFilter      string
	UpdatedAfter      *time.Time
	PerPage           int
	IncludeStatistics bool
	Archived          bool
	Membership        bool
	SearchNamespaces  bool
}

// DefaultProjectQuery derives the standard project listing query from
// the configuration.
func (c ClientConfig) DefaultProjectQuery() ProjectQuery {
	return ProjectQuery{
		SearchFilter:      c.SearchFilter,
		PerPage:           c.PerPage,
		IncludeStatistics: true,
		Archived:          false,
		Membership:        true,
		SearchNamespaces:  true,
	}
}

// PipelineQuery holds the query parameters of a pipeline listing request.
type PipelineQuery struct {
	UpdatedAfter *time.Time
	PerPage      int
}

// DefaultPipelineQuery derives the standard pipeline listing query.
// GitLab caps pipeline pages at 60.
func (c ClientConfig) DefaultPipelineQuery() PipelineQuery {
	perPage := c.PerPage
	if perPage > 60 {
		perPage = 60
	}
	return PipelineQuery{PerPage: perPage}
}
