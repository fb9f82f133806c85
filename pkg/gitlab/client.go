// Package gitlab is the read-only GitLab API adapter. It builds URLs,
// performs authenticated GET requests, decodes JSON, and translates
// transport and protocol outcomes into application events.
package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/glim/pkg/domain"
	"gitlab.com/tinyland/lab/glim/pkg/id"
)

// Client performs authenticated requests against a single GitLab
// instance. It is immutable after construction; configuration changes
// build a new client.
type Client struct {
	cfg    ClientConfig
	hc     *http.Client
	logger *slog.Logger
}

// NewClient validates cfg and returns a ready client.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		cfg:    cfg,
		hc:     &http.Client{Transport: tr, Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// Config returns the client's configuration.
func (c *Client) Config() ClientConfig { return c.cfg }

// Projects lists projects matching the query.
func (c *Client) Projects(ctx context.Context, query ProjectQuery) ([]domain.Project, error) {
	var dtos []projectDTO
	if err := c.getJSON(ctx, c.buildProjectsURL(query), &dtos); err != nil {
		return nil, err
	}
	return projectsToDomain(dtos), nil
}

// Pipelines lists pipelines of a project.
func (c *Client) Pipelines(ctx context.Context, project id.ProjectID, query PipelineQuery) ([]domain.Pipeline, error) {
	var dtos []pipelineDTO
	if err := c.getJSON(ctx, c.buildPipelinesURL(project, query), &dtos); err != nil {
		return nil, err
	}
	return pipelinesToDomain(dtos), nil
}

// Jobs fetches both regular jobs and trigger jobs of a pipeline and
// merges them into one list sorted by ascending job id. The commit of
// the first job, when any, is returned alongside.
func (c *Client) Jobs(ctx context.Context, project id.ProjectID, pipeline id.PipelineID) ([]domain.Job, *domain.Commit, error) {
	base := c.cfg.BaseURL + "/projects/" + project.String() + "/pipelines/" + pipeline.String()

	var jobs, bridges []jobDTO
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(ctx, base+"/jobs", &jobs) })
	g.Go(func() error { return c.getJSON(ctx, base+"/bridges", &bridges) })
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	all := append(jobs, bridges...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	var commit *domain.Commit
	if len(all) > 0 {
		head := all[0].Commit.toDomain()
		commit = &head
	}
	return jobsToDomain(all), commit, nil
}

// JobTrace downloads a job's build log as text.
func (c *Client) JobTrace(ctx context.Context, project id.ProjectID, job id.JobID) (string, error) {
	u := c.cfg.BaseURL + "/projects/" + project.String() + "/jobs/" + job.String() + "/trace"

	resp, err := c.get(ctx, u)
	if err != nil {
		return "", transportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.errorResponse(resp, body)
	}
	return string(body), nil
}

// ValidateConnection issues a one-item project listing and accepts the
// credentials iff the response decodes as a JSON array.
func (c *Client) ValidateConnection(ctx context.Context) error {
	query := c.cfg.DefaultProjectQuery()
	query.PerPage = 1

	var probe json.RawMessage
	if err := c.getJSON(ctx, c.buildProjectsURL(query), &probe); err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(string(probe)); !strings.HasPrefix(trimmed, "[") {
		return &Error{Kind: KindGitlabAPI, Message: "invalid response format: " + truncate(trimmed, 200)}
	}
	return nil
}

func (c *Client) buildProjectsURL(query ProjectQuery) string {
	var b strings.Builder
	b.WriteString(c.cfg.BaseURL)
	b.WriteString("/projects?search_namespaces=true")

	if query.SearchFilter != "" {
		b.WriteString("&search=")
		b.WriteString(url.QueryEscape(query.SearchFilter))
	}
	if query.UpdatedAfter != nil {
		b.WriteString("&last_activity_after=")
		b.WriteString(formatRFC3339(*query.UpdatedAfter))
	}
	if query.IncludeStatistics {
		b.WriteString("&statistics=true")
	}
	if !query.Archived {
		b.WriteString("&archived=false")
	}
	if query.Membership {
		b.WriteString("&membership=true")
	}
	b.WriteString("&per_page=")
	b.WriteString(strconv.Itoa(query.PerPage))

	return b.String()
}

func (c *Client) buildPipelinesURL(project id.ProjectID, query PipelineQuery) string {
	var b strings.Builder
	b.WriteString(c.cfg.BaseURL)
	b.WriteString("/projects/")
	b.WriteString(project.String())
	b.WriteString("/pipelines?per_page=")
	b.WriteString(strconv.Itoa(query.PerPage))

	if query.UpdatedAfter != nil {
		b.WriteString("&updated_after=")
		b.WriteString(formatRFC3339(*query.UpdatedAfter))
	}
	return b.String()
}

// formatRFC3339 renders a UTC timestamp with a numeric offset, the
// form GitLab documents for time filters.
func formatRFC3339(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05-07:00")
}

func (c *Client) get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", c.cfg.Token)
	return c.hc.Do(req)
}

// getJSON performs an authenticated GET and decodes the response body
// into out.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	resp, err := c.get(ctx, u)
	if err != nil {
		return transportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(err)
	}

	path := resp.Request.URL.Path
	if c.cfg.DumpResponses {
		c.dumpResponse(path, body)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorResponse(resp, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return jsonParseErr(path, err)
	}
	return nil
}

// gitlabErrEnvelope is the OAuth-style error body GitLab returns on
// 401 and some other failures.
type gitlabErrEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type gitlabMsgEnvelope struct {
	Message string `json:"message"`
}

func (c *Client) errorResponse(resp *http.Response, body []byte) *Error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return authError(body)
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, Resource: "Resource"}
	case http.StatusTooManyRequests:
		e := &Error{Kind: KindRateLimit}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if sec, err := strconv.Atoi(ra); err == nil && sec > 0 {
				e.RetryAfter = time.Duration(sec) * time.Second
			}
		}
		return e
	}

	status := strconv.Itoa(resp.StatusCode)
	var env gitlabErrEnvelope
	if json.Unmarshal(body, &env) == nil && env.Error != "" {
		msg := "HTTP " + status + ": " + env.Error
		if env.ErrorDescription != "" {
			msg += " " + env.ErrorDescription
		}
		return &Error{Kind: KindGitlabAPI, Message: msg}
	}
	var msgEnv gitlabMsgEnvelope
	if json.Unmarshal(body, &msgEnv) == nil && msgEnv.Message != "" {
		return &Error{Kind: KindGitlabAPI, Message: "HTTP " + status + ": " + msgEnv.Message}
	}
	return &Error{Kind: KindGitlabAPI, Message: "HTTP " + status + ": " + string(body)}
}

// authError diagnoses a 401 body. GitLab distinguishes invalid and
// expired tokens in its error envelope; anything else is a generic
// authentication failure.
func authError(body []byte) *Error {
	var env gitlabErrEnvelope
	if json.Unmarshal(body, &env) != nil || env.Error == "" {
		return &Error{Kind: KindAuthentication}
	}
	switch {
	case env.Error == "invalid_token":
		return &Error{Kind: KindInvalidToken}
	case env.Error == "expired_token",
		strings.Contains(env.ErrorDescription, "expired"),
		strings.Contains(env.ErrorDescription, "expiry"):
		return &Error{Kind: KindExpiredToken}
	}
	return &Error{Kind: KindAuthentication}
}

// dumpResponse writes a response body to the dump directory for
// debugging. Failures are logged and never fail the request.
func (c *Client) dumpResponse(path string, body []byte) {
	if c.cfg.DumpDir == "" {
		return
	}
	if err := os.MkdirAll(c.cfg.DumpDir, 0o755); err != nil {
		c.logger.Warn("failed to create response dump directory", "dir", c.cfg.DumpDir, "error", err)
		return
	}

	name := time.Now().Format("2006-01-02_15-04-05") + "_" + strings.ReplaceAll(strings.Trim(path, "/"), "/", "_") + ".json"
	target := filepath.Join(c.cfg.DumpDir, name)

	if err := os.WriteFile(target, body, 0o644); err != nil {
		c.logger.Warn("failed to write response dump", "path", target, "error", err)
		return
	}
	c.logger.Debug("response dumped", "path", target)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
