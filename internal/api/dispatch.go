package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DispatchRequest describes a single on-demand call: an action key in the
// dashboard, or a one-shot CLI verb.
type DispatchRequest struct {
	// Op labels the call in errors and the logbook, e.g. "agent.action".
	Op string

	// Method defaults to GET when empty.
	Method string

	// Path is the endpoint path, starting with "/".
	Path string

	// Body is JSON-encoded when non-nil.
	Body any
}

// Dispatch performs one request and returns the raw JSON result. Callers
// treat an error as "no result"; the dashboard surfaces the error text in
// the status line when the action asked for surfacing, and refreshes the
// snapshot afterwards either way.
func (c *Client) Dispatch(ctx context.Context, req DispatchRequest) (json.RawMessage, error) {
	op := req.Op
	if op == "" {
		op = "dispatch"
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(req.Path, "/") {
		return nil, newAPIError(op, 0, fmt.Errorf("path must start with /, got %q", req.Path))
	}
	return c.do(ctx, op, method, req.Path, req.Body)
}

// AgentAction POSTs an action to /api/agents/{name}/action.
func (c *Client) AgentAction(ctx context.Context, agent string, body AgentActionRequest) (json.RawMessage, error) {
	agent = strings.TrimSpace(agent)
	if agent == "" {
		return nil, newAPIError("agent.action", 0, fmt.Errorf("agent name is required"))
	}
	return c.Dispatch(ctx, DispatchRequest{
		Op:     "agent.action",
		Method: http.MethodPost,
		Path:   "/api/agents/" + url.PathEscape(agent) + "/action",
		Body:   body,
	})
}

// SearchCandidates POSTs a candidate search and decodes the result.
func (c *Client) SearchCandidates(ctx context.Context, query CandidateSearchRequest) (*CandidateList, error) {
	raw, err := c.Dispatch(ctx, DispatchRequest{
		Op:     "candidates.search",
		Method: http.MethodPost,
		Path:   "/api/candidates/search",
		Body:   query,
	})
	if err != nil {
		return nil, err
	}
	var list CandidateList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, newAPIError("candidates.search", 0, fmt.Errorf("%w: %v", ErrBadPayload, err))
	}
	return &list, nil
}

// ApproveCandidate POSTs a screening approval for one queued candidate.
func (c *Client) ApproveCandidate(ctx context.Context, id string, decision ScreeningDecisionRequest) (json.RawMessage, error) {
	return c.screeningDecision(ctx, "screening.approve", id, "approve", decision)
}

// RejectCandidate POSTs a screening rejection for one queued candidate.
func (c *Client) RejectCandidate(ctx context.Context, id string, decision ScreeningDecisionRequest) (json.RawMessage, error) {
	return c.screeningDecision(ctx, "screening.reject", id, "reject", decision)
}

func (c *Client) screeningDecision(ctx context.Context, op, id, verb string, decision ScreeningDecisionRequest) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newAPIError(op, 0, fmt.Errorf("candidate id is required"))
	}
	return c.Dispatch(ctx, DispatchRequest{
		Op:     op,
		Method: http.MethodPost,
		Path:   "/api/screening/" + url.PathEscape(id) + "/" + verb,
		Body:   decision,
	})
}

// DemoWorkflow GETs the demo workflow summary consumed at the end of a
// playback run.
func (c *Client) DemoWorkflow(ctx context.Context) (*DemoWorkflow, error) {
	var result DemoWorkflow
	if err := c.getJSON(ctx, "demo.workflow", "/api/demo/workflow", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
