package llm

import (
	"context"
)

// escalationDirective is appended on the single retry after a response failed
// the caller's conformance check.
const escalationDirective = "Your previous reply was not a single valid JSON object. " +
	"Reply again with ONLY the JSON object in the required format. " +
	"No explanation, no markdown, no code fences."

// ConformsFunc reports whether a completion response is usable by the caller.
type ConformsFunc func(*CompletionResponse) bool

// RetryPolicy wraps a Client with the bounded re-prompt policy: when a
// response fails the conformance check, the call is retried exactly once with
// the escalation directive appended. Transport errors are never retried. The
// second response is returned as-is regardless of conformance; callers fall
// back to best-effort repair.
type RetryPolicy struct {
	client Client
}

// NewRetryPolicy creates a retry policy around a client.
func NewRetryPolicy(client Client) *RetryPolicy {
	return &RetryPolicy{client: client}
}

// Complete runs the request through the bounded retry. The returned bool
// reports whether a retry was issued.
func (p *RetryPolicy) Complete(ctx context.Context, req *CompletionRequest, conforms ConformsFunc) (*CompletionResponse, bool, error) {
	resp, err := p.client.Complete(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if conforms == nil || conforms(resp) {
		return resp, false, nil
	}

	retryReq := *req
	retryReq.Messages = make([]ChatMessage, 0, len(req.Messages)+2)
	retryReq.Messages = append(retryReq.Messages, req.Messages...)
	retryReq.Messages = append(retryReq.Messages,
		ChatMessage{Role: "assistant", Content: resp.Content},
		ChatMessage{Role: "user", Content: escalationDirective},
	)

	retryResp, err := p.client.Complete(ctx, &retryReq)
	if err != nil {
		// Keep the first best-effort response rather than failing the turn.
		return resp, true, nil
	}
	return retryResp, true, nil
}

// Client returns the wrapped client for calls that need no retry.
func (p *RetryPolicy) Client() Client {
	return p.client
}
