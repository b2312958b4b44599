// Package llm provides the planning collaborator: an opaque text-in/text-out
// model call with provider adapters and retry.
package llm

import "context"

// Planner turns a system instruction and user content into raw model text.
// The returned text is untrusted and may not be valid JSON.
type Planner interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(ctx context.Context, system, user string) (string, error)

// Complete implements Planner.
func (f PlannerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// SystemPrompt instructs the planner to answer with {text, actions?} JSON only.
const SystemPrompt = `You are an AI planning agent. Use the retrieved evidence to respond briefly
and propose zero or more actions the user might want. Return STRICT JSON:
{
  "text": string,               // one-paragraph reply
  "actions": [                  // optional
    { "title": string, "desc": string }
  ]
}
Do not include any other keys. Do not wrap the JSON in prose or code fences.`
