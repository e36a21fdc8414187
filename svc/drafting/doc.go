// Package drafting turns a rough list of changes into release-note
// markdown.
//
// A Drafter asks an OpenAI-compatible chat completion endpoint for the
// draft and falls back to a deterministic template whenever no API key is
// configured or the provider fails. Draft therefore never returns an error
// for non-empty input; callers only see which path produced the result.
//
//	d := drafting.New(cfg, drafting.WithMetrics(m), drafting.WithLogger(log))
//	draft, err := d.Draft(ctx, "- dark mode\n- fixed login loop")
//
// Callers are expected to check the use_ai_drafting entitlement first.
package drafting
