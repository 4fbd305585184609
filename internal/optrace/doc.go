// Package optrace keeps an operation log of a tracescope session. Trace
// loads, jumps and advice requests are recorded as spans tagged with the
// trace point they concern, so a session that went wrong can be followed
// point by point.
//
// The level selects how much is kept: LevelSession records loads and
// clears, LevelCommand adds navigation and advice, LevelDebug adds
// per-point events such as delivered alerts. LevelError records nothing
// while the command runs; it only enables the ring dump on failure.
//
// Events go to a stream (text or NDJSON), to an in-memory ring dumped when a
// command fails, or to both:
//
//	ctx = optrace.WithTracer(ctx, tracer)
//	span := optrace.Begin(optrace.FromContext(ctx), optrace.ScopeCommand, "jump", 0).At(index)
//	defer span.End("")
package optrace
