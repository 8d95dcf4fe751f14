package models

import "context"

// ActorSource represents how a mutation reached the knowledge base.
type ActorSource string

const (
	SourcePipeline ActorSource = "pipeline" // Document-ingestion extraction
	SourceAgent    ActorSource = "agent"    // Conversational agent
	SourceManual   ActorSource = "manual"   // Direct human edit
)

// IsValid returns true if the source is a valid actor source.
func (s ActorSource) IsValid() bool {
	switch s {
	case SourcePipeline, SourceAgent, SourceManual:
		return true
	default:
		return false
	}
}

// ActorContext carries who performed a mutation and how. The Actor
// string is free-form (user id, agent id, pipeline name) and is stored
// verbatim on every event.
type ActorContext struct {
	Actor  string
	Source ActorSource
}

// SystemActor is recorded when no actor context is present, so the
// event log never loses a mutation over missing attribution.
const SystemActor = "system"

type actorKey struct{}

// WithActor returns a new context with actor information attached.
func WithActor(ctx context.Context, a ActorContext) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// GetActor retrieves actor information from the context.
func GetActor(ctx context.Context) (ActorContext, bool) {
	a, ok := ctx.Value(actorKey{}).(ActorContext)
	return a, ok
}

// ActorOrSystem returns the actor string from context, or SystemActor
// when none is set.
func ActorOrSystem(ctx context.Context) string {
	if a, ok := GetActor(ctx); ok && a.Actor != "" {
		return a.Actor
	}
	return SystemActor
}

// WithManualActor returns a context attributing mutations to a human editor.
func WithManualActor(ctx context.Context, actor string) context.Context {
	return WithActor(ctx, ActorContext{Actor: actor, Source: SourceManual})
}

// WithAgentActor returns a context attributing mutations to a conversational agent.
func WithAgentActor(ctx context.Context, actor string) context.Context {
	return WithActor(ctx, ActorContext{Actor: actor, Source: SourceAgent})
}

// WithPipelineActor returns a context attributing mutations to an ingestion pipeline.
func WithPipelineActor(ctx context.Context, actor string) context.Context {
	return WithActor(ctx, ActorContext{Actor: actor, Source: SourcePipeline})
}
