package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span names.
const (
	SpanRouteChain     = "route.chain"
	SpanSegmentReplace = "route.segments.replace"
	SpanImportActivity = "route.import.activity"
)

// Span attribute keys.
const (
	AttrRouteID  = attribute.Key("route.id")
	AttrOutcome  = attribute.Key("route.chain.outcome")
	AttrSegments = attribute.Key("route.segments")
)
