// Package tracing provides OpenTelemetry tracing integration.
//
// The HTTP middleware starts one server span per request and the outbound
// clients (news provider, article reader) start child spans through Start.
// Init installs the SDK provider at startup; until then, and in tests that
// do not set one, the global no-op provider is used.
//
//	ctx, span := tracing.Start(ctx, "newsapi.FetchCityNews")
//	defer span.End()
package tracing
