package observability

import (
	"fmt"
	"sync/atomic"
)

var (
	ChatRequests        atomic.Int64
	ChatUpstreamErrors  atomic.Int64
	DiscoverRequests    atomic.Int64
	DiscoverFallbacks   atomic.Int64
	EventsFeedRequests  atomic.Int64
	EventsSearchHits    atomic.Int64
	EventsCreated       atomic.Int64
	EventPublishErrors  atomic.Int64
	OrganizationsSaved  atomic.Int64
	UploadsStored       atomic.Int64
	AIEmbeddingCalls    atomic.Int64
	SessionCreations    atomic.Int64
	SessionCreateErrors atomic.Int64
)

// Snapshot returns a Prometheus-like exposition text of the domain counters.
func Snapshot() string {
	return fmt.Sprintf(`# Cultura domain metrics
cultura_chat_requests_total %d
cultura_chat_upstream_errors_total %d
cultura_discover_requests_total %d
cultura_discover_fallbacks_total %d
cultura_events_feed_requests_total %d
cultura_events_search_hits_total %d
cultura_events_created_total %d
cultura_event_publish_errors_total %d
cultura_organizations_saved_total %d
cultura_uploads_stored_total %d
cultura_ai_embedding_calls_total %d
cultura_assistant_session_creations_total %d
cultura_assistant_session_create_errors_total %d
`,
		ChatRequests.Load(),
		ChatUpstreamErrors.Load(),
		DiscoverRequests.Load(),
		DiscoverFallbacks.Load(),
		EventsFeedRequests.Load(),
		EventsSearchHits.Load(),
		EventsCreated.Load(),
		EventPublishErrors.Load(),
		OrganizationsSaved.Load(),
		UploadsStored.Load(),
		AIEmbeddingCalls.Load(),
		SessionCreations.Load(),
		SessionCreateErrors.Load(),
	)
}
