package router

// Path constants centralizing HTTP routes.
const (
	PathHealth        = "/health"
	PathReady         = "/ready"
	PathMetricsDomain = "/metrics/domain"

	PathChat              = "/api/chat"
	PathDiscoverChat      = "/api/discover/chat"
	PathEvents            = "/api/events"
	PathOrganizations     = "/api/organizations"
	PathOrganizationsList = "/api/organizations/list"
	PathIndividuals       = "/api/individuals"
	PathUploads           = "/api/uploads"
	PathAssistantUpload   = "/api/assistant/upload"
)
