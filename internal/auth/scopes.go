package auth

// OAuth scopes recognised by the progress service.
const (
	ScopeProgressWrite = "progress:write"
	ScopeProgressRead  = "progress:read"
)
