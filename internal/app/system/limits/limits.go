// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON API.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxJSONBody is the default limit for project, task and user payloads.
	MaxJSONBody = 1 << 20 // 1 MB

	// MaxChatBody bounds chat requests, which carry conversation history.
	MaxChatBody = 256 << 10 // 256 KB

	// MaxChatHistory is the number of prior turns forwarded to the model.
	MaxChatHistory = 50

	// MaxInfoBatch caps the subs accepted by /users/info-batch.
	MaxInfoBatch = 100
)
