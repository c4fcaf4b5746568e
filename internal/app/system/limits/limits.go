// internal/app/system/limits/limits.go
package limits

// Request body size limits. Bodies over the limit are rejected with 400.
const (
	// MaxJSONBody covers users, donation requests, funds and payments.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxBlogBody covers blog posts, whose content is HTML.
	MaxBlogBody = 1 << 20 // 1 MB
)
