package config

const (
	// MaxRunNameLength is the maximum length for run names.
	// Names should be short and descriptive.
	MaxRunNameLength = 255

	// MaxFileNameLength is the maximum length for uploaded file names.
	// Same as run names for consistency.
	MaxFileNameLength = 255

	// MaxPromptLength is the maximum length for a chat prompt.
	MaxPromptLength = 8000

	// MaxPlanExcerptChars caps how much of an uploaded text file is
	// forwarded to plan generation.
	MaxPlanExcerptChars = 20000

	// MaxSuggestContextChars caps how much composed document content is
	// packed into a suggestion prompt.
	MaxSuggestContextChars = 24000

	// DefaultDraftPageLimit is the draft listing page size when the client
	// does not specify one.
	DefaultDraftPageLimit = 20

	// MaxDraftPageLimit caps the draft listing page size.
	MaxDraftPageLimit = 100

	// MaxRequestBodyBytes caps JSON and multipart request bodies.
	MaxRequestBodyBytes = 10 << 20
)
