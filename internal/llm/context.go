package llm

import "context"

type contextKey string

const purposeKey contextKey = "purpose"

// WithPurpose labels the context so the logging decorator can record why
// a request was made (student-turn, criterion-score, ...).
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom reads the purpose label, "unknown" when none was set.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
