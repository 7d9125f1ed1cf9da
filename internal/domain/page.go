package domain

// Page limits are applied to every list request.
const (
	DefaultPageLimit = 10
	MinPageLimit     = 1
	MaxPageLimit     = 100
)

// Page is a clamped pagination window.
type Page struct {
	Limit int32
	Skip  int32
}

// NewPage clamps limit to [MinPageLimit, MaxPageLimit] and skip to be non-negative.
func NewPage(limit, skip int64) Page {
	switch {
	case limit < MinPageLimit:
		limit = MinPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}

	if skip < 0 {
		skip = 0
	}

	const maxInt32 = 1<<31 - 1
	if skip > maxInt32 {
		skip = maxInt32
	}

	return Page{Limit: int32(limit), Skip: int32(skip)}
}
