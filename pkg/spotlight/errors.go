package spotlight

import "errors"

// ErrRateLimited is returned when an identity exceeds its invocation
// budget. It is the only search failure surfaced as an explicit error
// class; permission denials come back as empty results instead.
var ErrRateLimited = errors.New("spotlight: rate limit exceeded")
