package define

import "errors"

// ErrInvalidDefinition is returned when a definition is missing a required
// part or names an unsupported option.
var ErrInvalidDefinition = errors.New("invalid definition")
