package address

import "errors"

// errInvalidLength indicates a parsed address string did not decode to
// exactly Size bytes.
var errInvalidLength = errors.New("address: invalid length")
