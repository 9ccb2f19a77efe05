package eventstream

import "errors"

// ErrNilExchangeEvent indicates a nil exchange event payload was provided to
// a publisher.
var ErrNilExchangeEvent = errors.New("nil exchange event")
