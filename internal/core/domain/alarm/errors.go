package alarm

import "errors"

var ErrBackendClosed = errors.New("alarm backend is closed")
