package wizard

import "errors"

// ErrAborted reports that the user interrupted the wizard.
var ErrAborted = errors.New("wizard: aborted")
