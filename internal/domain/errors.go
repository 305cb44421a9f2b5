package domain

var (
    ErrNotFound          = errString("not found")
    ErrMissingQuote      = errString("extracted quote missing")
    ErrInvalidQuote      = errString("extracted quote invalid")
    ErrInvalidRate       = errString("rate must be positive")
    ErrNegotiationClosed = errString("negotiation already closed")
    ErrInvalidInput      = errString("invalid input")
    ErrExtraction        = errString("quote extraction failed")
    ErrJobFailed         = errString("audit job failed")
)

type errString string

func (e errString) Error() string { return string(e) }
