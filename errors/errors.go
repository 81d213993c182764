package errors

import "fmt"

var (
	ErrInvalidScope         = fmt.Errorf("invalid channel scope")
	ErrInvalidChannel       = fmt.Errorf("unparseable channel string")
	ErrInvalidChannelType   = fmt.Errorf("channel type has no presence")
	ErrTransportUnavailable = fmt.Errorf("realtime transport unavailable")
	ErrPublishRejected      = fmt.Errorf("transport rejected publish")
	ErrUnknownStatus        = fmt.Errorf("unknown user status")
	ErrTokenGeneration      = fmt.Errorf("token generation failed")
	ErrStatusNotFound       = fmt.Errorf("no status recorded for user")
)
