package models

import (
	"errors"
	"net/http"
)

// Kind discriminates relay failures.
type Kind string

const (
	KindConfiguration Kind = "configuration_error"
	KindInvalidInput  Kind = "invalid_input"
	KindUpstream      Kind = "upstream_error"
	KindTransport     Kind = "transport_error"
)

// User facing messages, in the dashboard's display language.
const (
	MsgConfiguration = "ระบบผู้ช่วย AI ยังไม่พร้อมใช้งาน กรุณาติดต่อผู้ดูแลระบบ"
	MsgInvalidInput  = "รูปแบบข้อความไม่ถูกต้อง กรุณาตรวจสอบและลองใหม่อีกครั้ง"
	MsgUpstream      = "ขออภัย เกิดข้อผิดพลาดในการประมวลผลคำขอ กรุณาลองใหม่อีกครั้ง"
	MsgTransport     = "การเชื่อมต่อถูกตัดระหว่างการส่งข้อมูล"
)

// Error is a tagged relay failure. Message is safe to show to users; Err holds
// the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func ConfigurationError(err error) *Error {
	return &Error{Kind: KindConfiguration, Message: MsgConfiguration, Err: err}
}

func InvalidInput(err error) *Error {
	return &Error{Kind: KindInvalidInput, Message: MsgInvalidInput, Err: err}
}

func UpstreamError(err error) *Error {
	return &Error{Kind: KindUpstream, Message: MsgUpstream, Err: err}
}

func TransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: MsgTransport, Err: err}
}

// AsError classifies any error, treating untagged errors as upstream failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return UpstreamError(err)
}
