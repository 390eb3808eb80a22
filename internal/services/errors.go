package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure. The HTTP boundary maps each kind to one
// status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindForbidden
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is returned by every service method. Message is safe to show to the
// client; Err is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message so a sentinel still matches
// after a cause has been attached with withCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *Error) withCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: err}
}

var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Message: "비밀번호가 올바르지 않습니다."}
	ErrCurrentPassword    = &Error{Kind: KindAuthentication, Message: "현재 비밀번호가 일치하지 않습니다."}
	ErrUnauthorized       = &Error{Kind: KindAuthentication, Message: "유효하지 않은 토큰입니다."}
	ErrInvalidRefresh     = &Error{Kind: KindForbidden, Message: "유효하지 않은 Refresh Token입니다."}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "사용자를 찾을 수 없습니다."}
	ErrUsernameTaken      = &Error{Kind: KindValidation, Message: "이미 사용 중인 아이디입니다"}
	ErrUsernameReserved   = &Error{Kind: KindValidation, Message: "사용할 수 없는 아이디입니다."}
	ErrInvalidCode        = &Error{Kind: KindValidation, Message: "유효하지 않은 인증 코드입니다."}
	ErrPasswordTooLong    = &Error{Kind: KindValidation, Message: "비밀번호는 72바이트를 넘을 수 없습니다."}
	ErrNoPassword         = &Error{Kind: KindValidation, Message: "소셜 로그인 계정은 비밀번호를 사용하지 않습니다."}
	ErrUnknownProvider    = &Error{Kind: KindNotFound, Message: "지원하지 않는 로그인 방식입니다."}
	ErrMailDelivery       = &Error{Kind: KindUpstream, Message: "이메일 전송에 실패했습니다."}
	ErrInternal           = &Error{Kind: KindInternal, Message: "서버 오류가 발생했습니다."}
)

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func internalError(err error) *Error {
	return ErrInternal.withCause(err)
}

// KindOf returns the kind of err, treating foreign errors as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
