package girder

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeMarkerConflict
	ErrCodeAutoBindInvalid
	ErrCodeDuplicateBinding
	ErrCodeMissingBinding
	ErrCodeCircularDependency
	ErrCodeProvisionFailed
	ErrCodeModuleFailed
	ErrCodeActionFailed
	ErrCodeLifecycleFailed
	ErrCodeSettingsInvalid
	ErrCodeStateInvalid
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:            "UNKNOWN",
	ErrCodeMarkerConflict:     "MARKER_CONFLICT",
	ErrCodeAutoBindInvalid:    "AUTO_BIND_INVALID",
	ErrCodeDuplicateBinding:   "DUPLICATE_BINDING",
	ErrCodeMissingBinding:     "MISSING_BINDING",
	ErrCodeCircularDependency: "CIRCULAR_DEPENDENCY",
	ErrCodeProvisionFailed:    "PROVISION_FAILED",
	ErrCodeModuleFailed:       "MODULE_FAILED",
	ErrCodeActionFailed:       "ACTION_FAILED",
	ErrCodeLifecycleFailed:    "LIFECYCLE_FAILED",
	ErrCodeSettingsInvalid:    "SETTINGS_INVALID",
	ErrCodeStateInvalid:       "STATE_INVALID",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the error type for every failure this package reports. Key
// identifies the binding or type the failure is about, when there is one.
type Error struct {
	Code    ErrorCode
	Message string
	Key     string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Key != "" {
		b.WriteString(fmt.Sprintf(" key=%q:", e.Key))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) withKey(key string) *Error {
	e.Key = key
	return e
}

func errMarkerConflict(markerName, detail string) *Error {
	return newError(
		ErrCodeMarkerConflict,
		fmt.Sprintf("marker %s declares conflicting roles: %s", markerName, detail),
		nil,
	).withKey(markerName)
}

func errAutoBindInvalid(key, detail string) *Error {
	return newError(
		ErrCodeAutoBindInvalid,
		fmt.Sprintf("auto-bind marker on %s: %s", key, detail),
		nil,
	).withKey(key)
}

func errDuplicateBinding(key string, cause error) *Error {
	return newError(
		ErrCodeDuplicateBinding,
		fmt.Sprintf("binding already declared for %s", key),
		cause,
	).withKey(key)
}

func errMissingBinding(key string, cause error) *Error {
	return newError(
		ErrCodeMissingBinding,
		fmt.Sprintf("no binding for %s", key),
		cause,
	).withKey(key)
}

func errCircularDependency(key string, cause error) *Error {
	return newError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency involving %s", key),
		cause,
	).withKey(key)
}

func errProvisionFailed(key string, cause error) *Error {
	return newError(
		ErrCodeProvisionFailed,
		fmt.Sprintf("failed to construct %s", key),
		cause,
	).withKey(key)
}

func errModuleFailed(moduleName string, cause error) *Error {
	return newError(
		ErrCodeModuleFailed,
		fmt.Sprintf("failed to install module %s", moduleName),
		cause,
	).withKey(moduleName)
}

func errActionFailed(index int, cause error) *Error {
	return newError(
		ErrCodeActionFailed,
		fmt.Sprintf("post-build action %d failed", index),
		cause,
	)
}

func errLifecycleFailed(key string, cause error) *Error {
	return newError(
		ErrCodeLifecycleFailed,
		fmt.Sprintf("lifecycle transition failed for %s", key),
		cause,
	).withKey(key)
}

func errSettingsInvalid(detail string, cause error) *Error {
	return newError(
		ErrCodeSettingsInvalid,
		"invalid builder settings: "+detail,
		cause,
	)
}

func errStateInvalid(detail string) *Error {
	return newError(ErrCodeStateInvalid, detail, nil)
}

func IsMarkerConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeMarkerConflict
}

func IsAutoBindInvalid(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeAutoBindInvalid
}

func IsDuplicateBinding(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeDuplicateBinding
}

func IsMissingBinding(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeMissingBinding
}

func IsCircularDependency(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeCircularDependency
}

func IsProvisionFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeProvisionFailed
}

func IsModuleFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeModuleFailed
}

func IsActionFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeActionFailed
}

func IsLifecycleFailed(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeLifecycleFailed
}

func IsSettingsInvalid(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeSettingsInvalid
}
