package models

import (
	"errors"
	"fmt"
)

// Storage-level sentinels shared by every repository implementation.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrWriteConflict  = errors.New("write conflict: document changed or no longer matches")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// Error codes exposed to API callers.
const (
	CodeInvalidRange        = "INVALID_RANGE"
	CodeInvalidSchedule     = "INVALID_SCHEDULE"
	CodeSlotNotFound        = "SLOT_NOT_FOUND"
	CodeSlotUnavailable     = "SLOT_UNAVAILABLE"
	CodeDuplicateEnrollment = "DUPLICATE_ENROLLMENT"
	CodeGateway             = "GATEWAY_ERROR"
	CodeMeetingProvider     = "MEETING_PROVIDER_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeForbidden           = "FORBIDDEN"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeValidation          = "VALIDATION_ERROR"
	CodeCancellationWindow  = "CANCELLATION_WINDOW_CLOSED"
	CodeBusy                = "BUSY"
)

// CodedError is implemented by every domain error.
type CodedError interface {
	error
	Code() string
}

// ErrorCode returns the domain code of err, or "" for unclassified errors.
func ErrorCode(err error) string {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type InvalidRangeError struct {
	Start int
	End   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %d must be before end %d", e.Start, e.End)
}
func (e *InvalidRangeError) Code() string { return CodeInvalidRange }

type InvalidScheduleError struct {
	Field  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	if e.Field == "" {
		return "invalid schedule: " + e.Reason
	}
	return fmt.Sprintf("invalid schedule (%s): %s", e.Field, e.Reason)
}
func (e *InvalidScheduleError) Code() string { return CodeInvalidSchedule }

type SlotNotFoundError struct {
	SlotID string
}

func (e *SlotNotFoundError) Error() string { return "slot not found: " + e.SlotID }
func (e *SlotNotFoundError) Code() string  { return CodeSlotNotFound }

// SlotUnavailableError means the slot cannot take the booking. Conflict is set when
// the slot looked open but concurrent writers won the compare-and-swap twice.
type SlotUnavailableError struct {
	SlotID   string
	Reason   string
	Conflict bool
}

func (e *SlotUnavailableError) Error() string {
	if e.Conflict {
		return fmt.Sprintf("slot %s is busy, try again or pick another slot", e.SlotID)
	}
	return fmt.Sprintf("slot %s is unavailable: %s", e.SlotID, e.Reason)
}
func (e *SlotUnavailableError) Code() string { return CodeSlotUnavailable }

type DuplicateEnrollmentError struct {
	CustomerID string
	OfferingID string
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("customer %s is already enrolled in %s", e.CustomerID, e.OfferingID)
}
func (e *DuplicateEnrollmentError) Code() string { return CodeDuplicateEnrollment }

type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}
func (e *GatewayError) Code() string  { return CodeGateway }
func (e *GatewayError) Unwrap() error { return e.Err }

type MeetingProviderError struct {
	StatusCode int
	Err        error
}

func (e *MeetingProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("meeting provider returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("meeting provider failed: %v", e.Err)
}
func (e *MeetingProviderError) Code() string  { return CodeMeetingProvider }
func (e *MeetingProviderError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }
func (e *NotFoundError) Code() string  { return CodeNotFound }

type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }
func (e *ForbiddenError) Code() string  { return CodeForbidden }

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}
func (e *InvalidTransitionError) Code() string { return CodeInvalidTransition }

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Code() string  { return CodeValidation }

type CancellationWindowError struct {
	DeadlineHours int
}

func (e *CancellationWindowError) Error() string {
	return fmt.Sprintf("bookings can only be cancelled at least %d hours before start", e.DeadlineHours)
}
func (e *CancellationWindowError) Code() string { return CodeCancellationWindow }

// BusyError is returned when another request holds the same payment lock.
type BusyError struct {
	Key string
}

func (e *BusyError) Error() string { return "another request is already processing " + e.Key }
func (e *BusyError) Code() string  { return CodeBusy }
