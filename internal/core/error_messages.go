// Package core provides the application service around the matrix calculator.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Date Errors (DATE001-DATE099)
//
// Errors raised while validating a birth date:
//
//	DATE001 - Invalid format: The date is not written as DD.MM.YYYY
//	          Action: Enter the date like 15.05.1992
//	          Patterns: "invalid date format"
//
//	DATE002 - Out of range: Day, month or year is outside the supported range
//	          Action: Use a day 1-31, a month 1-12 and a year 1900-2100
//	          Patterns: "date out of range"
//
//	DATE003 - Impossible date: The day does not exist in that month
//	          Action: Check the day, February has 29 days only in leap years
//	          Patterns: "impossible date"
//
//	DATE004 - Future date: The date is after today
//	          Action: Enter a birth date that is today or earlier
//	          Patterns: "future date"
//
// # Calculation Errors (CALC001-CALC099)
//
//	CALC001 - Invariant violated: Derived numbers are inconsistent
//	          Action: Please report this date to support
//	          Patterns: "matrix invariant violated"
//
// # History Errors (HIST001-HIST099)
//
//	HIST001 - Not found: No calculation with this id
//	          Patterns: "history entry not found"
//
//	HIST002 - Disabled: History storage is not configured
//	          Patterns: "history is disabled"
//
// # Family Tree Errors (FAM001-FAM099)
//
//	FAM001 - Tree not found: No family tree with this id
//	         Patterns: "family tree not found"
//
//	FAM002 - Member not found: No member with this id in the tree
//	         Patterns: "family member not found"
//
//	FAM003 - Unknown relation: The relation is not one of the supported kinds
//	         Patterns: "unknown family relation"
//
//	FAM004 - Owner: The tree owner cannot be removed or re-related
//	         Patterns: "tree owner"
//
//	FAM005 - Tree full: The tree holds the maximum number of members
//	         Patterns: "family tree is full"
//
//	FAM006 - Disabled: Family trees are not enabled
//	         Patterns: "family trees are disabled"
//
// # Database Errors (DB004-DB006)
//
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout", "context deadline exceeded"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid body: The request body could not be read
//	         Patterns: "invalid request body"
//
//	REQ002 - Missing date: No date was provided
//	         Patterns: "missing date"
//
//	REQ003 - Cancelled: The request was cancelled
//	         Patterns: "context canceled"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Errors wrapping one of the sentinels below (service, numerology, family
// or context errors) are matched with errors.Is first, so wrapped text such
// as a JSON decoder message never decides the code. Everything else is
// matched case-insensitively on its text using strings.Contains. The first
// matching pattern wins, so more specific patterns should be defined before
// general ones.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/birthmatrix/internal/numerology"
)

// Service-level sentinel errors. Their texts are matched by errorPatterns.
var (
	ErrHistoryNotFound = errors.New("history entry not found")
	ErrHistoryDisabled = errors.New("history is disabled")
	ErrInvalidRequest  = errors.New("invalid request body")
	ErrMissingDate     = errors.New("missing date")
	ErrRateLimited     = errors.New("rate limit exceeded")
)

// Family tree sentinel errors.
var (
	ErrFamilyNotFound = errors.New("family tree not found")
	ErrMemberNotFound = errors.New("family member not found")
	ErrOwnerImmutable = errors.New("the tree owner cannot be removed or re-related")
	ErrTreeFull       = errors.New("family tree is full")
	ErrFamilyDisabled = errors.New("family trees are disabled")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
// sentinel, when set, is tried with errors.Is before any text matching.
type errorPattern struct {
	sentinel error
	pattern  string
	msg      UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
//
// To add a new error pattern:
//  1. Choose the appropriate category and code range
//  2. Add the pattern in the correct position (specific before general)
//  3. Update the package documentation at the top of this file
var errorPatterns = []errorPattern{
	// =========================================================================
	// Date Errors (DATE001-DATE004)
	// =========================================================================
	{
		sentinel: numerology.ErrInvalidFormat,
		pattern:  "invalid date format",
		msg: UserMessage{
			Message: "The date must be written as DD.MM.YYYY",
			Action:  "Enter the date like 15.05.1992",
			Code:    "DATE001",
		},
	},
	{
		sentinel: numerology.ErrOutOfRange,
		pattern:  "date out of range",
		msg: UserMessage{
			Message: "Day, month or year is outside the supported range",
			Action:  "Use a day 1-31, a month 1-12 and a year 1900-2100",
			Code:    "DATE002",
		},
	},
	{
		sentinel: numerology.ErrImpossibleDate,
		pattern:  "impossible date",
		msg: UserMessage{
			Message: "This day does not exist in that month",
			Action:  "Check the day, February has 29 days only in leap years",
			Code:    "DATE003",
		},
	},
	{
		sentinel: numerology.ErrFutureDate,
		pattern:  "future date",
		msg: UserMessage{
			Message: "The birth date is in the future",
			Action:  "Enter a birth date that is today or earlier",
			Code:    "DATE004",
		},
	},

	// =========================================================================
	// Calculation Errors (CALC001)
	// =========================================================================
	{
		sentinel: numerology.ErrInvariantViolation,
		pattern:  "matrix invariant violated",
		msg: UserMessage{
			Message: "The matrix could not be calculated for this date",
			Action:  "Please report this date to support",
			Code:    "CALC001",
		},
	},

	// =========================================================================
	// History Errors (HIST001-HIST002)
	// =========================================================================
	{
		sentinel: ErrHistoryNotFound,
		pattern:  "history entry not found",
		msg: UserMessage{
			Message: "Calculation not found",
			Action:  "Check the id or list recent calculations",
			Code:    "HIST001",
		},
	},
	{
		sentinel: ErrHistoryDisabled,
		pattern:  "history is disabled",
		msg: UserMessage{
			Message: "Calculation history is not available",
			Action:  "Configure a database to keep history",
			Code:    "HIST002",
		},
	},

	// =========================================================================
	// Family Tree Errors (FAM001-FAM006)
	// =========================================================================
	{
		sentinel: ErrFamilyNotFound,
		pattern:  "family tree not found",
		msg: UserMessage{
			Message: "Family tree not found",
			Action:  "Check the tree id or create a new tree",
			Code:    "FAM001",
		},
	},
	{
		sentinel: ErrMemberNotFound,
		pattern:  "family member not found",
		msg: UserMessage{
			Message: "Family member not found",
			Action:  "Reload the tree to see its current members",
			Code:    "FAM002",
		},
	},
	{
		sentinel: numerology.ErrUnknownRelation,
		pattern:  "unknown family relation",
		msg: UserMessage{
			Message: "Unknown family relation",
			Action:  "Use parent, child, sibling, grandparent, grandchild, spouse, aunt_uncle or cousin",
			Code:    "FAM003",
		},
	},
	{
		sentinel: ErrOwnerImmutable,
		pattern:  "tree owner",
		msg: UserMessage{
			Message: "The tree owner cannot be removed or re-related",
			Action:  "Delete the whole tree instead",
			Code:    "FAM004",
		},
	},
	{
		sentinel: ErrTreeFull,
		pattern:  "family tree is full",
		msg: UserMessage{
			Message: "The family tree is full",
			Action:  "Remove a member before adding another",
			Code:    "FAM005",
		},
	},
	{
		sentinel: ErrFamilyDisabled,
		pattern:  "family trees are disabled",
		msg: UserMessage{
			Message: "Family trees are not available",
			Action:  "Enable FAMILY_ENABLED on the server",
			Code:    "FAM006",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		sentinel: context.DeadlineExceeded,
		pattern:  "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		sentinel: ErrInvalidRequest,
		pattern:  "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  `Send JSON like {"day":15,"month":5,"year":1992}`,
			Code:    "REQ001",
		},
	},
	{
		sentinel: ErrMissingDate,
		pattern:  "missing date",
		msg: UserMessage{
			Message: "No date was provided",
			Action:  "Pass the date as ?date=DD.MM.YYYY",
			Code:    "REQ002",
		},
	},
	{
		sentinel: context.Canceled,
		pattern:  "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		sentinel: ErrRateLimited,
		pattern:  "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels in the chain win; otherwise it searches the error text for
// known patterns (case-insensitive) and returns the first match. If nothing
// matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	_, err := numerology.ParseBirthDate("31.02.2020", time.Now())
//	msg := MapError(err)
//	// msg.Code == "DATE003"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
