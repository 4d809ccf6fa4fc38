package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// Database (DB001-DB099)
//
//	DB001 - Unable to connect to database        "connection refused"
//	DB002 - Database connection was interrupted  "connection reset"
//	DB003 - Database was busy                    "deadlock"
//	DB004 - A rate was rejected by the database  "violates check constraint"
//	DB005 - Operation timed out                  "timeout"
//
// Rate sheet (CSV001-CSV099)
//
//	CSV001 - Header row is missing PICKUP CITY   "invalid csv header"
//	CSV002 - Unknown service selection           "unknown service selector"
//	CSV003 - Unknown pickup city                 "unknown pickup city"
//	CSV004 - Skid count out of range             "invalid skid count"
//
// Session (SES001-SES099)
//
//	SES001 - Editing session not found           "session not found"
//	SES002 - Request was cancelled               "context canceled"
//	SES003 - Request timed out                   "context deadline exceeded"
//
// File (FILE001-FILE099)
//
//	FILE001 - File too large                     "file too large"
//	FILE002 - No file was selected               "no file provided"
//	FILE003 - The uploaded file is empty         "empty file"
//	FILE004 - Too many imports in progress       "too many imports"
//
// Request (REQ001-REQ099)
//
//	REQ001 - Request body could not be read      "invalid request body"
//
// Rate limiting
//
//	RATE001 - Too many requests                  "rate limit"
//
// Fallback
//
//	ERR000 - An unexpected error occurred; check the server log.
//
// Patterns match case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Session and request lifecycle. Checked before "timeout" so a save
	// deadline reads as SES003 rather than a database timeout.
	{"session not found", UserMessage{
		Message: "Editing session not found",
		Action:  "The session may have expired. Reopen the rate matrix",
		Code:    "SES001",
	}},
	{"context canceled", UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "SES002",
	}},
	{"context deadline exceeded", UserMessage{
		Message: "Request timed out",
		Action:  "Your changes are still unsaved. Try saving again",
		Code:    "SES003",
	}},

	// Database
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB001",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB002",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB003",
	}},
	{"violates check constraint", UserMessage{
		Message: "A rate was rejected by the database",
		Action:  "Rates must be zero or positive with at most two decimals",
		Code:    "DB004",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB005",
	}},

	// Rate sheet
	{"invalid csv header", UserMessage{
		Message: "The first row must be the PICKUP CITY header",
		Action:  "Download the template and keep its header row",
		Code:    "CSV001",
	}},
	{"unknown service selector", UserMessage{
		Message: "Unknown service or service type",
		Action:  "Pick a service from the list",
		Code:    "CSV002",
	}},
	{"unknown pickup city", UserMessage{
		Message: "Unknown pickup city",
		Action:  "Pick a city from the pickup list",
		Code:    "CSV003",
	}},
	{"invalid skid count", UserMessage{
		Message: "Skid count must be between 1 and 12",
		Action:  "Pick a column from 1 SKID to 12 SKIDS",
		Code:    "CSV004",
	}},

	// File
	{"file too large", UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Rate sheets should be a few hundred rows. Check you picked the right file",
		Code:    "FILE001",
	}},
	{"no file provided", UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to import",
		Code:    "FILE002",
	}},
	{"empty file", UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header and city rows",
		Code:    "FILE003",
	}},
	{"too many imports", UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "FILE004",
	}},

	{"invalid request body", UserMessage{
		Message: "The request could not be read",
		Action:  "Send a JSON body with the documented fields",
		Code:    "REQ001",
	}},

	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Unmatched
// errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
