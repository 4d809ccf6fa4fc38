package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/skidrates/internal/matrix"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "invalid header", err: fmt.Errorf("import: %w", matrix.ErrInvalidHeader), wantCode: "CSV001"},
		{name: "unknown selector", err: ErrUnknownSelector, wantCode: "CSV002"},
		{name: "unknown city", err: ErrUnknownCity, wantCode: "CSV003"},
		{name: "bad skid count", err: ErrInvalidSkidCount, wantCode: "CSV004"},
		{name: "session not found", err: ErrSessionNotFound, wantCode: "SES001"},
		{name: "cancelled", err: context.Canceled, wantCode: "SES002"},
		{name: "save deadline", err: fmt.Errorf("persist rates: %w", context.DeadlineExceeded), wantCode: "SES003"},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connection refused"), wantCode: "DB001"},
		{name: "deadlock", err: errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), wantCode: "DB003"},
		{name: "check constraint", err: errors.New(`new row violates check constraint "skid_rates_rate_check"`), wantCode: "DB004"},
		{name: "generic timeout", err: errors.New("i/o timeout"), wantCode: "DB005"},
		{name: "file too large", err: fmt.Errorf("%w: limit is 10 bytes", ErrFileTooLarge), wantCode: "FILE001"},
		{name: "no file", err: ErrNoFile, wantCode: "FILE002"},
		{name: "empty file", err: ErrEmptyFile, wantCode: "FILE003"},
		{name: "busy", err: ErrTooManyImports, wantCode: "FILE004"},
		{name: "bad request body", err: errors.New("invalid request body: unexpected EOF"), wantCode: "REQ001"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "case insensitive", err: errors.New("SESSION NOT FOUND"), wantCode: "SES001"},
		{name: "unknown falls back", err: errors.New("something odd"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) missing message or action: %+v", tt.err, got)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrSessionNotFound)
	want := "Editing session not found (Code: SES001). The session may have expired. Reopen the rate matrix"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{matrix.ErrInvalidHeader, true},
		{ErrTooManyImports, true},
		{errors.New("segfault"), false},
	}
	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
