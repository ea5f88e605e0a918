package httputil

import (
	"testing"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantCode  aterrors.Code
		retryable bool
	}{
		{200, "", false},
		{201, "", false},
		{204, "", false},
		{400, aterrors.ErrCodeInvalidReport, false},
		{401, aterrors.ErrCodeUnauthorized, false},
		{403, aterrors.ErrCodeForbidden, false},
		{404, aterrors.ErrCodeNotFound, false},
		{422, aterrors.ErrCodeInvalidReport, false},
		{429, aterrors.ErrCodeNetwork, true},
		{500, aterrors.ErrCodeNetwork, true},
		{503, aterrors.ErrCodeNetwork, true},
		{302, aterrors.ErrCodeNetwork, false},
	}

	for _, tt := range tests {
		err := CheckStatus(tt.code)
		if tt.wantCode == "" {
			if err != nil {
				t.Errorf("CheckStatus(%d) = %v, want nil", tt.code, err)
			}
			continue
		}
		if got := aterrors.GetCode(err); got != tt.wantCode {
			t.Errorf("CheckStatus(%d) code = %q, want %q", tt.code, got, tt.wantCode)
		}
		if IsRetryable(err) != tt.retryable {
			t.Errorf("CheckStatus(%d) retryable = %v, want %v", tt.code, IsRetryable(err), tt.retryable)
		}
	}
}
