package handler

import (
	"net/http"
	"testing"

	"github.com/Modzmart2112/Tracker-sub001/models"
)

func TestFirstErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		errs     []string
		wantCode string
	}{
		{"typed browser error", []string{"BROWSER_UNAVAILABLE: no browser session available"}, models.ErrCodeBrowserUnavailable},
		{"typed config error", []string{"INVALID_CONFIG: at least one field must be marked unique_key"}, models.ErrCodeInvalidConfig},
		{"untyped error", []string{"page 2: something broke"}, models.ErrCodeInternal},
		{"no errors", nil, models.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := firstErrorDetail(tt.errs)
			if detail.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", detail.Code, tt.wantCode)
			}
			if detail.Message == "" {
				t.Error("message must not be empty")
			}
		})
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeBrowserUnavailable, http.StatusServiceUnavailable},
		{models.ErrCodeInvalidConfig, http.StatusBadRequest},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusForCode(tt.code); got != tt.want {
			t.Errorf("statusForCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
