package extract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
)

func TestIsElementNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"direct", &rod.ElementNotFoundError{}, true},
		{"wrapped", fmt.Errorf("lookup .price: %w", &rod.ElementNotFoundError{}), true},
		{"other error", errors.New("context deadline exceeded"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isElementNotFound(tt.err); got != tt.want {
				t.Errorf("isElementNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
