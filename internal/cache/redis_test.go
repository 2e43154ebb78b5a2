package cache

import (
	"errors"
	"testing"

	"github.com/go-redis/redis/v8"
)

func TestIsMiss(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"redis nil is a miss", redis.Nil, true},
		{"connection error is not", errors.New("connection refused"), false},
		{"nil error is not", nil, false},
		{"disabled cache is not", ErrCacheDisabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMiss(tt.err); got != tt.expected {
				t.Errorf("IsMiss = %v, want %v", got, tt.expected)
			}
		})
	}
}
