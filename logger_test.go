package fmodgen

import (
	"testing"

	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	custom := zap.NewExample()
	t.Cleanup(func() { SetLogger(nil) })

	tests := []struct {
		name string
		set  *zap.Logger
		want *zap.Logger
	}{
		{"custom", custom, custom},
		{"nil_restores_nop", nil, nop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLogger(tt.set)
			if got := Logger(); got != tt.want {
				t.Errorf("Logger = %p, want %p", got, tt.want)
			}
		})
	}
}
