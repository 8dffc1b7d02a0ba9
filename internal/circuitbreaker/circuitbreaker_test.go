package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"

	"github.com/crossarb/crossarb/internal/apperror"
)

func TestBreakerPassesThroughResults(t *testing.T) {
	b := New[int](DefaultConfig("test"))

	got, err := b.Execute(func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Execute() = %d, want 42", got)
	}

	wantErr := errors.New("upstream down")
	_, err = b.Execute(func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want %v", err, wantErr)
	}
}

func TestBreakerOpenStateMapsToAppError(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.FailureCount = 2
	b := New[string](cfg)

	fail := errors.New("upstream down")
	for i := 0; i < int(cfg.FailureCount); i++ {
		if _, err := b.Execute(func() (string, error) { return "", fail }); !errors.Is(err, fail) {
			t.Fatalf("Execute() error = %v, want %v", err, fail)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}

	_, err := b.Execute(func() (string, error) { return "never called", nil })
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperror.CodeCircuitOpen {
		t.Errorf("Execute() error = %v, want code %s", err, apperror.CodeCircuitOpen)
	}
}
