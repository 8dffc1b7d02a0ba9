package domain

import "testing"

func TestRotationStateTerminal(t *testing.T) {
	tests := []struct {
		state RotationState
		want  bool
	}{
		{RotationCheckBalance, false},
		{RotationSeekSource, false},
		{RotationTransferIn, false},
		{RotationDone, true},
		{RotationFailed, true},
	}

	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestRotationResultSucceeded(t *testing.T) {
	if !(RotationResult{State: RotationDone}).Succeeded() {
		t.Error("DONE result should report success")
	}
	if (RotationResult{State: RotationFailed}).Succeeded() {
		t.Error("FAILED result should not report success")
	}
}
