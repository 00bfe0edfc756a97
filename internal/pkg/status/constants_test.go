package status

import (
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want string
	}{
		{st: Uploaded, want: "uploaded"},
		{st: Transcribing, want: "transcribing"},
		{st: Complete, want: "complete"},
		{st: Failed, want: "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.st.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		args string
		want Status
	}{
		{args: "uploaded", want: Uploaded},
		{args: "transcribing", want: Transcribing},
		{args: "complete", want: Complete},
		{args: "failed", want: Failed},
		{args: "olia", want: 0},
		{args: "COMPLETE", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			if got := From(tt.args); got != tt.want {
				t.Errorf("From() = %v, want %v", got, tt.want)
			}
		})
	}
}
