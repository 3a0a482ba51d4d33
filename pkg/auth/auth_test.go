package auth

import (
	"errors"
	"testing"
	"time"
)

func TestAuthenticate(t *testing.T) {
	a := NewAuthenticator("secret", "littlelemon")

	token, err := a.Issue(42, "mario", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	expired, err := a.Issue(42, "mario", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	foreign, err := NewAuthenticator("other", "littlelemon").Issue(42, "mario", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name    string
		header  string
		want    int64
		wantErr error
	}{
		{name: "valid", header: "Bearer " + token, want: 42},
		{name: "missing header", header: "", wantErr: ErrMissingToken},
		{name: "wrong scheme", header: "Token " + token, wantErr: ErrMissingToken},
		{name: "expired", header: "Bearer " + expired, wantErr: ErrInvalidToken},
		{name: "wrong secret", header: "Bearer " + foreign, wantErr: ErrInvalidToken},
		{name: "garbage", header: "Bearer abc.def.ghi", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(tt.header)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
				}

				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Authenticate() = %d, want %d", got, tt.want)
			}
		})
	}
}
