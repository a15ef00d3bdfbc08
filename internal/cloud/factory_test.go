package cloud

import (
	"context"
	"testing"

	"github.com/hemantobora/auto-iops/internal/cloud/azure"
)

func TestCreateProvider(t *testing.T) {
	f := NewFactory()
	tests := []struct {
		name         string
		providerType string
		options      []Option
		wantErr      bool
	}{
		{name: "azure", providerType: "azure", options: []Option{WithCredentials("sub", "tok")}},
		{name: "azure without token", providerType: "azure", options: []Option{WithCredentials("sub", "")}, wantErr: true},
		{name: "aws", providerType: "aws", wantErr: true},
		{name: "unknown", providerType: "oracle", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.CreateProvider(context.Background(), tt.providerType, tt.options...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if p != nil {
					t.Errorf("expected nil provider on error, got %#v", p)
				}
				return
			}
			if p.GetProviderType() != "azure" || p.GetSubscriptionID() != "sub" {
				t.Errorf("unexpected provider %s/%s", p.GetProviderType(), p.GetSubscriptionID())
			}
		})
	}
}

func TestNewAuthProviderStaticToken(t *testing.T) {
	auth, err := NewAuthProvider("sub", "tok")
	if err != nil {
		t.Fatalf("NewAuthProvider: %v", err)
	}
	static, ok := auth.(azure.StaticAuth)
	if !ok {
		t.Fatalf("expected StaticAuth, got %T", auth)
	}
	if static.Subscription != "sub" || static.Token != "tok" {
		t.Errorf("unexpected static auth %#v", static)
	}
}
