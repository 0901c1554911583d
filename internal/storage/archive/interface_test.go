// internal/storage/archive/interface_test.go
package archive

import (
	"path/filepath"
	"testing"
)

func TestNew_LocalFS(t *testing.T) {
	store, err := New(Config{Type: "localfs", Path: filepath.Join(t.TempDir(), "archive")})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", store)
	}
}

func TestNew_DefaultsToLocalFS(t *testing.T) {
	store, err := New(Config{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*LocalFS); !ok {
		t.Errorf("expected *LocalFS, got %T", store)
	}
}

func TestNew_S3(t *testing.T) {
	store, err := New(Config{Type: "s3", S3: S3Config{Bucket: "reports", Endpoint: "http://localhost:9000"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := store.(*S3Storage); !ok {
		t.Errorf("expected *S3Storage, got %T", store)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "ftp"}},
		{"localfs without path", Config{Type: "localfs"}},
		{"s3 without bucket", Config{Type: "s3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}
