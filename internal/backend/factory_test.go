package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/config"
	"ledger/internal/mirror"
	"ledger/internal/mirror/httpapi"
	"ledger/internal/mirror/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{MirrorBackend: "ftp"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		MirrorBackend:   "http",
		MirrorCreateURL: "https://example.com/create",
		MirrorExportURL: "https://example.com/export",
		MirrorToken:     "secret",
		MirrorTimeout:   3 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, HTTPMirror, cfg.Type)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		config  Config
		check   func(t *testing.T, m mirror.Mirror)
		wantErr bool
	}{
		{
			name:   "none",
			config: Config{Type: NoneMirror},
			check: func(t *testing.T, m mirror.Mirror) {
				assert.IsType(t, mirror.Nop{}, m)
			},
		},
		{
			name:   "memory",
			config: Config{Type: MemoryMirror},
			check: func(t *testing.T, m mirror.Mirror) {
				assert.IsType(t, &memory.Store{}, m)
			},
		},
		{
			name: "http",
			config: Config{
				Type:      HTTPMirror,
				CreateURL: "https://example.com/create",
				ExportURL: "https://example.com/export",
			},
			check: func(t *testing.T, m mirror.Mirror) {
				assert.IsType(t, &httpapi.Client{}, m)
			},
		},
		{
			name:    "http without urls",
			config:  Config{Type: HTTPMirror},
			wantErr: true,
		},
		{
			name:    "sheets without credentials",
			config:  Config{Type: SheetsMirror, GoogleSpreadsheetID: "abc"},
			wantErr: true,
		},
		{
			name:    "unknown",
			config:  Config{Type: "ftp"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateMirror(ctx, tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, res.Mirror)
		})
	}
}

func TestTypes(t *testing.T) {
	for _, typ := range Types() {
		assert.True(t, typ.IsValid(), typ.String())
	}
	assert.False(t, Type("sqlite").IsValid())
}
