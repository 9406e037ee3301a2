package backend

import (
	"errors"
	"fmt"

	"ledger/internal/config"
)

// FromAppConfig converts the application config to mirror config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(appConfig.MirrorBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid mirror type in config: %s", appConfig.MirrorBackend)
	}

	return Config{
		Type: t,

		CreateURL: appConfig.MirrorCreateURL,
		ExportURL: appConfig.MirrorExportURL,
		Token:     appConfig.MirrorToken,
		Timeout:   appConfig.MirrorTimeout,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the mirror configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid mirror type: %s", c.Type)
	}

	switch c.Type {
	case HTTPMirror:
		if c.CreateURL == "" || c.ExportURL == "" {
			return errors.New("create and export URLs are required for http mirror")
		}
	case SheetsMirror:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets mirror")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return errors.New("service account JSON or file is required for sheets mirror")
		}
	}

	return nil
}

// Types returns all valid mirror types
func Types() []Type {
	return []Type{NoneMirror, MemoryMirror, HTTPMirror, SheetsMirror}
}
