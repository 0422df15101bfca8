// Package gcloud builds authenticated Google Sheets and Drive clients from a
// service account key.
package gcloud

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// OAuth scopes required by the bot
const (
	ScopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDrive        = "https://www.googleapis.com/auth/drive"
)

// Services holds the Google API clients
type Services struct {
	Sheets *sheets.Service
	Drive  *drive.Service
}

// NewServices creates Sheets and Drive clients authenticated with a service account key
func NewServices(ctx context.Context, credentialsJSON []byte) (*Services, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, ScopeSpreadsheets, ScopeDrive)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	return NewServicesWithOptions(ctx, option.WithCredentials(creds))
}

// NewServicesWithOptions creates the clients with explicit client options
func NewServicesWithOptions(ctx context.Context, opts ...option.ClientOption) (*Services, error) {
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Services{Sheets: sheetsSvc, Drive: driveSvc}, nil
}
