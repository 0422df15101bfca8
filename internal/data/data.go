package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
	"github.com/linecardbot/line-card-bot/internal/biz/repo"
	"github.com/linecardbot/line-card-bot/internal/conf"
	"github.com/linecardbot/line-card-bot/internal/infra/feishu"
	"github.com/linecardbot/line-card-bot/internal/infra/gcloud"
)

// Repositories contains all repositories
type Repositories struct {
	Trigger   repo.TriggerRepo
	Messenger repo.MessengerRepo
	Ledger    repo.LedgerRepo
	Storage   repo.StorageRepo

	// LedgerReader is set only for backends that can list rows
	LedgerReader repo.LedgerReader

	// Feishu is the long-connection client when the platform is feishu
	Feishu *feishu.Client

	sheets SheetsLedger
	drive  DriveStorage
	sqlite SQLiteLedger
}

// ProbeResult describes the backends reached by Probe
type ProbeResult struct {
	SheetTitle string
	FolderName string
	DBPath     string
}

// NewRepositories creates all repositories for the configured platform and ledger backend
func NewRepositories(ctx context.Context, cfg *conf.Config, logger *slog.Logger) (*Repositories, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repositories{Trigger: NewTriggerRepo()}

	switch cfg.Platform {
	case domain.PlatformFeishu:
		r.Feishu = feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, logger)
		r.Messenger = NewFeishuRepo(r.Feishu)
	default:
		messenger, err := NewLINERepo(cfg.LINE.ChannelAccessToken, logger)
		if err != nil {
			return nil, err
		}
		r.Messenger = messenger
	}

	credentials, err := cfg.GoogleCredentialsJSON()
	if err != nil {
		return nil, err
	}
	services, err := gcloud.NewServices(ctx, credentials)
	if err != nil {
		return nil, err
	}

	r.drive = NewDriveRepo(services.Drive, cfg.Google.PhotoFolderID, logger)
	r.Storage = r.drive

	switch cfg.Ledger.Backend {
	case conf.LedgerSQLite:
		r.sqlite, err = NewSQLiteLedgerRepo(cfg.Ledger.DBPath)
		if err != nil {
			return nil, err
		}
		r.Ledger = r.sqlite
		r.LedgerReader = r.sqlite
		logger.Info("[SHEET] Using SQLite ledger", "path", cfg.Ledger.DBPath)
	default:
		r.sheets, err = NewSheetsRepo(ctx, services.Sheets, cfg.Google.SpreadsheetID)
		if err != nil {
			return nil, err
		}
		r.Ledger = r.sheets
		logger.Info("[SHEET] Connected to spreadsheet", "worksheet", r.sheets.SheetTitle())
	}

	return r, nil
}

// Probe checks the storage folder is reachable and reports the ledger target
func (r *Repositories) Probe(ctx context.Context) (*ProbeResult, error) {
	result := &ProbeResult{}
	if r.sheets != nil {
		result.SheetTitle = r.sheets.SheetTitle()
	}
	if r.sqlite != nil {
		result.DBPath = r.sqlite.Path()
	}
	if r.drive != nil {
		name, err := r.drive.FolderName(ctx)
		if err != nil {
			return result, fmt.Errorf("%w (%s)", err, driveErrorHint(err))
		}
		result.FolderName = name
	}
	return result, nil
}

// Close releases resources held by the repositories
func (r *Repositories) Close() error {
	if r.Feishu != nil {
		r.Feishu.Stop()
	}
	if r.sqlite != nil {
		return r.sqlite.Close()
	}
	return nil
}
