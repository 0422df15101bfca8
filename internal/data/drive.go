package data

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/linecardbot/line-card-bot/internal/biz/repo"
)

// ErrUnsupportedMedia is returned for content whose type cannot be detected
var ErrUnsupportedMedia = errors.New("unsupported media type")

// driveRepo uploads images into a Drive folder and shares them by link
type driveRepo struct {
	svc      *drive.Service
	folderID string
	logger   *slog.Logger
	now      func() time.Time
}

// DriveStorage is the Google Drive image store
type DriveStorage interface {
	repo.StorageRepo
	FolderName(ctx context.Context) (string, error)
}

// NewDriveRepo creates a new Drive storage repository
func NewDriveRepo(svc *drive.Service, folderID string, logger *slog.Logger) DriveStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &driveRepo{svc: svc, folderID: folderID, logger: logger, now: time.Now}
}

// FolderName checks the target folder is accessible and returns its name
func (r *driveRepo) FolderName(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, googleCallTimeout)
	defer cancel()

	folder, err := r.svc.Files.Get(r.folderID).Fields("id, name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("cannot access folder: %w", err)
	}
	return folder.Name, nil
}

// Upload stores the image and returns its web view link
func (r *driveRepo) Upload(ctx context.Context, content []byte, displayName string) (string, error) {
	link, err := r.upload(ctx, content, displayName)
	if err != nil {
		r.logger.Error("[DRIVE] Failed to upload image to Google Drive", "error", err, "hint", driveErrorHint(err))
		return "", err
	}
	return link, nil
}

func (r *driveRepo) upload(ctx context.Context, content []byte, displayName string) (string, error) {
	folderName, err := r.FolderName(ctx)
	if err != nil {
		return "", err
	}
	r.logger.Debug("[DRIVE] Folder exists", "name", folderName)

	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedMedia
	}

	ctx, cancel := context.WithTimeout(ctx, googleCallTimeout)
	defer cancel()

	name := uploadFileName(r.now(), displayName, kind.Extension)
	meta := &drive.File{
		Name:     name,
		Parents:  []string{r.folderID},
		MimeType: kind.MIME.Value,
	}
	file, err := r.svc.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(kind.MIME.Value)).
		Fields("id, webViewLink").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	perm := &drive.Permission{Role: "reader", Type: "anyone"}
	if _, err := r.svc.Permissions.Create(file.Id, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("share file: %w", err)
	}

	if file.WebViewLink == "" {
		return "", errors.New("failed to retrieve the webViewLink from the uploaded file")
	}

	r.logger.Info("[DRIVE] Uploaded successfully", "file", name, "link", file.WebViewLink)
	return file.WebViewLink, nil
}

// uploadFileName builds "YYYYMMDD_HHMMSS_<name>.<ext>"
func uploadFileName(at time.Time, displayName, ext string) string {
	return fmt.Sprintf("%s_%s.%s", at.Format("20060102_150405"), displayName, ext)
}

// driveErrorHint explains the common Drive permission failures
func driveErrorHint(err error) string {
	reasons := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			reasons += " " + item.Reason
		}
	}
	switch {
	case strings.Contains(reasons, "insufficientFilePermissions"):
		return "service account lacks necessary permissions"
	case strings.Contains(reasons, "notFound"):
		return "folder ID not found or inaccessible"
	default:
		return ""
	}
}
