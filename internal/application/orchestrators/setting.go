package orchestrators

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/setting"
)

// SettingStoreForOrchestrator defines the store interface needed by setting orchestrators.
type SettingStoreForOrchestrator interface {
	Get(ctx context.Context, key string) (setting.Setting, error)
	Set(ctx context.Context, value setting.Setting) error
}

// SettingDeps holds dependencies for the setting orchestrators.
type SettingDeps struct {
	SettingStore SettingStoreForOrchestrator
	Objects      ObjectStore
	GenerateID   func() string
}

// ErrNotAPDF is returned when an uploaded file does not start with the PDF magic bytes.
var ErrNotAPDF = errors.New("upload is not a pdf")

// ExecuteSetSetting stores a new value for an existing key, keeping its declared type.
// PRE: key exists
// POST: value parses as the declared type and is stored
func ExecuteSetSetting(ctx context.Context, key, value string, deps SettingDeps) (setting.Setting, error) {
	s, err := deps.SettingStore.Get(ctx, key)
	if err != nil {
		return setting.Setting{}, err
	}
	s.Value = value
	if err := s.Validate(); err != nil {
		return setting.Setting{}, err
	}
	if err := deps.SettingStore.Set(ctx, s); err != nil {
		return setting.Setting{}, err
	}
	slog.Info("setting_event", "event", "setting_changed", "key", key, "value", value)
	return s, nil
}

// ExecuteToggleSetting flips a boolean setting and returns the new row.
// PRE: key exists with type boolean
func ExecuteToggleSetting(ctx context.Context, key string, deps SettingDeps) (setting.Setting, error) {
	s, err := deps.SettingStore.Get(ctx, key)
	if err != nil {
		return setting.Setting{}, err
	}
	cur, err := s.Bool()
	if err != nil {
		return setting.Setting{}, err
	}
	if s, err = s.WithBool(!cur); err != nil {
		return setting.Setting{}, err
	}
	if err := deps.SettingStore.Set(ctx, s); err != nil {
		return setting.Setting{}, err
	}
	slog.Info("setting_event", "event", "setting_toggled", "key", key, "value", s.Value)
	return s, nil
}

// ExecuteUploadSettingPDF stores a PDF in the files bucket and points a string setting at it.
// PRE: key exists with type string; r yields a PDF no larger than MaxUploadBytes
// POST: setting value is the public URL; the previous file is removed
func ExecuteUploadSettingPDF(ctx context.Context, key string, r io.Reader, deps SettingDeps) (setting.Setting, error) {
	s, err := deps.SettingStore.Get(ctx, key)
	if err != nil {
		return setting.Setting{}, err
	}
	if _, err := s.Text(); err != nil {
		return setting.Setting{}, err
	}

	br := bufio.NewReader(io.LimitReader(r, objectstore.MaxUploadBytes))
	magic, err := br.Peek(5)
	if err != nil || !bytes.Equal(magic, []byte("%PDF-")) {
		return setting.Setting{}, ErrNotAPDF
	}

	objectKey := fmt.Sprintf("%s/%s.pdf", key, deps.GenerateID())
	url, err := deps.Objects.Upload(ctx, objectstore.BucketFiles, objectKey, br)
	if err != nil {
		return setting.Setting{}, err
	}

	previous := s.Value
	s.Value = url
	if err := deps.SettingStore.Set(ctx, s); err != nil {
		return setting.Setting{}, err
	}
	if previous != "" {
		if err := deps.Objects.Delete(ctx, objectstore.BucketFiles, previous); err != nil {
			slog.Warn("setting_old_file_kept", "key", key, "url", previous, "error", err)
		}
	}
	slog.Info("setting_event", "event", "setting_file_uploaded", "key", key)
	return s, nil
}
