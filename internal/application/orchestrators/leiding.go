package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/objectstore"
	"github.com/arno-o/ksa-petegem-admin-sub000/internal/domain/leiding"
)

// LeidingStoreForOrchestrator defines the store interface needed by leiding orchestrators.
type LeidingStoreForOrchestrator interface {
	GetByID(ctx context.Context, id int64) (leiding.Leiding, error)
	Create(ctx context.Context, value leiding.Leiding) (int64, error)
	Update(ctx context.Context, value leiding.Leiding) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// GroupChecker confirms a group id refers to an existing group.
type GroupChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ObjectStore is the part of the object store the orchestrators use.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, bucket, publicURL string) error
}

// ErrUnknownGroup is returned when a leiding is assigned to a group that does not exist.
var ErrUnknownGroup = errors.New("group does not exist")

// --- Create Leiding ---

// CreateLeidingInput carries the minimal creation form.
type CreateLeidingInput struct {
	FirstName string
	LastName  string
	GroupID   *int64
}

// CreateLeidingDeps holds dependencies for CreateLeiding.
type CreateLeidingDeps struct {
	LeidingStore LeidingStoreForOrchestrator
	Groups       GroupChecker
}

// ExecuteCreateLeiding creates an active leiding from the minimal form.
// PRE: FirstName is non-empty; GroupID, when set, names an existing group
// POST: a new active record exists; its id is returned
func ExecuteCreateLeiding(ctx context.Context, input CreateLeidingInput, deps CreateLeidingDeps) (int64, error) {
	l := leiding.Leiding{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		GroupID:   input.GroupID,
		Active:    true,
	}
	if err := l.Validate(); err != nil {
		return 0, invalid(err)
	}
	if err := checkGroup(ctx, deps.Groups, l.GroupID); err != nil {
		return 0, err
	}

	id, err := deps.LeidingStore.Create(ctx, l)
	if err != nil {
		return 0, err
	}

	slog.Info("leiding_event", "event", "leiding_created", "leiding_id", id)
	return id, nil
}

// --- Update Leiding ---

// UpdateLeidingInput carries the full edit form. PhotoURL and Active are not
// edited here; they have their own operations.
type UpdateLeidingInput struct {
	ID          int64
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Work        string
	Studies     string
	IsTeamLead  bool
	IsHeadStaff bool
	GroupID     *int64
	TenureStart time.Time
	Experience  string
	About       string
}

// UpdateLeidingDeps holds dependencies for UpdateLeiding.
type UpdateLeidingDeps struct {
	LeidingStore LeidingStoreForOrchestrator
	Groups       GroupChecker
}

// ExecuteUpdateLeiding overwrites the editable fields of a leiding.
// PRE: leiding exists
// POST: stored record equals the input on every editable field
func ExecuteUpdateLeiding(ctx context.Context, input UpdateLeidingInput, deps UpdateLeidingDeps) (leiding.Leiding, error) {
	l, err := deps.LeidingStore.GetByID(ctx, input.ID)
	if err != nil {
		return leiding.Leiding{}, err
	}

	l.FirstName = input.FirstName
	l.LastName = input.LastName
	l.BirthDate = input.BirthDate
	l.Work = input.Work
	l.Studies = input.Studies
	l.IsTeamLead = input.IsTeamLead
	l.IsHeadStaff = input.IsHeadStaff
	l.GroupID = input.GroupID
	l.TenureStart = input.TenureStart
	l.Experience = input.Experience
	l.About = input.About

	if err := l.Validate(); err != nil {
		return leiding.Leiding{}, invalid(err)
	}
	if err := checkGroup(ctx, deps.Groups, l.GroupID); err != nil {
		return leiding.Leiding{}, err
	}
	if err := deps.LeidingStore.Update(ctx, l); err != nil {
		return leiding.Leiding{}, err
	}

	slog.Info("leiding_event", "event", "leiding_updated", "leiding_id", l.ID)
	return l, nil
}

// --- Disable / Enable ---

// SetLeidingActiveDeps holds dependencies for Disable/Enable.
type SetLeidingActiveDeps struct {
	LeidingStore LeidingStoreForOrchestrator
}

// ExecuteDisableLeiding soft-removes a leiding.
// PRE: leiding exists and is active
// POST: Active is false
func ExecuteDisableLeiding(ctx context.Context, id int64, deps SetLeidingActiveDeps) error {
	return setLeidingActive(ctx, id, false, deps)
}

// ExecuteEnableLeiding restores a disabled leiding.
// PRE: leiding exists and is inactive
// POST: Active is true
func ExecuteEnableLeiding(ctx context.Context, id int64, deps SetLeidingActiveDeps) error {
	return setLeidingActive(ctx, id, true, deps)
}

func setLeidingActive(ctx context.Context, id int64, active bool, deps SetLeidingActiveDeps) error {
	l, err := deps.LeidingStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	event := "leiding_disabled"
	if active {
		event = "leiding_enabled"
		err = l.Enable()
	} else {
		err = l.Disable()
	}
	if err != nil {
		return err
	}
	if err := deps.LeidingStore.SetActive(ctx, id, active); err != nil {
		return err
	}
	slog.Info("leiding_event", "event", event, "leiding_id", id)
	return nil
}

// --- Delete Leiding ---

// DeleteLeidingDeps holds dependencies for DeleteLeiding.
type DeleteLeidingDeps struct {
	LeidingStore LeidingStoreForOrchestrator
	Objects      ObjectStore
}

// ExecuteDeleteLeiding removes the photo and then the record.
// The two calls are independent: if the record delete fails the photo stays deleted.
// PRE: leiding exists
// POST: record and photo are gone
func ExecuteDeleteLeiding(ctx context.Context, id int64, deps DeleteLeidingDeps) error {
	l, err := deps.LeidingStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if l.PhotoURL != "" {
		if err := deps.Objects.Delete(ctx, objectstore.BucketLeiding, l.PhotoURL); err != nil {
			return fmt.Errorf("delete photo: %w", err)
		}
	}
	if err := deps.LeidingStore.Delete(ctx, id); err != nil {
		if l.PhotoURL != "" {
			slog.Error("leiding_delete_partial", "leiding_id", id, "photo_url", l.PhotoURL, "error", err)
		}
		return err
	}

	slog.Info("leiding_event", "event", "leiding_deleted", "leiding_id", id)
	return nil
}

// --- Upload Photo ---

// UploadLeidingPhotoDeps holds dependencies for UploadLeidingPhoto.
type UploadLeidingPhotoDeps struct {
	LeidingStore LeidingStoreForOrchestrator
	Objects      ObjectStore
	GenerateID   func() string
}

// ExecuteUploadLeidingPhoto normalises an image, stores it and points the
// leiding at it. The previous photo is removed after the record is updated.
// PRE: leiding exists; r yields a jpeg, png or gif
// POST: PhotoURL is the new object's URL
func ExecuteUploadLeidingPhoto(ctx context.Context, id int64, r io.Reader, deps UploadLeidingPhotoDeps) (string, error) {
	l, err := deps.LeidingStore.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	img, err := objectstore.NormalizePhoto(r)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%d/%s%s", id, deps.GenerateID(), objectstore.PhotoExtension)
	url, err := deps.Objects.Upload(ctx, objectstore.BucketLeiding, key, img)
	if err != nil {
		return "", err
	}

	previous := l.PhotoURL
	l.PhotoURL = url
	if err := deps.LeidingStore.Update(ctx, l); err != nil {
		return "", err
	}
	if previous != "" {
		if err := deps.Objects.Delete(ctx, objectstore.BucketLeiding, previous); err != nil {
			slog.Warn("leiding_old_photo_kept", "leiding_id", id, "photo_url", previous, "error", err)
		}
	}

	slog.Info("leiding_event", "event", "leiding_photo_uploaded", "leiding_id", id)
	return url, nil
}

func checkGroup(ctx context.Context, groups GroupChecker, id *int64) error {
	if id == nil || groups == nil {
		return nil
	}
	ok, err := groups.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownGroup
	}
	return nil
}
