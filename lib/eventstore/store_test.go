// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/speedsqueak/lib/clock"
	"github.com/bureau-foundation/speedsqueak/lib/record"
)

var storeTestEpoch = time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T, path string) (*Store, *clock.FakeClock) {
	t.Helper()

	if path == "" {
		path = filepath.Join(t.TempDir(), "events.db")
	}
	fakeClock := clock.Fake(storeTestEpoch)
	store, err := Open(Config{
		Path:   path,
		Clock:  fakeClock,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store, fakeClock
}

func speedPayload(t *testing.T, uuid string, reading float64) *record.SpeedPayload {
	t.Helper()
	payload, err := record.ParseSpeed([]byte(fmt.Sprintf(
		`{"uuid":%q,"timestamp":"2026-03-14T08:30:00Z","reading":%v,"units":"mph"}`, uuid, reading)))
	if err != nil {
		t.Fatalf("ParseSpeed: %v", err)
	}
	return payload
}

func cameraPayload(t *testing.T, uuid, filePath string) *record.CameraPayload {
	t.Helper()
	payload, err := record.ParseCamera([]byte(fmt.Sprintf(`{"uuid":%q,"filepath":%q}`, uuid, filePath)))
	if err != nil {
		t.Fatalf("ParseCamera: %v", err)
	}
	return payload
}

func TestInsertSpeedCreatesNewRecord(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	created, err := store.InsertSpeed(ctx, speedPayload(t, "A", 42))
	if err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	if created.Uploaded {
		t.Error("new record has uploaded = true")
	}
	if !created.CreatedAt.Equal(storeTestEpoch) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, storeTestEpoch)
	}

	got, err := store.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State() != record.StateNew {
		t.Errorf("State = %v, want NEW", got.State())
	}
	if got.Speed == nil || got.Speed.Reading != 42 {
		t.Errorf("Speed = %+v, want reading 42", got.Speed)
	}
	if got.Camera != nil {
		t.Errorf("Camera = %+v, want nil", got.Camera)
	}
}

func TestDuplicateSpeedLeavesRowUntouched(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	if _, err := store.InsertSpeed(ctx, speedPayload(t, "A", 42)); err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	if _, err := store.AttachCamera(ctx, cameraPayload(t, "A", "capture_A.jpg")); err != nil {
		t.Fatalf("AttachCamera: %v", err)
	}
	if err := store.MarkUploaded(ctx, "A", nil); err != nil {
		t.Fatalf("MarkUploaded: %v", err)
	}
	before, err := store.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = store.InsertSpeed(ctx, speedPayload(t, "A", 99))
	if !errors.Is(err, record.ErrDuplicateKey) {
		t.Fatalf("duplicate InsertSpeed error = %v, want ErrDuplicateKey", err)
	}

	after, err := store.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if after.Speed.Body != before.Speed.Body {
		t.Errorf("speed_data changed: %q -> %q", before.Speed.Body, after.Speed.Body)
	}
	if !after.Uploaded {
		t.Error("duplicate speed event reset uploaded")
	}
	if after.Camera == nil || after.Camera.FilePath != "capture_A.jpg" {
		t.Errorf("camera_data changed: %+v", after.Camera)
	}
}

func TestAttachCameraMakesRecordReady(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	if _, err := store.InsertSpeed(ctx, speedPayload(t, "A", 42)); err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	updated, err := store.AttachCamera(ctx, cameraPayload(t, "A", "capture_A.jpg"))
	if err != nil {
		t.Fatalf("AttachCamera: %v", err)
	}
	if updated.State() != record.StateReady {
		t.Errorf("State = %v, want READY", updated.State())
	}
	if updated.Speed == nil || updated.Speed.Reading != 42 {
		t.Errorf("speed payload lost on camera update: %+v", updated.Speed)
	}
}

func TestAttachCameraOrphan(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	_, err := store.AttachCamera(ctx, cameraPayload(t, "ghost", "capture_ghost.jpg"))
	if !errors.Is(err, record.ErrOrphanUpdate) {
		t.Fatalf("AttachCamera error = %v, want ErrOrphanUpdate", err)
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("orphan camera event created a record: Get error = %v", err)
	}
	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts.Total() != 0 {
		t.Errorf("Counts = %+v, want empty store", counts)
	}
}

func TestEligibleOrderAndFilter(t *testing.T) {
	store, fakeClock := openTestStore(t, "")
	ctx := context.Background()

	// C is inserted first but gets its camera last; order follows
	// creation, not readiness.
	for _, uuid := range []string{"C", "A", "B", "N", "S"} {
		if _, err := store.InsertSpeed(ctx, speedPayload(t, uuid, 30)); err != nil {
			t.Fatalf("InsertSpeed %s: %v", uuid, err)
		}
		fakeClock.Advance(time.Second)
	}
	for _, uuid := range []string{"A", "B", "S", "C"} {
		if _, err := store.AttachCamera(ctx, cameraPayload(t, uuid, "capture_"+uuid+".jpg")); err != nil {
			t.Fatalf("AttachCamera %s: %v", uuid, err)
		}
	}
	if err := store.MarkUploaded(ctx, "S", nil); err != nil {
		t.Fatalf("MarkUploaded: %v", err)
	}

	eligible, err := store.Eligible(ctx)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	var got []string
	for _, found := range eligible {
		got = append(got, found.UUID)
	}
	want := []string{"C", "A", "B"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Eligible = %v, want %v", got, want)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts != (Counts{New: 1, Ready: 3, Sent: 1}) {
		t.Errorf("Counts = %+v, want {New:1 Ready:3 Sent:1}", counts)
	}
}

func TestEligibleTiesBrokenByInsertionOrder(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	// Same fake time for every insert.
	for _, uuid := range []string{"z", "a", "m"} {
		if _, err := store.InsertSpeed(ctx, speedPayload(t, uuid, 30)); err != nil {
			t.Fatalf("InsertSpeed: %v", err)
		}
		if _, err := store.AttachCamera(ctx, cameraPayload(t, uuid, uuid+".jpg")); err != nil {
			t.Fatalf("AttachCamera: %v", err)
		}
	}

	eligible, err := store.Eligible(ctx)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if len(eligible) != 3 || eligible[0].UUID != "z" || eligible[1].UUID != "a" || eligible[2].UUID != "m" {
		t.Errorf("Eligible order = %v, want [z a m]", eligible)
	}
}

func TestMarkUploadedIsMonotonic(t *testing.T) {
	store, fakeClock := openTestStore(t, "")
	ctx := context.Background()

	if _, err := store.InsertSpeed(ctx, speedPayload(t, "A", 42)); err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	if _, err := store.AttachCamera(ctx, cameraPayload(t, "A", "capture_A.jpg")); err != nil {
		t.Fatalf("AttachCamera: %v", err)
	}

	fakeClock.Advance(time.Minute)
	if err := store.MarkUploaded(ctx, "A", nil); err != nil {
		t.Fatalf("MarkUploaded: %v", err)
	}
	first, err := store.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.State() != record.StateSent {
		t.Fatalf("State = %v, want SENT", first.State())
	}
	if want := storeTestEpoch.Add(time.Minute); !first.UploadedAt.Equal(want) {
		t.Errorf("UploadedAt = %v, want %v", first.UploadedAt, want)
	}

	// A second mark is a no-op and keeps the original upload time.
	fakeClock.Advance(time.Minute)
	if err := store.MarkUploaded(ctx, "A", nil); err != nil {
		t.Fatalf("second MarkUploaded: %v", err)
	}
	second, err := store.Get(ctx, "A")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !second.UploadedAt.Equal(first.UploadedAt) {
		t.Errorf("UploadedAt moved from %v to %v", first.UploadedAt, second.UploadedAt)
	}

	// A later camera event is stored but does not make it eligible again.
	if _, err := store.AttachCamera(ctx, cameraPayload(t, "A", "capture_A_retake.jpg")); err != nil {
		t.Fatalf("AttachCamera after upload: %v", err)
	}
	eligible, err := store.Eligible(ctx)
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if len(eligible) != 0 {
		t.Errorf("uploaded record became eligible again: %v", eligible)
	}
}

func TestMarkUploadedUnknown(t *testing.T) {
	store, _ := openTestStore(t, "")

	err := store.MarkUploaded(context.Background(), "ghost", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkUploaded error = %v, want ErrNotFound", err)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	first, err := Open(Config{
		Path:   path,
		Clock:  clock.Fake(storeTestEpoch),
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := first.InsertSpeed(ctx, speedPayload(t, "A", 42)); err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	if _, err := first.AttachCamera(ctx, cameraPayload(t, "A", "capture_A.jpg")); err != nil {
		t.Fatalf("AttachCamera: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, _ := openTestStore(t, path)
	eligible, err := reopened.Eligible(ctx)
	if err != nil {
		t.Fatalf("Eligible after reopen: %v", err)
	}
	if len(eligible) != 1 || eligible[0].UUID != "A" {
		t.Fatalf("Eligible after reopen = %v, want [A]", eligible)
	}
	if _, err := reopened.InsertSpeed(ctx, speedPayload(t, "A", 1)); !errors.Is(err, record.ErrDuplicateKey) {
		t.Errorf("InsertSpeed after reopen error = %v, want ErrDuplicateKey", err)
	}
}

func TestOpenRequiresClockAndLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	if _, err := Open(Config{Path: path, Logger: slog.New(slog.DiscardHandler)}); err == nil {
		t.Error("Open without Clock succeeded")
	}
	if _, err := Open(Config{Path: path, Clock: clock.Real()}); err == nil {
		t.Error("Open without Logger succeeded")
	}
}

func TestMarkUploadedBeforeCommit(t *testing.T) {
	store, _ := openTestStore(t, "")
	ctx := context.Background()

	if _, err := store.InsertSpeed(ctx, speedPayload(t, "A", 42)); err != nil {
		t.Fatalf("InsertSpeed: %v", err)
	}
	if _, err := store.AttachCamera(ctx, cameraPayload(t, "A", "capture_A.jpg")); err != nil {
		t.Fatalf("AttachCamera: %v", err)
	}

	calls := 0
	if err := store.MarkUploaded(ctx, "A", func() { calls++ }); err != nil {
		t.Fatalf("MarkUploaded: %v", err)
	}
	if err := store.MarkUploaded(ctx, "A", func() { calls++ }); err != nil {
		t.Fatalf("second MarkUploaded: %v", err)
	}
	if calls != 1 {
		t.Errorf("beforeCommit called %d times, want 1", calls)
	}
}
