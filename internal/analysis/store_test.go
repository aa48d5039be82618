package analysis_test

import (
	"context"
	"testing"

	"fstop/internal/analysis"
	"fstop/internal/testsupport"
)

func TestNewUploadAndFetch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	rec, err := store.NewUpload(ctx, "/tmp/upload.jpg", "upload.jpg", "image/jpeg", 1234)
	if err != nil {
		t.Fatalf("NewUpload failed: %v", err)
	}
	if rec.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if rec.UUID == "" {
		t.Fatal("expected record UUID to be assigned")
	}
	if rec.Status != analysis.StatusPending {
		t.Fatalf("expected pending status, got %s", rec.Status)
	}

	fetched, err := store.GetByUUID(ctx, rec.UUID)
	if err != nil {
		t.Fatalf("GetByUUID failed: %v", err)
	}
	if fetched == nil || fetched.ID != rec.ID {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}
	if fetched.MediaType != "image/jpeg" || fetched.SizeBytes != 1234 {
		t.Fatalf("unexpected fields: %#v", fetched)
	}
}

func TestNewUploadRequiresSourcePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.NewUpload(context.Background(), "", "x.jpg", "image/jpeg", 0); err == nil {
		t.Fatal("expected error when source path missing")
	}
}

func TestGetMissReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if rec, err := store.GetByID(ctx, 999); err != nil || rec != nil {
		t.Fatalf("expected (nil, nil) for missing id, got (%#v, %v)", rec, err)
	}
	if rec, err := store.GetByUUID(ctx, "no-such-uuid"); err != nil || rec != nil {
		t.Fatalf("expected (nil, nil) for missing uuid, got (%#v, %v)", rec, err)
	}
}

func TestUpdatePersistsAssessment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	rec := testsupport.NewUpload(t, store, "/tmp/a.jpg", "a.jpg")

	rec.Status = analysis.StatusCompleted
	rec.ExifFound = true
	rec.DeviceMake = "Apple"
	rec.DeviceModel = "iPhone 14 Pro"
	rec.DeviceDisplay = "Apple iPhone 14 Pro"
	rec.Scored = true
	rec.Likelihood = 0.12
	rec.Verdict = "likely-authentic"
	rec.Rationale = "device metadata consistent"
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.ExifFound || !got.Scored {
		t.Fatalf("expected flags persisted: %#v", got)
	}
	if got.DeviceDisplay != "Apple iPhone 14 Pro" || got.Likelihood != 0.12 {
		t.Fatalf("unexpected persisted values: %#v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatalf("expected updated_at >= created_at: %#v", got)
	}
}

func TestNextPendingOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewUpload(t, store, "/tmp/first.jpg", "first.jpg")
	testsupport.NewUpload(t, store, "/tmp/second.jpg", "second.jpg")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending record, got %#v", next)
	}

	next.Status = analysis.StatusCompleted
	if err := store.Update(ctx, next); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err = store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.Filename != "second.jpg" {
		t.Fatalf("expected second pending record, got %#v", next)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.NewUpload(t, store, "/tmp/a.jpg", "a.jpg")
	testsupport.NewUpload(t, store, "/tmp/b.jpg", "b.jpg")

	a.Status = analysis.StatusFailed
	a.ErrorMessage = "boom"
	if err := store.Update(ctx, a); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	failed, err := store.List(ctx, analysis.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != a.ID {
		t.Fatalf("unexpected filtered list: %#v", failed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].Filename != "b.jpg" {
		t.Fatalf("expected newest-first list, got %#v", all)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	for _, status := range []analysis.Status{analysis.StatusExtracting, analysis.StatusScoring} {
		rec := testsupport.NewUpload(t, store, "/tmp/"+string(status)+".jpg", string(status)+".jpg")
		rec.Status = status
		if err := store.Update(ctx, rec); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records reset, got %d", count)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Pending != 2 || summary.Processing != 0 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestClearCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	done := testsupport.NewUpload(t, store, "/tmp/done.jpg", "done.jpg")
	done.Status = analysis.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	testsupport.NewUpload(t, store, "/tmp/keep.jpg", "keep.jpg")

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Filename != "keep.jpg" {
		t.Fatalf("unexpected remaining records: %#v", remaining)
	}
}

func TestClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	done := testsupport.NewUpload(t, store, "/tmp/done.jpg", "done.jpg")
	done.Status = analysis.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	testsupport.NewUpload(t, store, "/tmp/pending.jpg", "pending.jpg")

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty store, got %#v", remaining)
	}
}

func TestRecordIsProcessing(t *testing.T) {
	inFlight := map[analysis.Status]bool{
		analysis.StatusExtracting: true,
		analysis.StatusScoring:    true,
	}
	for _, status := range analysis.AllStatuses() {
		rec := analysis.Record{Status: status}
		if got := rec.IsProcessing(); got != inFlight[status] {
			t.Fatalf("IsProcessing for %s: got %v, want %v", status, got, inFlight[status])
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := analysis.ParseStatus(" Completed "); !ok || status != analysis.StatusCompleted {
		t.Fatalf("unexpected parse result: %s %v", status, ok)
	}
	if _, ok := analysis.ParseStatus("nonsense"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}
