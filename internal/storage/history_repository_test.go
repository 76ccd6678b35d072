package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matda59/video-to-mp3-converter/internal/models"
)

func openTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewHistoryRepository(db)
}

func TestInsertAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, "clip.wav", "clip.mp3", models.StatusInProgress)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id <= 0 {
		t.Fatalf("id = %d, want positive", id)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job == nil {
		t.Fatal("job not found after insert")
	}
	if job.OriginalFile != "clip.wav" || job.ConvertedFile != "clip.mp3" {
		t.Fatalf("unexpected files: %q -> %q", job.OriginalFile, job.ConvertedFile)
	}
	if job.Status != models.StatusInProgress {
		t.Fatalf("status = %q, want %q", job.Status, models.StatusInProgress)
	}
	if job.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
}

func TestIDsAreMonotonic(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		id, err := repo.Insert(ctx, "a.wav", "a.mp3", models.StatusInProgress)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestGetAbsent(t *testing.T) {
	repo := openTestRepo(t)

	job, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job != nil {
		t.Fatalf("job = %+v, want nil", job)
	}
}

func TestUpdateStatus(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, "clip.wav", "clip.mp3", models.StatusInProgress)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	updated, err := repo.UpdateStatus(ctx, id, models.StatusCompleted)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated {
		t.Fatal("update reported no row touched")
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want %q", job.Status, models.StatusCompleted)
	}

	// Updating an absent id must not error, only report no row.
	updated, err = repo.UpdateStatus(ctx, 9999, models.StatusFailed)
	if err != nil {
		t.Fatalf("update absent: %v", err)
	}
	if updated {
		t.Fatal("update of absent id reported a touched row")
	}
}

func TestListAll(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"one.wav", "two.mp4", "three.ogg"} {
		if _, err := repo.Insert(ctx, name, name+".mp3", models.StatusInProgress); err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
	}

	jobs, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len = %d, want 3", len(jobs))
	}
	// Newest first.
	if jobs[0].OriginalFile != "three.ogg" {
		t.Fatalf("first = %q, want three.ogg", jobs[0].OriginalFile)
	}
}

func TestDeleteReturnsConvertedFile(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, "clip.wav", "clip.mp3", models.StatusCompleted)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	converted, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if converted != "clip.mp3" {
		t.Fatalf("converted = %q, want clip.mp3", converted)
	}

	job, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job != nil {
		t.Fatal("row still present after delete")
	}
}

func TestDeleteAbsent(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.Delete(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkOrphans(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	orphan, err := repo.Insert(ctx, "stuck.wav", "stuck.mp3", models.StatusInProgress)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	done, err := repo.Insert(ctx, "done.wav", "done.mp3", models.StatusCompleted)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := repo.MarkOrphans(ctx)
	if err != nil {
		t.Fatalf("mark orphans: %v", err)
	}
	if n != 1 {
		t.Fatalf("marked %d rows, want 1", n)
	}

	job, _ := repo.GetByID(ctx, orphan)
	if job.Status != models.StatusError {
		t.Fatalf("orphan status = %q, want %q", job.Status, models.StatusError)
	}
	job, _ = repo.GetByID(ctx, done)
	if job.Status != models.StatusCompleted {
		t.Fatalf("completed row was touched: %q", job.Status)
	}
}
