package backup

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/OpenGG/osu-switcher/internal/switcher/storage"
)

func newTestService(t *testing.T) (*Service, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc := New(storage.New(fs), "/osu/osu!switcher-backup", nil)
	return svc, fs
}

func TestCalculateHash(t *testing.T) {
	svc, fs := newTestService(t)

	if err := afero.WriteFile(fs, "/osu/a.cfg", []byte("Username = a\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := afero.WriteFile(fs, "/osu/empty.cfg", nil, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	hash, err := svc.CalculateHash("/osu/a.cfg")
	if err != nil {
		t.Fatalf("CalculateHash: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected hex sha256, got %q", hash)
	}
	again, _ := svc.CalculateHash("/osu/a.cfg")
	if again != hash {
		t.Error("hash should be deterministic")
	}

	if got, _ := svc.CalculateHash("/osu/empty.cfg"); got != "empty" {
		t.Errorf("expected empty marker, got %q", got)
	}
	if got, err := svc.CalculateHash("/osu/missing.cfg"); err != nil || got != "" {
		t.Errorf("expected no hash and no error for missing file, got %q, %v", got, err)
	}
}

func TestBackupFileKeepsExtensionAndContent(t *testing.T) {
	svc, fs := newTestService(t)

	content := []byte("[akatsuki.gg]\nUsername = a\nPassword = b\n")
	if err := afero.WriteFile(fs, "/osu/osu!switcher.ini", content, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	backupPath, err := svc.BackupFile("/osu/osu!switcher.ini")
	if err != nil {
		t.Fatalf("BackupFile: %v", err)
	}
	if filepath.Dir(backupPath) != svc.BackupDir() {
		t.Errorf("backup written outside backup dir: %s", backupPath)
	}
	if !strings.HasSuffix(backupPath, ".ini") {
		t.Errorf("backup should keep the .ini extension, got %s", backupPath)
	}
	got, err := afero.ReadFile(fs, backupPath)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("backup content mismatch: %q", got)
	}
}

func TestBackupFileDeduplicatesAndRefreshesTimestamp(t *testing.T) {
	svc, fs := newTestService(t)

	if err := afero.WriteFile(fs, "/osu/u.cfg", []byte("same"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return first })
	path1, err := svc.BackupFile("/osu/u.cfg")
	if err != nil {
		t.Fatalf("first backup: %v", err)
	}

	second := first.Add(72 * time.Hour)
	svc.SetNow(func() time.Time { return second })
	path2, err := svc.BackupFile("/osu/u.cfg")
	if err != nil {
		t.Fatalf("second backup: %v", err)
	}
	if path1 != path2 {
		t.Errorf("identical content should reuse the snapshot: %s vs %s", path1, path2)
	}

	entries, err := afero.ReadDir(fs, svc.BackupDir())
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(entries))
	}
	if !entries[0].ModTime().Equal(second) {
		t.Errorf("expected mtime refreshed to %v, got %v", second, entries[0].ModTime())
	}
}

func TestBackupFileIsPrivate(t *testing.T) {
	svc, fs := newTestService(t)

	if err := afero.WriteFile(fs, "/osu/osu!.peppy.cfg", []byte("Password = secret\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	backupPath, err := svc.BackupFile("/osu/osu!.peppy.cfg")
	if err != nil {
		t.Fatalf("BackupFile: %v", err)
	}
	info, err := fs.Stat(backupPath)
	if err != nil {
		t.Fatalf("stat backup: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected snapshot mode 0600, got %v", perm)
	}

	// A snapshot left readable by an older version is tightened when reused.
	if err := fs.Chmod(backupPath, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := svc.BackupFile("/osu/osu!.peppy.cfg"); err != nil {
		t.Fatalf("second BackupFile: %v", err)
	}
	info, _ = fs.Stat(backupPath)
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected reused snapshot mode 0600, got %v", perm)
	}
}

func TestBackupFileMissingSourceIsSkipped(t *testing.T) {
	svc, fs := newTestService(t)

	path, err := svc.BackupFile("/osu/missing.cfg")
	if err != nil {
		t.Fatalf("BackupFile: %v", err)
	}
	if path != "" {
		t.Errorf("expected no backup path, got %q", path)
	}
	if exists, _ := afero.DirExists(fs, svc.BackupDir()); exists {
		t.Error("backup dir should not be created when nothing is backed up")
	}
}

func TestSnapshotBacksUpEveryPath(t *testing.T) {
	svc, fs := newTestService(t)

	files := map[string]string{
		"/osu/osu!.peppy.cfg":   "Username = peppy\n",
		"/osu/osu!switcher.ini": "[ripple.moe]\nUsername = r\n",
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	if err := svc.Snapshot("/osu/osu!.peppy.cfg", "/osu/osu!switcher.ini", "/osu/missing"); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	entries, err := afero.ReadDir(fs, svc.BackupDir())
	if err != nil {
		t.Fatalf("read backup dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(entries))
	}
}

func TestPruneBackups(t *testing.T) {
	svc, fs := newTestService(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	oldPath := filepath.Join(svc.BackupDir(), "old.cfg")
	recentPath := filepath.Join(svc.BackupDir(), "recent.cfg")
	for path, mtime := range map[string]time.Time{oldPath: base, recentPath: base.Add(48 * time.Hour)} {
		if err := afero.WriteFile(fs, path, []byte(path), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := fs.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := fs.MkdirAll(filepath.Join(svc.BackupDir(), "nested"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	svc.SetNow(func() time.Time { return base.Add(49 * time.Hour) })
	deleted, err := svc.PruneBackups(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneBackups: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if exists, _ := afero.Exists(fs, oldPath); exists {
		t.Error("old snapshot should be deleted")
	}
	if exists, _ := afero.Exists(fs, recentPath); !exists {
		t.Error("recent snapshot should remain")
	}
	if exists, _ := afero.DirExists(fs, filepath.Join(svc.BackupDir(), "nested")); !exists {
		t.Error("directories are never pruned")
	}
}

func TestPruneBackupsMissingDirectory(t *testing.T) {
	svc, _ := newTestService(t)

	deleted, err := svc.PruneBackups(time.Hour)
	if err != nil {
		t.Fatalf("PruneBackups: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected 0 deleted, got %d", deleted)
	}
}
