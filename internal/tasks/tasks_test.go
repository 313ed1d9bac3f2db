package tasks

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/desertthunder/albumsync/internal/localfs"
	"github.com/desertthunder/albumsync/internal/models"
	"github.com/desertthunder/albumsync/internal/services"
	"github.com/desertthunder/albumsync/internal/shared"
	tu "github.com/desertthunder/albumsync/internal/testing"
)

var _ services.AlbumService = (*tu.FakeAlbumService)(nil)

const testRoot = "/root"

func md5Tag(content string) string {
	return shared.HashTag(fmt.Sprintf("%x", md5.Sum([]byte(content))))
}

// newTestEngine builds an engine over an in-memory tree. Keys ending in "/" create empty directories.
func newTestEngine(t *testing.T, files map[string]string) (*AlbumEngine, *tu.FakeAlbumService) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	for path, content := range files {
		dir := filepath.Dir(path)
		if path[len(path)-1] == '/' {
			dir = path
		}
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
		if dir == path {
			continue
		}
		if err := afero.WriteFile(fsys, path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	service := tu.NewFakeAlbumService()
	engine, err := NewAlbumEngine(EngineOptions{
		Service:    service,
		Filesystem: localfs.NewLibrary(fsys, localfs.Options{Root: testRoot, Extensions: []string{".jpg", ".jpeg"}}),
		Root:       testRoot,
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine, service
}

func TestNewAlbumEngine(t *testing.T) {
	t.Run("requires a service", func(t *testing.T) {
		_, err := NewAlbumEngine(EngineOptions{Filesystem: localfs.NewLibrary(afero.NewMemMapFs(), localfs.Options{})})
		if !errors.Is(err, shared.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})

	t.Run("requires a filesystem", func(t *testing.T) {
		_, err := NewAlbumEngine(EngineOptions{Service: tu.NewFakeAlbumService()})
		if !errors.Is(err, shared.ErrConfiguration) {
			t.Errorf("expected ErrConfiguration, got %v", err)
		}
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	trip := map[string]string{
		"/root/2020_Trip/b.jpg":      "b",
		"/root/2020_Trip/a.jpg":      "a",
		"/root/2020_Trip/notes.txt":  "n",
		"/root/2020_Trip/Day1/c.jpg": "c",
	}

	t.Run("end to end", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			"ListAlbums user",
			"UploadAsset a.jpg",
			"CreateAlbum 2020 Trip",
			"UploadAsset b.jpg",
			"AddAssetToAlbum album-2 asset-3",
			"UploadAsset c.jpg",
			"CreateAlbum 2020 Trip / Day1",
		}
		if !slices.Equal(service.Calls, want) {
			t.Errorf("calls =\n%v\nwant\n%v", service.Calls, want)
		}

		album, ok := service.AlbumByTitle("2020 Trip")
		if !ok {
			t.Fatal("album 2020 Trip not created")
		}
		if album.AssetCount != 2 {
			t.Errorf("expected 2 assets in 2020 Trip, got %d", album.AssetCount)
		}
		if _, ok := service.AlbumByTitle("2020 Trip / Day1"); !ok {
			t.Error("album 2020 Trip / Day1 not created")
		}

		if summary.Count(KindUpload, StatusSucceeded) != 3 {
			t.Errorf("expected 3 uploads, got %d", summary.Count(KindUpload, StatusSucceeded))
		}
		if summary.Count(KindAlbum, StatusSucceeded) != 2 {
			t.Errorf("expected 2 albums created, got %d", summary.Count(KindAlbum, StatusSucceeded))
		}
		if summary.Directories != 2 {
			t.Errorf("expected 2 directories, got %d", summary.Directories)
		}
		if summary.Failed != 0 {
			t.Errorf("expected no failures, got %d", summary.Failed)
		}
	})

	t.Run("uploaded assets carry title tags and hash", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/Trip/Beach_Day_2.jpg": "x"})

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", false, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		album, _ := service.AlbumByTitle("Trip")
		assets := service.AlbumAssets(album.ID)
		if len(assets) != 1 {
			t.Fatalf("expected 1 asset, got %d", len(assets))
		}

		got := assets[0]
		if got.Title != "Beach Day 2" {
			t.Errorf("title = %q", got.Title)
		}
		if got.Tags != "Beach Day" {
			t.Errorf("tags = %q", got.Tags)
		}
		if got.Description != md5Tag("x") {
			t.Errorf("description = %q, want %q", got.Description, md5Tag("x"))
		}
		if got.Permissions.IsPublic {
			t.Error("expected private upload")
		}
	})

	t.Run("public visibility reaches subdirectories", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, title := range []string{"2020 Trip", "2020 Trip / Day1"} {
			album, ok := service.AlbumByTitle(title)
			if !ok {
				t.Fatalf("album %s not created", title)
			}
			for _, asset := range service.AlbumAssets(album.ID) {
				if !asset.Permissions.IsPublic {
					t.Errorf("expected %s in %s to be public", asset.Title, title)
				}
			}
		}
	})

	t.Run("rerun on unchanged tree uploads nothing", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil); err != nil {
			t.Fatalf("first run: %v", err)
		}
		uploads := service.UploadCalls

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}

		if service.UploadCalls != uploads {
			t.Errorf("expected no uploads on rerun, got %d", service.UploadCalls-uploads)
		}
		if service.CreateAlbumCalls != 2 {
			t.Errorf("expected no new albums, got %d creations", service.CreateAlbumCalls)
		}
		if summary.Skipped != 3 {
			t.Errorf("expected 3 skipped, got %d", summary.Skipped)
		}
	})

	t.Run("content already in album is skipped", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg":    "same",
			"/root/Trip/copy.jpg": "same",
			"/root/Trip/new.jpg":  "new",
		})
		albumID := service.SeedAlbum("Trip", models.Asset{Title: "a", Description: md5Tag("same")})

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(service.Uploaded, []string{"new.jpg"}) {
			t.Errorf("uploaded = %v", service.Uploaded)
		}

		tagged := 0
		for _, asset := range service.AlbumAssets(albumID) {
			if slices.Contains(shared.HashTags(asset.Description), md5Tag("same")) {
				tagged++
			}
		}
		if tagged != 1 {
			t.Errorf("expected exactly one asset tagged with the hash, got %d", tagged)
		}
		if summary.Skipped != 2 {
			t.Errorf("expected 2 skipped, got %d", summary.Skipped)
		}
	})

	t.Run("marker followed by text still counts as uploaded", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg": "edited",
			"/root/Trip/b.jpg": "noted",
		})
		service.SeedAlbum("Trip",
			models.Asset{Title: "a", Description: md5Tag("edited") + "_edited"},
			models.Asset{Title: "b", Description: "note " + md5Tag("noted") + "x"},
		)

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.UploadCalls != 0 {
			t.Errorf("expected no uploads, got %v", service.Uploaded)
		}
		if summary.Skipped != 2 {
			t.Errorf("expected 2 skipped, got %d", summary.Skipped)
		}
	})

	t.Run("identical files in one run upload once", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg": "same",
			"/root/Trip/b.jpg": "same",
		})

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.UploadCalls != 1 {
			t.Errorf("expected 1 upload, got %d", service.UploadCalls)
		}
	})

	t.Run("existing album is reused", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/Trip/a.jpg": "a"})
		albumID := service.SeedAlbum("Trip", models.Asset{Title: "old", Description: md5Tag("old")})

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.CreateAlbumCalls != 0 {
			t.Errorf("expected no album creation, got %d", service.CreateAlbumCalls)
		}
		if len(service.AlbumAssets(albumID)) != 2 {
			t.Errorf("expected asset attached to existing album")
		}
	})

	t.Run("failed album creation is retried by the next file", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg": "a",
			"/root/Trip/b.jpg": "b",
			"/root/Trip/c.jpg": "c",
		})
		service.CreateAlbumErr = []error{errors.New("quota exceeded")}

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if service.CreateAlbumCalls != 2 {
			t.Errorf("expected 2 creation attempts, got %d", service.CreateAlbumCalls)
		}
		if service.AddAssetCalls != 1 {
			t.Errorf("expected c.jpg attached, got %d attach calls", service.AddAssetCalls)
		}

		album, ok := service.AlbumByTitle("Trip")
		if !ok {
			t.Fatal("album not created on retry")
		}
		if album.AssetCount != 2 {
			t.Errorf("expected b and c in album, got %d", album.AssetCount)
		}

		failed := summary.Filter(StatusFailed)
		if len(failed) != 1 || filepath.Base(failed[0].Path) != "a.jpg" {
			t.Fatalf("expected a.jpg to fail, got %+v", failed)
		}
		if failed[0].AssetID == "" {
			t.Error("failed item should keep the uploaded asset id")
		}
	})

	t.Run("upload failure continues with the next file", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg": "a",
			"/root/Trip/b.jpg": "b",
		})
		service.UploadErr["a.jpg"] = fmt.Errorf("%w: timeout", shared.ErrRemoteOperation)

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"ListAlbums user", "UploadAsset a.jpg", "UploadAsset b.jpg", "CreateAlbum Trip"}
		if !slices.Equal(service.Calls, want) {
			t.Errorf("calls = %v, want %v", service.Calls, want)
		}
		if summary.Failed != 1 || summary.Succeeded != 2 {
			t.Errorf("failed=%d succeeded=%d", summary.Failed, summary.Succeeded)
		}
		if !errors.Is(summary.Filter(StatusFailed)[0].Err, shared.ErrRemoteOperation) {
			t.Error("expected remote error on failed item")
		}
	})

	t.Run("attach failure is recorded", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/Trip/a.jpg": "a"})
		service.SeedAlbum("Trip")
		service.AddAssetErr = errors.New("forbidden")

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Count(KindUpload, StatusFailed) != 1 {
			t.Errorf("expected failed upload item, got %+v", summary.Items)
		}
	})

	t.Run("album list failure ends the run", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)
		listErr := errors.New("unavailable")
		service.ListAlbumsErr = listErr

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil)
		if !errors.Is(err, listErr) {
			t.Fatalf("expected list error, got %v", err)
		}
		if summary == nil {
			t.Fatal("expected partial summary")
		}
		if service.UploadCalls != 0 {
			t.Errorf("expected no uploads, got %d", service.UploadCalls)
		}
	})

	t.Run("asset list failure skips directory files and continues", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)
		service.SeedAlbum("2020 Trip")
		service.ListAssetsErr = errors.New("unavailable")

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Count(KindAlbum, StatusFailed) != 1 {
			t.Errorf("expected failed album item, got %+v", summary.Items)
		}
		if !slices.Equal(service.Uploaded, []string{"c.jpg"}) {
			t.Errorf("expected only Day1 upload, got %v", service.Uploaded)
		}
	})

	t.Run("missing directory is a traversal error", func(t *testing.T) {
		engine, _ := newTestEngine(t, trip)

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/missing", true, nil)
		if !errors.Is(err, shared.ErrTraversal) {
			t.Errorf("expected ErrTraversal, got %v", err)
		}
		if summary == nil {
			t.Error("expected summary")
		}
	})

	t.Run("files in the root have no album", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/top.jpg":    "top",
			"/root/Trip/a.jpg": "a",
		})

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), testRoot, true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(service.Uploaded, []string{"a.jpg"}) {
			t.Errorf("uploaded = %v", service.Uploaded)
		}
		if summary.Skipped != 1 {
			t.Errorf("expected root file skipped, got %d", summary.Skipped)
		}
	})

	t.Run("excludes .git", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/Trip/a.jpg":          "a",
			"/root/Trip/.git/x.jpg":     "x",
			"/root/Trip/.git/sub/y.jpg": "y",
		})

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(service.Uploaded, []string{"a.jpg"}) {
			t.Errorf("uploaded = %v", service.Uploaded)
		}
		if summary.Directories != 1 {
			t.Errorf("expected .git not visited, got %d directories", summary.Directories)
		}
	})

	t.Run("reports progress", func(t *testing.T) {
		engine, _ := newTestEngine(t, trip)
		progress := make(chan ProgressUpdate, 64)

		if _, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/2020_Trip", true, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		phases := map[Phase]int{}
		for update := range progress {
			phases[update.Phase]++
		}
		if phases[ScanDirectory] != 2 || phases[UploadFile] != 3 || phases[CreateAlbum] != 2 {
			t.Errorf("unexpected progress phases: %v", phases)
		}
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		engine, service := newTestEngine(t, trip)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := engine.Upload(cancelled, engine.NewSyncContext("user"), "/root/2020_Trip", true, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(service.Calls) != 0 {
			t.Errorf("expected no remote calls, got %v", service.Calls)
		}
	})
}

func TestSyncPermissions(t *testing.T) {
	ctx := context.Background()
	public := models.NewPermissions(models.PermPublic)

	t.Run("no album visits every subdirectory without permission calls", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/A/B/C/":    "",
			"/root/A/D/x.jpg": "x",
			"/root/A/E/":      "",
		})

		summary, err := engine.SyncPermissions(ctx, engine.NewSyncContext("user"), "/root/A", true, public, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.PermissionCalls != 0 {
			t.Errorf("expected no permission calls, got %d", service.PermissionCalls)
		}
		// A plus its four subdirectories B, C, D, E
		if summary.Directories != 5 {
			t.Errorf("expected 5 directories visited, got %d", summary.Directories)
		}
	})

	t.Run("applies to every asset and tallies failures", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/A/x.jpg":   "x",
			"/root/A/B/y.jpg": "y",
		})
		service.SeedAlbum("A", models.Asset{ID: "p1"}, models.Asset{ID: "p2"}, models.Asset{ID: "p3"})
		service.SeedAlbum("A / B", models.Asset{ID: "p4"})
		service.PermissionErr["p2"] = errors.New("denied")

		summary, err := engine.SyncPermissions(ctx, engine.NewSyncContext("user"), "/root/A", true, public, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := summary.Count(KindPermission, StatusSucceeded); got != 3 {
			t.Errorf("expected 3 applied, got %d", got)
		}
		if got := summary.Count(KindPermission, StatusFailed); got != 1 {
			t.Errorf("expected 1 failed, got %d", got)
		}
		if !service.PermissionsApplied["p4"].IsPublic {
			t.Error("expected subdirectory album updated")
		}
	})

	t.Run("non recursive stays in one directory", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/A/B/y.jpg": "y"})
		service.SeedAlbum("A", models.Asset{ID: "p1"})
		service.SeedAlbum("A / B", models.Asset{ID: "p2"})

		summary, err := engine.SyncPermissions(ctx, engine.NewSyncContext("user"), "/root/A", false, public, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.PermissionCalls != 1 {
			t.Errorf("expected 1 permission call, got %d", service.PermissionCalls)
		}
		if summary.Directories != 1 {
			t.Errorf("expected 1 directory, got %d", summary.Directories)
		}
	})

	t.Run("excludes .git", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/A/.git/objects/": ""})
		service.SeedAlbum("A / .git", models.Asset{ID: "p1"})

		summary, err := engine.SyncPermissions(ctx, engine.NewSyncContext("user"), "/root/A", true, public, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.PermissionCalls != 0 {
			t.Errorf("expected .git skipped, got %d permission calls", service.PermissionCalls)
		}
		if summary.Directories != 1 {
			t.Errorf("expected 1 directory, got %d", summary.Directories)
		}
	})

	t.Run("missing directory propagates", func(t *testing.T) {
		engine, _ := newTestEngine(t, map[string]string{"/root/A/": ""})

		_, err := engine.SyncPermissions(ctx, engine.NewSyncContext("user"), "/root/nope", true, public, nil)
		if !errors.Is(err, shared.ErrTraversal) {
			t.Errorf("expected ErrTraversal, got %v", err)
		}
	})
}

func TestFixAlbumNames(t *testing.T) {
	ctx := context.Background()

	t.Run("renames prefixed albums", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{
			"/root/02_Vacation/10_Beach/a.jpg": "a",
			"/root/Plain/b.jpg":                "b",
		})
		vacation := service.SeedAlbum("02 Vacation")
		beach := service.SeedAlbum("02 Vacation / 10 Beach")
		service.SeedAlbum("Plain")

		sc := engine.NewSyncContext("user")
		summary, err := engine.FixAlbumNames(ctx, sc, testRoot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			"ListAlbums user",
			"RenameAlbum " + vacation + " Vacation",
			"RenameAlbum " + beach + " Vacation / Beach",
		}
		if !slices.Equal(service.Calls, want) {
			t.Errorf("calls = %v, want %v", service.Calls, want)
		}
		if summary.Count(KindRename, StatusSucceeded) != 2 {
			t.Errorf("expected 2 renames, got %+v", summary.Items)
		}

		if _, ok, _ := sc.Album(ctx, "Vacation / Beach"); !ok {
			t.Error("expected cache updated with new title")
		}
		if _, ok, _ := sc.Album(ctx, "02 Vacation / 10 Beach"); ok {
			t.Error("expected old title removed from cache")
		}
	})

	t.Run("normalizes repeated separators", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/02_Vacation/a.jpg": "a"})
		service.SeedAlbum("02 Vacation")

		if _, err := engine.FixAlbumNames(ctx, engine.NewSyncContext("user"), "/root//02_Vacation", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := service.AlbumByTitle("Vacation"); !ok {
			t.Error("expected album renamed")
		}
	})

	t.Run("rename failure continues", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/01_A/02_B/": ""})
		service.SeedAlbum("01 A")
		service.SeedAlbum("01 A / 02 B")
		service.RenameErr = errors.New("denied")

		summary, err := engine.FixAlbumNames(ctx, engine.NewSyncContext("user"), testRoot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.RenameCalls != 2 {
			t.Errorf("expected both renames attempted, got %d", service.RenameCalls)
		}
		if summary.Failed != 2 {
			t.Errorf("expected 2 failures, got %d", summary.Failed)
		}
	})

	t.Run("excludes .git", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/01_A/.git/02_refs/": ""})
		service.SeedAlbum("01 A / .git / 02 refs")

		summary, err := engine.FixAlbumNames(ctx, engine.NewSyncContext("user"), testRoot, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.RenameCalls != 0 {
			t.Errorf("expected no renames, got %d", service.RenameCalls)
		}
		// root and 01_A
		if summary.Directories != 2 {
			t.Errorf("expected 2 directories, got %d", summary.Directories)
		}
	})

	t.Run("no remote calls when nothing is prefixed", func(t *testing.T) {
		engine, service := newTestEngine(t, map[string]string{"/root/Plain/Sub/": ""})

		if _, err := engine.FixAlbumNames(ctx, engine.NewSyncContext("user"), testRoot, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(service.Calls) != 0 {
			t.Errorf("expected no calls, got %v", service.Calls)
		}
	})
}

type fakeRecorder struct {
	started   int
	items     []int
	finished  int
	lastErr   error
	failStart bool
}

func (r *fakeRecorder) StartRun(command, root, path string) (string, error) {
	r.started++
	if r.failStart {
		return "", errors.New("database locked")
	}
	return "run-1", nil
}

func (r *fakeRecorder) RecordItem(runID string, position int, item ItemResult) error {
	r.items = append(r.items, position)
	return nil
}

func (r *fakeRecorder) FinishRun(runID string, summary *RunSummary, runErr error) error {
	r.finished++
	r.lastErr = runErr
	return nil
}

func TestRunRecorder(t *testing.T) {
	ctx := context.Background()
	files := map[string]string{"/root/Trip/a.jpg": "a", "/root/Trip/b.jpg": "b"}

	t.Run("journals every item in order", func(t *testing.T) {
		engine, _ := newTestEngine(t, files)
		recorder := &fakeRecorder{}
		engine.recorder = recorder

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.RunID != "run-1" {
			t.Errorf("run id = %q", summary.RunID)
		}
		// album created, a.jpg, b.jpg
		if !slices.Equal(recorder.items, []int{0, 1, 2}) {
			t.Errorf("positions = %v", recorder.items)
		}
		if recorder.finished != 1 {
			t.Errorf("expected run finished once, got %d", recorder.finished)
		}
	})

	t.Run("journal failure does not stop the run", func(t *testing.T) {
		engine, service := newTestEngine(t, files)
		recorder := &fakeRecorder{failStart: true}
		engine.recorder = recorder

		summary, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/Trip", true, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.UploadCalls != 2 {
			t.Errorf("expected uploads to proceed, got %d", service.UploadCalls)
		}
		if summary.RunID != "" || len(recorder.items) != 0 || recorder.finished != 0 {
			t.Error("expected no journaling without a run id")
		}
	})

	t.Run("records the run error", func(t *testing.T) {
		engine, _ := newTestEngine(t, files)
		recorder := &fakeRecorder{}
		engine.recorder = recorder

		_, err := engine.Upload(ctx, engine.NewSyncContext("user"), "/root/missing", true, nil)
		if !errors.Is(recorder.lastErr, shared.ErrTraversal) || !errors.Is(err, shared.ErrTraversal) {
			t.Errorf("expected traversal error recorded, got %v", recorder.lastErr)
		}
	})
}

func TestSyncContext(t *testing.T) {
	ctx := context.Background()

	t.Run("album list is fetched once", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		service.SeedAlbum("A")
		sc := NewSyncContext(service, "user")

		for range 3 {
			if _, ok, err := sc.Album(ctx, "A"); err != nil || !ok {
				t.Fatalf("expected album A, got ok=%v err=%v", ok, err)
			}
		}
		if _, ok, _ := sc.Album(ctx, "B"); ok {
			t.Error("unexpected album B")
		}
		if service.ListAlbumsCalls != 1 {
			t.Errorf("expected 1 list call, got %d", service.ListAlbumsCalls)
		}
	})

	t.Run("failed album list is retried", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		service.ListAlbumsErr = errors.New("unavailable")
		sc := NewSyncContext(service, "user")

		if _, _, err := sc.Album(ctx, "A"); err == nil {
			t.Fatal("expected error")
		}
		service.ListAlbumsErr = nil
		if _, _, err := sc.Album(ctx, "A"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.ListAlbumsCalls != 2 {
			t.Errorf("expected 2 list calls, got %d", service.ListAlbumsCalls)
		}
	})

	t.Run("first album wins on duplicate titles", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		first := service.SeedAlbum("A")
		service.SeedAlbum("A")
		sc := NewSyncContext(service, "user")

		album, _, _ := sc.Album(ctx, "A")
		if album.ID != first {
			t.Errorf("expected %s, got %s", first, album.ID)
		}
	})

	t.Run("shallow assets reuse a full listing", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		id := service.SeedAlbum("A", models.Asset{ID: "p1", Description: md5Tag("p1")})
		sc := NewSyncContext(service, "user")

		full, err := sc.Assets(ctx, id, true)
		if err != nil || len(full) != 1 {
			t.Fatalf("unexpected result %v %v", full, err)
		}
		if _, err := sc.Assets(ctx, id, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if service.ListAssetsCalls != 1 {
			t.Errorf("expected 1 asset list call, got %d", service.ListAssetsCalls)
		}
	})

	t.Run("known hashes", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		service.SeedAlbum("A", models.Asset{Description: "sunset " + md5Tag("x")}, models.Asset{Description: "no marker"})
		sc := NewSyncContext(service, "user")

		known, err := sc.KnownHashes(ctx, "A")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if known.Cardinality() != 1 || !known.Contains(md5Tag("x")) {
			t.Errorf("unexpected hashes %v", known.ToSlice())
		}

		empty, err := sc.KnownHashes(ctx, "missing")
		if err != nil || empty.Cardinality() != 0 {
			t.Errorf("expected empty set for missing album, got %v %v", empty, err)
		}
	})

	t.Run("known hashes are case sensitive on album title", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		service.SeedAlbum("trip", models.Asset{Description: md5Tag("x")})
		sc := NewSyncContext(service, "user")

		known, _ := sc.KnownHashes(ctx, "Trip")
		if known.Cardinality() != 0 {
			t.Error("expected no match across title case")
		}
	})

	t.Run("added album and assets are visible", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		sc := NewSyncContext(service, "user")
		if _, _, err := sc.Album(ctx, "A"); err != nil {
			t.Fatal(err)
		}

		sc.AddAlbum(models.Album{ID: "new", Title: "A"}, models.Asset{ID: "p1", Description: md5Tag("one")})
		sc.AddAsset("A", models.Asset{ID: "p2", Description: md5Tag("two")})

		album, ok, _ := sc.Album(ctx, "A")
		if !ok || album.AssetCount != 1 {
			t.Errorf("unexpected album %+v", album)
		}

		assets, _ := sc.Assets(ctx, "new", true)
		if len(assets) != 2 {
			t.Errorf("expected 2 cached assets, got %d", len(assets))
		}

		known, _ := sc.KnownHashes(ctx, "A")
		if !known.Contains(md5Tag("one"), md5Tag("two")) {
			t.Errorf("unexpected hashes %v", known.ToSlice())
		}
		if service.ListAssetsCalls != 0 {
			t.Errorf("expected no asset fetches, got %d", service.ListAssetsCalls)
		}
	})

	t.Run("rename moves cache entry", func(t *testing.T) {
		service := tu.NewFakeAlbumService()
		service.SeedAlbum("01 A")
		sc := NewSyncContext(service, "user")

		sc.RenameAlbum("01 A", "A") // before load: no-op
		if _, ok, _ := sc.Album(ctx, "01 A"); !ok {
			t.Fatal("expected album loaded")
		}

		sc.RenameAlbum("01 A", "A")
		if album, ok, _ := sc.Album(ctx, "A"); !ok || album.Title != "A" {
			t.Errorf("expected renamed album, got %+v", album)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ScanDirectory, "scan_directory"},
		{UploadFile, "upload_file"},
		{CreateAlbum, "create_album"},
		{SetPermissions, "set_permissions"},
		{RenameAlbum, "rename_album"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
			}
		})
	}
}
