package artifact

import (
	"context"
	"io"
	"strings"
	"testing"
)

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	info, err := store.Put(ctx, "runs/abc/report.json", strings.NewReader(`{"ok":true}`), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"operation": "steady"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"ok":true}`)) {
		t.Fatalf("size = %d", info.Size)
	}
	if info.ETag == "" {
		t.Fatal("etag must be set")
	}

	if _, err := store.Put(ctx, "runs/abc/report.json", strings.NewReader("x"), PutOptions{}); err == nil {
		t.Fatal("second put on the same key must fail")
	}

	got, rc, err := store.Get(ctx, "runs/abc/report.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	payload, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != `{"ok":true}` {
		t.Fatalf("payload = %q", payload)
	}
	if got.ContentType != "application/json" || got.Metadata["operation"] != "steady" {
		t.Fatalf("info = %+v", got)
	}

	head, err := store.Head(ctx, "runs/abc/report.json")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.ETag != info.ETag {
		t.Fatalf("head etag %q != put etag %q", head.ETag, info.ETag)
	}

	if _, err := store.Put(ctx, "runs/abc/model.py", strings.NewReader("import timml"), PutOptions{ContentType: "text/x-python"}); err != nil {
		t.Fatal(err)
	}
	infos, err := store.List(ctx, "runs/abc/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "runs/abc/model.py" || infos[1].Key != "runs/abc/report.json" {
		t.Fatalf("list = %+v", infos)
	}

	u, err := store.PresignURL(ctx, "runs/abc/report.json", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if u == "" {
		t.Fatal("presigned URL must not be empty")
	}
	if _, err := store.PresignURL(ctx, "runs/abc/report.json", SignedURLOptions{Method: "PUT"}); err != ErrUnsupported {
		t.Fatalf("PUT presign error = %v, want ErrUnsupported", err)
	}

	existed, err := store.Delete(ctx, "runs/abc/report.json")
	if err != nil || !existed {
		t.Fatalf("delete = %v, %v", existed, err)
	}
	existed, err = store.Delete(ctx, "runs/abc/report.json")
	if err != nil || existed {
		t.Fatalf("repeat delete = %v, %v", existed, err)
	}
	if _, err := store.Head(ctx, "runs/abc/report.json"); err == nil {
		t.Fatal("head after delete must fail")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
	testStoreRoundTrip(t, store)
}

func TestFilesystemStore(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
	testStoreRoundTrip(t, store)
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../escape", "/absolute"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("key %q must be rejected", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	t.Setenv("AEMCORE_ARTIFACT_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}

	t.Setenv("AEMCORE_ARTIFACT_DRIVER", "carrier-pigeon")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("unknown driver must fail")
	}

	t.Setenv("AEMCORE_ARTIFACT_DRIVER", "s3")
	t.Setenv("AEMCORE_ARTIFACT_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("s3 driver without bucket must fail")
	}
}
