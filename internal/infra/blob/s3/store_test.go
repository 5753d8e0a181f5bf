package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"panrgp/internal/blob/core"
)

func TestMockStoreRoundTrip(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if s.Driver() != core.DriverS3 || s.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected driver/bucket %s %s", s.Driver(), s.Bucket())
	}
	info, err := s.Put(ctx, "exports/regions.json", bytes.NewBufferString(`{"regions":[]}`), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"run": "abc"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/regions.json" || info.ContentType != "application/json" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Metadata["run"] != "abc" {
		t.Fatalf("metadata not preserved: %+v", info.Metadata)
	}
	_, rc, err := s.Get(ctx, "exports/regions.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != `{"regions":[]}` {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestMockStoreOverwriteAndNotFound(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if _, err := s.Head(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head: expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "k", bytes.NewBufferString("a"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "k", bytes.NewBufferString("b"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := s.Put(ctx, "k", bytes.NewBufferString("bc"), core.PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	head, err := s.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != 2 {
		t.Fatalf("expected size 2, got %d", head.Size)
	}
}

func TestMockStoreListDelete(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	for _, k := range []string{"p/b", "p/a", "q/c"} {
		if _, err := s.Put(ctx, k, bytes.NewBufferString(k), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	infos, err := s.List(ctx, "p/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "p/a" || infos[1].Key != "p/b" {
		t.Fatalf("unexpected list %+v", infos)
	}
	ok, err := s.Delete(ctx, "p/a")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "p/a")
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestDecodeChunked(t *testing.T) {
	body, ok := decodeChunked([]byte("5\r\nhello\r\n0\r\nx-amz-checksum-crc32:abc\r\n\r\n"))
	if !ok || string(body) != "hello" {
		t.Fatalf("unexpected decode %q %v", body, ok)
	}
	if _, ok := decodeChunked([]byte("plain body")); ok {
		t.Fatalf("plain body must not decode")
	}
}
