package images

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
)

type fakeMinio struct {
	bucketExists bool
	madeBucket   string
	objects      map[string][]byte
	putErr       error
	contentTypes map[string]string
}

func newFakeMinio(exists bool) *fakeMinio {
	return &fakeMinio{
		bucketExists: exists,
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucketName string, _ minio.MakeBucketOptions) error {
	f.madeBucket = bucketName
	f.bucketExists = true
	return nil
}

func (f *fakeMinio) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	f.contentTypes[objectName] = opts.ContentType
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func TestMinioStoreCreatesMissingBucket(t *testing.T) {
	api := newFakeMinio(false)

	_, err := newMinioStoreWithAPI(context.Background(), api, "supernova", "http://localhost:9000/supernova")
	if err != nil {
		t.Fatalf("newMinioStoreWithAPI: %v", err)
	}
	if api.madeBucket != "supernova" {
		t.Errorf("made bucket = %q, want supernova", api.madeBucket)
	}
}

func TestMinioStoreKeepsExistingBucket(t *testing.T) {
	api := newFakeMinio(true)

	_, err := newMinioStoreWithAPI(context.Background(), api, "supernova", "http://localhost:9000/supernova")
	if err != nil {
		t.Fatalf("newMinioStoreWithAPI: %v", err)
	}
	if api.madeBucket != "" {
		t.Error("bucket should not be recreated")
	}
}

func TestMinioStorePut(t *testing.T) {
	api := newFakeMinio(true)
	s, err := newMinioStoreWithAPI(context.Background(), api, "supernova", "http://localhost:9000/supernova")
	if err != nil {
		t.Fatalf("newMinioStoreWithAPI: %v", err)
	}

	payload := []byte("fake image bytes")
	up, err := s.Put(context.Background(), bytes.NewReader(payload), int64(len(payload)), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if !strings.HasPrefix(up.ID, "products/") {
		t.Errorf("object key = %q, want products/ prefix", up.ID)
	}
	if up.URL != "http://localhost:9000/supernova/"+up.ID {
		t.Errorf("url = %q", up.URL)
	}
	if up.Thumbnail != up.URL {
		t.Errorf("thumbnail = %q", up.Thumbnail)
	}
	if !bytes.Equal(api.objects[up.ID], payload) {
		t.Error("stored bytes differ from input")
	}
	if api.contentTypes[up.ID] != "image/png" {
		t.Errorf("content type = %q", api.contentTypes[up.ID])
	}
}

func TestMinioStorePutError(t *testing.T) {
	api := newFakeMinio(true)
	api.putErr = errors.New("storage down")
	s, err := newMinioStoreWithAPI(context.Background(), api, "supernova", "http://localhost:9000/supernova")
	if err != nil {
		t.Fatalf("newMinioStoreWithAPI: %v", err)
	}

	if _, err := s.Put(context.Background(), strings.NewReader("x"), 1, "image/png"); err == nil {
		t.Fatal("expected error from failed upload")
	}
}
