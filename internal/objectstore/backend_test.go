package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeBackend is an in-memory backend for testing. failOn maps a method name
// to the error it should return.
type fakeBackend struct {
	buckets      []string
	objects      map[string]map[string][]byte // bucket -> key -> data
	policies     map[string]string
	failOn       map[string]error
	presignCalls int
	lastExpiry   time.Duration
	lastMetadata map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		objects:  make(map[string]map[string][]byte),
		policies: make(map[string]string),
		failOn:   make(map[string]error),
	}
}

func (f *fakeBackend) addBucket(name string) {
	f.buckets = append(f.buckets, name)
	f.objects[name] = make(map[string][]byte)
}

func (f *fakeBackend) put(bucket, key string, data []byte) {
	if _, ok := f.objects[bucket]; !ok {
		f.addBucket(bucket)
	}
	f.objects[bucket][key] = data
}

func noSuchKey(key string) error {
	return minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist.", Key: key}
}

func (f *fakeBackend) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	if err := f.failOn["ListBuckets"]; err != nil {
		return nil, err
	}
	infos := make([]minio.BucketInfo, 0, len(f.buckets))
	for _, name := range f.buckets {
		infos = append(infos, minio.BucketInfo{Name: name, CreationDate: time.Unix(0, 0)})
	}
	return infos, nil
}

func (f *fakeBackend) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	if err := f.failOn["MakeBucket"]; err != nil {
		return err
	}
	f.addBucket(bucketName)
	return nil
}

func (f *fakeBackend) RemoveBucket(ctx context.Context, bucketName string) error {
	if err := f.failOn["RemoveBucket"]; err != nil {
		return err
	}
	delete(f.objects, bucketName)
	for i, name := range f.buckets {
		if name == bucketName {
			f.buckets = append(f.buckets[:i], f.buckets[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	if err := f.failOn["BucketExists"]; err != nil {
		return false, err
	}
	_, ok := f.objects[bucketName]
	return ok, nil
}

func (f *fakeBackend) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		if err := f.failOn["ListObjects"]; err != nil {
			ch <- minio.ObjectInfo{Err: err}
			return
		}
		keys := make([]string, 0, len(f.objects[bucketName]))
		for key := range f.objects[bucketName] {
			if strings.HasPrefix(key, opts.Prefix) {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			ch <- minio.ObjectInfo{
				Key:          key,
				Size:         int64(len(f.objects[bucketName][key])),
				LastModified: time.Unix(0, 0),
				ETag:         fmt.Sprintf("etag-%s", key),
			}
		}
	}()
	return ch
}

func (f *fakeBackend) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if err := f.failOn["PutObject"]; err != nil {
		return minio.UploadInfo{}, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.put(bucketName, objectName, data)
	f.lastMetadata = opts.UserMetadata
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeBackend) FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error {
	if err := f.failOn["FGetObject"]; err != nil {
		return err
	}
	data, ok := f.objects[bucketName][objectName]
	if !ok {
		return noSuchKey(objectName)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}

func (f *fakeBackend) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	if err := f.failOn["GetObject"]; err != nil {
		return nil, err
	}
	data, ok := f.objects[bucketName][objectName]
	if !ok {
		return nil, noSuchKey(objectName)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeBackend) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	if err := f.failOn["StatObject"]; err != nil {
		return minio.ObjectInfo{}, err
	}
	data, ok := f.objects[bucketName][objectName]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey(objectName)
	}
	return minio.ObjectInfo{
		Key:          objectName,
		Size:         int64(len(data)),
		LastModified: time.Unix(0, 0),
		ETag:         fmt.Sprintf("etag-%s", objectName),
	}, nil
}

func (f *fakeBackend) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	if err := f.failOn["RemoveObject"]; err != nil {
		return err
	}
	delete(f.objects[bucketName], objectName)
	return nil
}

func (f *fakeBackend) RemoveObjects(ctx context.Context, bucketName string, objectsCh <-chan minio.ObjectInfo, opts minio.RemoveObjectsOptions) <-chan minio.RemoveObjectError {
	errCh := make(chan minio.RemoveObjectError)
	go func() {
		defer close(errCh)
		for obj := range objectsCh {
			if err := f.failOn["RemoveObjects"]; err != nil {
				errCh <- minio.RemoveObjectError{ObjectName: obj.Key, Err: err}
				continue
			}
			delete(f.objects[bucketName], obj.Key)
		}
	}()
	return errCh
}

func (f *fakeBackend) CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	if err := f.failOn["CopyObject"]; err != nil {
		return minio.UploadInfo{}, err
	}
	data, ok := f.objects[src.Bucket][src.Object]
	if !ok {
		return minio.UploadInfo{}, noSuchKey(src.Object)
	}
	f.put(dst.Bucket, dst.Object, data)
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(data))}, nil
}

func (f *fakeBackend) Presign(ctx context.Context, method, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	f.presignCalls++
	f.lastExpiry = expires
	if err := f.failOn["Presign"]; err != nil {
		return nil, err
	}
	return url.Parse(fmt.Sprintf("https://storage.example/%s/%s?method=%s", bucketName, objectName, method))
}

func (f *fakeBackend) SetBucketPolicy(ctx context.Context, bucketName, policy string) error {
	if err := f.failOn["SetBucketPolicy"]; err != nil {
		return err
	}
	f.policies[bucketName] = policy
	return nil
}

func (f *fakeBackend) GetBucketPolicy(ctx context.Context, bucketName string) (string, error) {
	if err := f.failOn["GetBucketPolicy"]; err != nil {
		return "", err
	}
	return f.policies[bucketName], nil
}

var _ backend = (*fakeBackend)(nil)

// newTestService returns a Service wired directly to fb, skipping Connect.
func newTestService(fb *fakeBackend) *Service {
	s := New()
	s.backend = fb
	s.cfg = Config{Endpoint: "localhost", Port: DefaultPort, Region: DefaultRegion}
	return s
}
