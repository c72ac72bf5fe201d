package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/go-cmp/cmp"
)

type fakeS3 struct {
	objects map[string]s3types.Object
	puts    []*s3.PutObjectInput
	deletes []string
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, obj := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			out.Contents = append(out.Contents, obj)
		}
	}
	return out, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: obj.Size, LastModified: obj.LastModified}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL: "https://" + aws.ToString(params.Bucket) + ".s3.amazonaws.com/" + aws.ToString(params.Key) + "?X-Amz-Signature=sig",
	}, nil
}

func object(key string, modified time.Time) s3types.Object {
	return s3types.Object{Key: aws.String(key), Size: aws.Int64(10), LastModified: aws.Time(modified)}
}

func TestListNewestFirst(t *testing.T) {
	base := time.Date(2016, 6, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeS3{objects: map[string]s3types.Object{
		"g-cloud-8/communications/updates/communications/":         object("g-cloud-8/communications/updates/communications/", base),
		"g-cloud-8/communications/updates/communications/old.pdf":  object("g-cloud-8/communications/updates/communications/old.pdf", base),
		"g-cloud-8/communications/updates/communications/new.pdf":  object("g-cloud-8/communications/updates/communications/new.pdf", base.Add(time.Hour)),
		"g-cloud-8/communications/updates/clarifications/help.pdf": object("g-cloud-8/communications/updates/clarifications/help.pdf", base),
	}}
	bucket := newBucket(api, &fakePresigner{}, "communications")

	objects, err := bucket.List(context.Background(), "g-cloud-8/communications/updates/communications")
	if err != nil {
		t.Fatal(err)
	}

	var paths []string
	for _, obj := range objects {
		paths = append(paths, obj.Path)
	}
	want := []string{
		"g-cloud-8/communications/updates/communications/new.pdf",
		"g-cloud-8/communications/updates/communications/old.pdf",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestGetKeyMissing(t *testing.T) {
	bucket := newBucket(&fakeS3{objects: map[string]s3types.Object{}}, &fakePresigner{}, "agreements")

	obj, err := bucket.GetKey(context.Background(), "g-cloud-8/agreements/1/missing.pdf")
	if err != nil {
		t.Fatalf("GetKey() error = %v", err)
	}
	if obj != nil {
		t.Errorf("GetKey() = %+v, want nil", obj)
	}

	obj, err = bucket.GetKey(context.Background(), "")
	if err != nil || obj != nil {
		t.Errorf("GetKey(\"\") = %+v, %v, want nil, nil", obj, err)
	}
}

func TestSaveSetsACLAndDisposition(t *testing.T) {
	api := &fakeS3{}
	bucket := newBucket(api, &fakePresigner{}, "agreements")

	err := bucket.Save(context.Background(), "g-cloud-8/agreements/1/countersigned.pdf", strings.NewReader("%PDF-1.4"), SaveOptions{
		DownloadFileName: "acme-ltd-1-countersigned-framework-agreement.pdf",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(api.puts) != 1 {
		t.Fatalf("PutObject calls = %d, want 1", len(api.puts))
	}
	put := api.puts[0]
	if put.ACL != s3types.ObjectCannedACLPrivate {
		t.Errorf("ACL = %q, want private", put.ACL)
	}
	if got := aws.ToString(put.ContentType); got != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", got)
	}
	if got := aws.ToString(put.ContentDisposition); got != "attachment; filename=acme-ltd-1-countersigned-framework-agreement.pdf" {
		t.Errorf("ContentDisposition = %q", got)
	}
}

func TestSignedURL(t *testing.T) {
	modified := time.Date(2016, 6, 1, 9, 0, 0, 0, time.UTC)
	presigner := &fakePresigner{}
	bucket := newBucket(&fakeS3{objects: map[string]s3types.Object{
		"g-cloud-8/agreements/1/signed.pdf": object("g-cloud-8/agreements/1/signed.pdf", modified),
	}}, presigner, "agreements")

	url, err := bucket.SignedURL(context.Background(), "g-cloud-8/agreements/1/signed.pdf", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://agreements.s3.amazonaws.com/g-cloud-8/agreements/1/signed.pdf?X-Amz-Signature=sig" {
		t.Errorf("SignedURL() = %q", url)
	}
	if presigner.expires != 30*time.Second {
		t.Errorf("expiry = %s, want 30s", presigner.expires)
	}

	missing, err := bucket.SignedURL(context.Background(), "g-cloud-8/agreements/1/missing.pdf", 30*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if missing != "" {
		t.Errorf("SignedURL() for missing object = %q, want empty", missing)
	}
}
