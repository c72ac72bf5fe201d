package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"sort"
	"time"

	"dmadmin/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Bucket is a single S3 bucket holding marketplace documents
type Bucket struct {
	name      string
	api       s3API
	presigner presigner
}

func NewBucket(client *s3.Client, name string) *Bucket {
	return newBucket(client, s3.NewPresignClient(client), name)
}

func newBucket(api s3API, presigner presigner, name string) *Bucket {
	return &Bucket{name: name, api: api, presigner: presigner}
}

func (b *Bucket) Name() string {
	return b.name
}

// SaveOptions control how an object is stored
type SaveOptions struct {
	// ACL defaults to private
	ACL s3types.ObjectCannedACL
	// DownloadFileName, when set, is sent as an attachment Content-Disposition
	DownloadFileName string
	ContentType      string
}

// List returns the objects under prefix, most recently modified first.
func (b *Bucket) List(ctx context.Context, prefix string) ([]types.StoredObject, error) {
	paginator := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(prefix),
	})

	objects := make([]types.StoredObject, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", b.name, prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			// Folder placeholder objects
			if key == "" || key[len(key)-1] == '/' {
				continue
			}
			objects = append(objects, types.StoredObject{
				Path:         key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	return objects, nil
}

// GetKey returns the metadata for path, or nil when the object does not
// exist.
func (b *Bucket) GetKey(ctx context.Context, path string) (*types.StoredObject, error) {
	if path == "" {
		return nil, nil
	}

	out, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to head %s/%s: %w", b.name, path, err)
	}

	return &types.StoredObject{
		Path:         path,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ContentType:  aws.ToString(out.ContentType),
	}, nil
}

func (b *Bucket) Save(ctx context.Context, path string, body io.Reader, opts SaveOptions) error {
	acl := opts.ACL
	if acl == "" {
		acl = s3types.ObjectCannedACLPrivate
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(path),
		Body:   body,
		ACL:    acl,
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if opts.DownloadFileName != "" {
		disposition := mime.FormatMediaType("attachment", map[string]string{"filename": opts.DownloadFileName})
		input.ContentDisposition = aws.String(disposition)
	}

	if _, err := b.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", b.name, path, err)
	}

	return nil
}

func (b *Bucket) Delete(ctx context.Context, path string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", b.name, path, err)
	}

	return nil
}

// SignedURL returns a time limited download URL for path, or an empty
// string when the object does not exist.
func (b *Bucket) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	obj, err := b.GetKey(ctx, path)
	if err != nil {
		return "", err
	}
	if obj == nil {
		return "", nil
	}

	req, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", b.name, path, err)
	}

	return req.URL, nil
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
