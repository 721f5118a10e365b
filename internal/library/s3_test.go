package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/media-library/backend/internal/models"
)

// fakeLister serves pages of objects, two keys per page.
type fakeLister struct {
	keys   []string
	err    error
	inputs []*s3.ListObjectsV2Input
}

func (f *fakeLister) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range f.keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	end := start + 2
	if end > len(f.keys) {
		end = len(f.keys)
	}

	out := &s3.ListObjectsV2Output{}
	mod := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	for _, k := range f.keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			Size:         aws.Int64(42),
			LastModified: aws.Time(mod),
		})
	}
	if end < len(f.keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(f.keys[end])
	}
	return out, nil
}

func TestS3Scanner_Scan(t *testing.T) {
	lister := &fakeLister{keys: []string{
		"media/b.png",
		"media/avatars/",
		"media/avatars/a.png",
		"media/.cache/x.png",
		"media/docs/contract.pdf",
		"media/tools/setup.exe",
		"media/one/two/three/deep.jpg",
		"media/one/two/three/four/too-deep.jpg",
		"media/LICENSE",
	}}

	scanner := NewS3Scanner(lister, "assets", "/media", Options{PublicURLPrefix: "https://cdn.example.com"})
	files, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	got := byName(files)
	assert.Len(t, got, 4)
	assert.Equal(t, "https://cdn.example.com/avatars/a.png", got["a.png"].URL)
	assert.Equal(t, "avatars", got["a.png"].Folder)
	assert.Equal(t, "", got["b.png"].Folder)
	assert.Equal(t, models.FileTypeDocument, got["contract.pdf"].Type)
	assert.Equal(t, "one", got["deep.jpg"].Folder)
	assert.Equal(t, uint64(42), got["b.png"].Size)
	assert.Equal(t, "2024-03-09", got["b.png"].Modified)

	for i, f := range files {
		assert.Equal(t, i, f.Seq)
	}

	require.NotEmpty(t, lister.inputs)
	assert.Equal(t, "assets", aws.ToString(lister.inputs[0].Bucket))
	assert.Equal(t, "media/", aws.ToString(lister.inputs[0].Prefix))
	assert.Greater(t, len(lister.inputs), 1, "expected pagination")
}

func TestS3Scanner_NoSuchBucket(t *testing.T) {
	lister := &fakeLister{err: &types.NoSuchBucket{Message: aws.String("gone")}}
	files, err := NewS3Scanner(lister, "missing", "", Options{}).Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestS3Scanner_ListError(t *testing.T) {
	lister := &fakeLister{err: errors.New("access denied")}
	_, err := NewS3Scanner(lister, "assets", "", Options{}).Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
