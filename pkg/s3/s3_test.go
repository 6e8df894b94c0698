package s3

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resham-cricketer/pkg/apperr"
)

type fakeUploader struct {
	input *s3manager.UploadInput
	err   error
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(in.Key)}, nil
}

func TestUploadThumbnail(t *testing.T) {
	fake := &fakeUploader{}
	u := &Uploader{api: fake, bucket: "thumbs"}

	url, err := u.UploadThumbnail(context.Background(), strings.NewReader("img"), "Nets.PNG")
	require.NoError(t, err)

	assert.Equal(t, "thumbs", aws.StringValue(fake.input.Bucket))
	assert.True(t, strings.HasPrefix(aws.StringValue(fake.input.Key), "thumbnails/"))
	assert.True(t, strings.HasSuffix(aws.StringValue(fake.input.Key), ".png"))
	assert.Equal(t, "image/png", aws.StringValue(fake.input.ContentType))
	assert.Contains(t, url, "thumbnails/")
}

func TestUploadThumbnailRejectsNonImages(t *testing.T) {
	fake := &fakeUploader{}
	u := &Uploader{api: fake, bucket: "thumbs"}

	_, err := u.UploadThumbnail(context.Background(), strings.NewReader("x"), "clip.mp4")
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidInput, appErr.Code)
	assert.Nil(t, fake.input, "nothing is uploaded")
}

func TestUploadThumbnailFailure(t *testing.T) {
	u := &Uploader{api: &fakeUploader{err: errors.New("denied")}, bucket: "thumbs"}
	_, err := u.UploadThumbnail(context.Background(), strings.NewReader("x"), "a.jpg")
	assert.Error(t, err)
}
