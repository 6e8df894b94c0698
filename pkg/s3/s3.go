package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"

	"resham-cricketer/pkg/apperr"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Uploader stores clip thumbnails. Videos themselves are never uploaded.
type Uploader struct {
	api    s3manageriface.UploaderAPI
	bucket string
}

func NewUploader(region, bucket string) (*Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &Uploader{api: s3manager.NewUploader(sess), bucket: bucket}, nil
}

// UploadThumbnail stores an image under thumbnails/ and returns its URL.
func (u *Uploader) UploadThumbnail(ctx context.Context, body io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return "", apperr.InvalidInput("Thumbnail must be a JPG, PNG, WEBP or GIF image")
	}

	key := fmt.Sprintf("thumbnails/%s%s", uuid.New().String(), ext)
	result, err := u.api.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(mime.TypeByExtension(ext)),
	})
	if err != nil {
		return "", apperr.Internal(err, "upload thumbnail")
	}
	return result.Location, nil
}
