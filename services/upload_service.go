package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"blog-api/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var ErrUploadsDisabled = errors.New("image uploads are not configured")

// ImageUploader stores an image in external object storage.
type ImageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder string) (*models.UploadResult, error)
}

type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewImageUploader returns a Cloudinary backed uploader, or one that refuses
// every upload when no Cloudinary URL is configured.
func NewImageUploader(cloudinaryURL, folder string) (ImageUploader, error) {
	if cloudinaryURL == "" {
		return disabledUploader{}, nil
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}

	return &cloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *cloudinaryUploader) UploadImage(ctx context.Context, file io.Reader, folder string) (*models.UploadResult, error) {
	params := uploader.UploadParams{
		Folder:         path.Join(u.folder, folder),
		PublicID:       uuid.NewString(),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	}

	result, err := u.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}

	return &models.UploadResult{URL: result.SecureURL, PublicID: result.PublicID}, nil
}

type disabledUploader struct{}

func (disabledUploader) UploadImage(context.Context, io.Reader, string) (*models.UploadResult, error) {
	return nil, ErrUploadsDisabled
}

// OpenImage checks a multipart upload against the size and type limits and
// opens it. The caller closes the returned file.
func OpenImage(header *multipart.FileHeader) (multipart.File, error) {
	if header == nil {
		return nil, models.NewBadRequest("No file uploaded")
	}
	if header.Size > MaxImageSize {
		return nil, models.NewBadRequest("File too large, maximum size is 5MB")
	}

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !allowedImageTypes[contentType] {
		return nil, models.NewBadRequest("Only image files are allowed")
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(sniff[:n]), "image/") {
		file.Close()
		return nil, models.NewBadRequest("Only image files are allowed")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	return file, nil
}
