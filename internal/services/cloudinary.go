package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 5 << 20

var (
	ErrUnsupportedImage = errors.New("avatar must be a JPEG, PNG, GIF or WebP image")
	ErrImageTooLarge    = errors.New("avatar must be at most 5 MB")
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, data []byte, folder, publicID string) (string, error)
}

type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

func (s *CloudinaryService) UploadImage(ctx context.Context, data []byte, folder, publicID string) (string, error) {
	overwrite := true
	uploadResult, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       folder,
		PublicID:     publicID,
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}

// AvatarService stores avatars with an ImageUploader and saves the URL on the profile.
type AvatarService struct {
	images ImageUploader
	users  *UserService
	folder string
}

func NewAvatarService(images ImageUploader, users *UserService, folder string) *AvatarService {
	if folder == "" {
		folder = "avatars"
	}
	return &AvatarService{images: images, users: users, folder: folder}
}

// Upload reads the image in fileHeader, uploads it under caller's uid and
// points the profile's avatar at it.
func (s *AvatarService) Upload(ctx context.Context, caller string, fileHeader *multipart.FileHeader) (string, error) {
	if caller == "" {
		return "", ErrUnauthorized
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxAvatarBytes {
		return "", ErrImageTooLarge
	}
	switch ct := http.DetectContentType(data); {
	case strings.HasPrefix(ct, "image/jpeg"), strings.HasPrefix(ct, "image/png"),
		strings.HasPrefix(ct, "image/gif"), strings.HasPrefix(ct, "image/webp"):
	default:
		return "", ErrUnsupportedImage
	}

	url, err := s.images.UploadImage(ctx, data, s.folder, caller)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if _, err := s.users.UpdateProfile(ctx, caller, models.ProfileUpdate{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}
