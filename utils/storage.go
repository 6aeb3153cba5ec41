package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

func NewGCSClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	if credentialsFile == "" {
		return storage.NewClient(ctx)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsFile)))
}

// UploadAvatarToGCS stores a profile picture under avatars/<userID>/ and
// returns the public URL.
func UploadAvatarToGCS(
	ctx context.Context,
	client *storage.Client,
	bucketName string,
	userID string,
	fileHeader *multipart.FileHeader,
) (string, error) {

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".bin"
	}
	objectName := fmt.Sprintf("avatars/%s/%d-%s%s", userID, time.Now().UTC().Unix(), uuid.New().String(), ext)

	writer := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		writer.ContentType = ct
	}
	writer.CacheControl = "no-cache"

	if _, err := io.Copy(writer, file); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("upload copy: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("upload close: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName), nil
}

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

// NewImageValidator accepts common image formats. Extensions, MIME types and
// the size cap can be overridden through the environment.
func NewImageValidator() *FileValidator {
	exts := "jpg,jpeg,png,webp"
	if v := os.Getenv("ALLOWED_FILE_EXTENSIONS"); v != "" {
		exts = v
	}
	allowedExt := make(map[string]bool)
	for _, ext := range strings.Split(exts, ",") {
		if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" {
			allowedExt["."+strings.TrimPrefix(ext, ".")] = true
		}
	}

	mimes := "image/jpeg,image/png,image/webp"
	if v := os.Getenv("ALLOWED_FILE_MIME_TYPES"); v != "" {
		mimes = v
	}
	allowedMime := make(map[string]bool)
	for _, m := range strings.Split(mimes, ",") {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			allowedMime[m] = true
		}
	}

	sizeMB := 5
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}

	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(sizeMB) << 20,
	}
}

func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return "", fmt.Errorf("invalid file extension")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	if _, err = file.Read(buffer); err != nil {
		return "", fmt.Errorf("failed to read file header")
	}
	if _, err = file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to reset file reader")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer))
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid file type")
	}

	return detectedMime, nil
}
