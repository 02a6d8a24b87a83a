package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxMediaBytes caps uploaded photo size.
const MaxMediaBytes = 15 * 1024 * 1024

var allowedMediaExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// MediaStorageService stores card photos on disk under a single media
// directory. Thumbnailing is left to the frontend.
type MediaStorageService struct {
	storageDir string
}

func NewMediaStorageService(storageDir string) *MediaStorageService {
	if storageDir == "" {
		storageDir = "./media"
	}
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		// Will fail again, loudly, on the first actual write.
		fmt.Printf("Warning: could not create media directory: %v\n", err)
	}
	return &MediaStorageService{storageDir: storageDir}
}

// SaveMedia validates and writes one uploaded photo. It returns the
// media id, the relative filename, and the content hash.
func (s *MediaStorageService) SaveMedia(data []byte, originalName string) (mediaUUID, filename, sum string, err error) {
	if len(data) == 0 {
		return "", "", "", fmt.Errorf("empty file")
	}
	if len(data) > MaxMediaBytes {
		return "", "", "", fmt.Errorf("file too large (> %d MB)", MaxMediaBytes/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	if _, ok := allowedMediaExts[ext]; !ok {
		return "", "", "", fmt.Errorf("unsupported file type %s (allowed: .jpg, .jpeg, .png, .webp)", ext)
	}

	mediaUUID = "m_" + uuid.New().String()
	filename = mediaUUID + ext
	if err := os.WriteFile(filepath.Join(s.storageDir, filename), data, 0644); err != nil {
		return "", "", "", fmt.Errorf("failed to save media: %w", err)
	}

	digest := sha256.Sum256(data)
	return mediaUUID, filename, hex.EncodeToString(digest[:]), nil
}

// GetStorageDir returns the storage directory path.
func (s *MediaStorageService) GetStorageDir() string {
	return s.storageDir
}
