package service

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Upload limits
const (
	MaxUploadSize     = 10 * 1024 * 1024 // 10MB
	DefaultUploadsDir = "./static/uploads"

	// thumbWidth is the width of the generated list thumbnail.
	thumbWidth = 480
)

// allowedExtensions lists the image types menu and post photos may use.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadService stores uploaded images under the uploads directory and
// generates a resized thumbnail next to each original.
type UploadService struct {
	uploadsDir string
}

// NewUploadService creates an upload service rooted at uploadsDir,
// creating the directory if needed.
func NewUploadService(uploadsDir string) (*UploadService, error) {
	if uploadsDir == "" {
		uploadsDir = DefaultUploadsDir
	}
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}
	return &UploadService{uploadsDir: uploadsDir}, nil
}

// UploadResult describes a stored image.
type UploadResult struct {
	// URL is the public path of the original, under /static/uploads/.
	URL string
	// ThumbURL is the public path of the resized thumbnail.
	ThumbURL string
	Filename string
}

// Save stores an uploaded image under a random filename and writes a
// thumbnail beside it. The original extension is kept, lowercased.
func (s *UploadService) Save(file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("file type %s is not allowed", ext)
	}

	name, err := randomHex(8)
	if err != nil {
		return nil, fmt.Errorf("generating filename: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	filename := name + ext
	path := filepath.Join(s.uploadsDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	result := &UploadResult{
		URL:      "/static/uploads/" + filename,
		Filename: filename,
	}

	// The thumbnail is an optimization; a decode failure keeps the
	// original usable.
	thumbName := name + "_thumb" + ext
	if err := s.writeThumbnail(data, filepath.Join(s.uploadsDir, thumbName)); err == nil {
		result.ThumbURL = "/static/uploads/" + thumbName
	} else {
		result.ThumbURL = result.URL
	}

	return result, nil
}

// writeThumbnail decodes the image and saves a width-bounded copy.
func (s *UploadService) writeThumbnail(data []byte, path string) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	if img.Bounds().Dx() > thumbWidth {
		img = imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	return nil
}

// Remove deletes a stored upload and its thumbnail, ignoring files that
// are already gone.
func (s *UploadService) Remove(filename string) error {
	base := filepath.Base(filename)
	if base == "." || base == "/" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.uploadsDir, base)); err != nil && !os.IsNotExist(err) {
		return err
	}
	ext := filepath.Ext(base)
	thumb := strings.TrimSuffix(base, ext) + "_thumb" + ext
	if err := os.Remove(filepath.Join(s.uploadsDir, thumb)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
