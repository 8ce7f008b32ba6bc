package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/devilmonastery/jobfinder/internal/pkg/urlutil"
)

const DefaultBaseURL = "https://api.cloudinary.com"

// MaxImageBytes caps uploaded avatar size
const MaxImageBytes = 10 << 20

var (
	// ErrNotConfigured is returned when no cloud name or preset is set
	ErrNotConfigured = errors.New("image upload is not configured")

	// ErrImageTooLarge is returned for images over MaxImageBytes
	ErrImageTooLarge = errors.New("image too large")
)

// Error is returned when the CDN rejects an upload
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("image upload failed with status %d: %s", e.Status, e.Message)
}

// Config configures the image CDN
type Config struct {
	BaseURL      string
	CloudName    string
	UploadPreset string
	Folder       string
	Timeout      time.Duration
}

// Uploader sends images to the CDN with an unsigned upload preset
type Uploader struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

// NewUploader creates an uploader
func NewUploader(cfg Config) *Uploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Uploader{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  slog.Default().With(slog.String("component", "upload")),
	}
}

// Result is the part of the CDN response we keep
type Result struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Upload sends an image and returns where it is served from
func (u *Uploader) Upload(ctx context.Context, filename string, image io.Reader) (*Result, error) {
	if u.cfg.CloudName == "" || u.cfg.UploadPreset == "" {
		return nil, ErrNotConfigured
	}

	data, err := io.ReadAll(io.LimitReader(image, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrImageTooLarge
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.WriteField("upload_preset", u.cfg.UploadPreset); err != nil {
		return nil, err
	}
	if u.cfg.Folder != "" {
		if err := mw.WriteField("folder", u.cfg.Folder); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	endpoint := urlutil.ImageUploadURL(u.cfg.BaseURL, u.cfg.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := string(raw)
		if json.Unmarshal(raw, &payload) == nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("upload response missing secure_url")
	}

	u.log.Info("image uploaded",
		slog.String("public_id", result.PublicID),
		slog.Int64("bytes", result.Bytes),
		slog.Duration("duration", time.Since(start)))
	return &result, nil
}
