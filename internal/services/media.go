package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"khosta-backend-go/internal/models"
)

const (
	BucketRecords  = "records"
	BucketVisitors = "visitors"

	PhotoSize      = 512
	MaxUploadBytes = 8 << 20
	MaxPhotoSide   = 8000
	photoType      = "image/jpeg"
)

func ValidBucket(bucket string) bool {
	return bucket == BucketRecords || bucket == BucketVisitors
}

// MediaService stores normalised photos at <BasePath>/<bucket>/<id>.jpg.
type MediaService struct {
	BasePath string
	Logger   *zap.Logger
}

func EnsureStoragePath(base string, bucket string) (string, error) {
	path := filepath.Join(base, bucket)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

func (s *MediaService) assetPath(bucket, id string) string {
	return filepath.Join(s.BasePath, bucket, id+".jpg")
}

// SavePhoto accepts PNG, JPEG or WebP, centre-crops it square, scales it
// to PhotoSize and stores it as JPEG.
func (s *MediaService) SavePhoto(bucket string, body io.Reader) (models.MediaAsset, error) {
	if !ValidBucket(bucket) {
		return models.MediaAsset{}, ErrBadRequest("Unknown media bucket")
	}
	raw, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return models.MediaAsset{}, WrapError(err, "read upload")
	}
	if len(raw) == 0 {
		return models.MediaAsset{}, ErrBadRequest("File is empty")
	}
	if len(raw) > MaxUploadBytes {
		return models.MediaAsset{}, ErrBadRequest("File is too large")
	}
	encoded, err := NormalizePhoto(raw)
	if err != nil {
		return models.MediaAsset{}, err
	}

	bucketPath, err := EnsureStoragePath(s.BasePath, bucket)
	if err != nil {
		return models.MediaAsset{}, WrapError(err, "prepare media storage")
	}
	asset := models.MediaAsset{
		ID:          uuid.NewString(),
		Bucket:      bucket,
		ContentType: photoType,
		SizeBytes:   int64(len(encoded)),
		CreatedAt:   time.Now().UTC(),
	}
	sum := sha256.Sum256(encoded)
	asset.Sha256 = hex.EncodeToString(sum[:])
	if err := os.WriteFile(filepath.Join(bucketPath, asset.ID+".jpg"), encoded, 0644); err != nil {
		return models.MediaAsset{}, WrapError(err, "write photo")
	}
	s.Logger.Info("photo stored", zap.String("asset_id", asset.ID), zap.String("bucket", bucket), zap.Int64("bytes", asset.SizeBytes))
	return asset, nil
}

// Open returns the stored photo. The id must be a UUID so it cannot
// escape the bucket directory.
func (s *MediaService) Open(bucket, id string) (*os.File, error) {
	if !ValidBucket(bucket) {
		return nil, ErrNotFound("Photo not found")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound("Photo not found")
	}
	file, err := os.Open(s.assetPath(bucket, id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound("Photo not found")
	}
	if err != nil {
		return nil, WrapError(err, "open photo")
	}
	return file, nil
}

func (s *MediaService) Delete(bucket, id string) error {
	if _, err := uuid.Parse(id); err != nil || !ValidBucket(bucket) {
		return ErrNotFound("Photo not found")
	}
	err := os.Remove(s.assetPath(bucket, id))
	if os.IsNotExist(err) {
		return ErrNotFound("Photo not found")
	}
	return WrapError(err, "delete photo")
}

func NormalizePhoto(raw []byte) ([]byte, error) {
	switch http.DetectContentType(raw) {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return nil, invalidField("photo", "Photo must be png, jpeg, or webp")
	}

	// Headers are checked first; a small compressed upload can claim a huge canvas.
	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		header, err = webp.DecodeConfig(bytes.NewReader(raw))
		if err != nil {
			return nil, invalidField("photo", "Unable to decode photo")
		}
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, invalidField("photo", "Invalid image dimensions")
	}
	if header.Width > MaxPhotoSide || header.Height > MaxPhotoSide {
		return nil, invalidField("photo", fmt.Sprintf("Photo must be at most %dx%d pixels", MaxPhotoSide, MaxPhotoSide))
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		decoded, decodeErr := webp.Decode(bytes.NewReader(raw))
		if decodeErr != nil {
			return nil, invalidField("photo", "Unable to decode photo")
		}
		img = decoded
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, invalidField("photo", "Invalid image dimensions")
	}
	side := width
	if height < side {
		side = height
	}
	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	srcPoint := image.Point{X: bounds.Min.X + (width-side)/2, Y: bounds.Min.Y + (height-side)/2}
	stddraw.Draw(cropped, cropRect, img, srcPoint, stddraw.Src)

	resized := image.NewRGBA(image.Rect(0, 0, PhotoSize, PhotoSize))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), cropped, cropped.Bounds(), xdraw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, WrapError(err, "encode photo")
	}
	return out.Bytes(), nil
}
