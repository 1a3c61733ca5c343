package services

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizePhotoProducesSquareJPEG(t *testing.T) {
	out, err := NormalizePhoto(pngBytes(t, 300, 120))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, PhotoSize, img.Bounds().Dx())
	assert.Equal(t, PhotoSize, img.Bounds().Dy())
}

func TestNormalizePhotoRejectsOtherContent(t *testing.T) {
	_, err := NormalizePhoto([]byte("%PDF-1.4 not an image"))
	assert.Equal(t, "photo", violationsOf(t, err)[0].Field)
}

// hugePNGHeader returns a valid PNG of w x h whose pixel data is never read.
func hugePNGHeader(t *testing.T, w, h uint32) []byte {
	t.Helper()
	raw := pngBytes(t, 1, 1)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc at 29
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestNormalizePhotoRejectsOversizedCanvas(t *testing.T) {
	raw := hugePNGHeader(t, 12000, 12000)
	config, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 12000, config.Width)

	_, err = NormalizePhoto(raw)
	violations := violationsOf(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "photo", violations[0].Field)
	assert.Contains(t, violations[0].Message, "at most 8000x8000")

	_, err = NormalizePhoto(hugePNGHeader(t, 100, MaxPhotoSide+1))
	assert.Equal(t, "photo", violationsOf(t, err)[0].Field)
}

func TestMediaSaveOpenDelete(t *testing.T) {
	svc := &MediaService{BasePath: t.TempDir(), Logger: zap.NewNop()}

	asset, err := svc.SavePhoto(BucketRecords, bytes.NewReader(pngBytes(t, 64, 64)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", asset.ContentType)
	assert.Len(t, asset.Sha256, 64)

	file, err := svc.Open(BucketRecords, asset.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.EqualValues(t, asset.SizeBytes, len(data))

	_, err = svc.Open(BucketVisitors, asset.ID)
	assert.Equal(t, 404, statusOf(t, err))
	_, err = svc.Open(BucketRecords, "../../etc/passwd")
	assert.Equal(t, 404, statusOf(t, err))

	require.NoError(t, svc.Delete(BucketRecords, asset.ID))
	assert.Equal(t, 404, statusOf(t, svc.Delete(BucketRecords, asset.ID)))
}

func TestMediaRejectsBadUploads(t *testing.T) {
	svc := &MediaService{BasePath: t.TempDir(), Logger: zap.NewNop()}

	_, err := svc.SavePhoto("documents", strings.NewReader("x"))
	assert.Equal(t, 400, statusOf(t, err))

	_, err = svc.SavePhoto(BucketVisitors, strings.NewReader(""))
	assert.Equal(t, 400, statusOf(t, err))

	_, err = svc.Open(BucketVisitors, uuid.NewString())
	assert.Equal(t, 404, statusOf(t, err))
}
