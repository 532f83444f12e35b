package cards

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectStorage 是图片生命周期依赖的对象存储能力子集。
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PublicObjectURL(objectKey string) string
	DeleteObject(ctx context.Context, objectKey string) error
}

// ImageUpload 描述一个待上传的名片头像文件。
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// uploadImage 校验并上传头像，返回公开访问地址。
// 对象名由毫秒时间戳生成，内容统一按 PNG 存储。
func (s *Service) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return "", ErrInvalidFileType
	}

	objectKey := fmt.Sprintf("profile_%d.png", time.Now().UnixMilli())
	if _, err := s.storage.UploadFile(ctx, objectKey, img.Reader, img.Size, "image/png"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.storage.PublicObjectURL(objectKey), nil
}

// replaceImage 先上传新图，成功后再删除旧图。
// 顺序不可颠倒：上传失败时名片必须仍指向旧图。
// 旧图删除失败只记录日志，行更新照常携带新地址（旧对象可能泄漏）。
func (s *Service) replaceImage(ctx context.Context, oldURL string, img *ImageUpload) (string, error) {
	newURL, err := s.uploadImage(ctx, img)
	if err != nil {
		return "", err
	}

	if oldKey := objectKeyFromURL(oldURL); oldKey != "" {
		if err := s.storage.DeleteObject(ctx, oldKey); err != nil {
			s.logger.Warn("delete replaced profile image",
				slog.String("object_key", oldKey),
				slog.String("error", err.Error()),
			)
		}
	}

	return newURL, nil
}

// removeImage 尽力删除头像对象，失败只记录日志。
func (s *Service) removeImage(ctx context.Context, imageURL string) {
	objectKey := objectKeyFromURL(imageURL)
	if objectKey == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, objectKey); err != nil {
		s.logger.Warn("delete profile image",
			slog.String("object_key", objectKey),
			slog.String("error", err.Error()),
		)
	}
}

// objectKeyFromURL 取公开地址的最后一段路径作为对象名。
func objectKeyFromURL(imageURL string) string {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return ""
	}
	parts := strings.Split(imageURL, "/")
	return parts[len(parts)-1]
}
