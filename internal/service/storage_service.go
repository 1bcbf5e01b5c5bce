package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/internal/util"
	"pairjudge_backend/pkg/logger"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 截图等上传文件的存储后端
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// localProvider 存到本地磁盘，经 /uploads 静态路由访问
type localProvider struct {
	basePath string
}

func (p *localProvider) Upload(_ context.Context, filename string, reader io.Reader, _ int64, _ string) (string, error) {
	dst := filepath.Join(p.basePath, filename)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *localProvider) Delete(_ context.Context, filename string) error {
	return os.Remove(filepath.Join(p.basePath, filename))
}

func (p *localProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

type minioProvider struct {
	client *minio.Client
	bucket string
}

func newMinioProvider(cfg *config.StorageConfig) (*minioProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &minioProvider{client: client, bucket: cfg.MinioBucket}, nil
}

func (p *minioProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := p.client.PutObject(ctx, p.bucket, filename, reader, size, opts); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *minioProvider) Delete(ctx context.Context, filename string) error {
	return p.client.RemoveObject(ctx, p.bucket, filename, minio.RemoveObjectOptions{})
}

func (p *minioProvider) GetURL(filename string) string {
	return "/" + p.bucket + "/" + filename
}

type ossProvider struct {
	bucket   *oss.Bucket
	endpoint string
}

func newOSSProvider(cfg *config.StorageConfig) (*ossProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &ossProvider{bucket: bucket, endpoint: cfg.OSSEndpoint}, nil
}

func (p *ossProvider) Upload(_ context.Context, filename string, reader io.Reader, _ int64, contentType string) (string, error) {
	if err := p.bucket.PutObject(filename, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *ossProvider) Delete(_ context.Context, filename string) error {
	return p.bucket.DeleteObject(filename)
}

func (p *ossProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.bucket.BucketName, p.endpoint, filename)
}

// StorageService 按配置选择存储后端，后端初始化失败时退回本地存储
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	provider, err := buildProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Warn("Storage backend unavailable, falling back to local",
			zap.String("type", cfg.Storage.Type), zap.Error(err))
		provider = &localProvider{basePath: cfg.Storage.LocalPath}
	}
	return &StorageService{Provider: provider}
}

func buildProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case util.StorageMinio:
		return newMinioProvider(cfg)
	case util.StorageOSS:
		return newOSSProvider(cfg)
	default:
		return &localProvider{basePath: cfg.LocalPath}, nil
	}
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, filename string) error {
	return s.Provider.Delete(ctx, filename)
}

func (s *StorageService) GetURL(filename string) string {
	return s.Provider.GetURL(filename)
}

// UploadScreenshot 校验并保存题目链接截图，返回可访问 URL。
// 扩展名白名单 + 内容嗅探双重校验，防止伪装成图片的文件。
func (s *StorageService) UploadScreenshot(ctx context.Context, questionID uint, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedScreenshotExt(ext) {
		return "", fmt.Errorf("unsupported screenshot extension: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	mimeType, err := util.ValidateMimeType(bytes.NewReader(head[:n]), []string{util.MimeImage})
	if err != nil {
		return "", err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("screenshots/%d/%s%s", questionID, model.GenerateUUID(), ext)
	return s.Upload(ctx, filename, src, file.Size, mimeType)
}

func allowedScreenshotExt(ext string) bool {
	for _, e := range util.AllowedScreenshotExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
