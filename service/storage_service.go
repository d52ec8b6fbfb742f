package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/learnpet/learnpet/config"
	"github.com/learnpet/learnpet/models"
	"github.com/learnpet/learnpet/repository"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// 对外可见的对象路径前缀，实际对象键在 uploads/ 命名空间下
const (
	objectPathPrefix = "/objects/"
	uploadKeyPrefix  = "uploads/"
	uploadURLExpiry  = 15 * time.Minute
)

// Permission 对象访问权限
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
)

// ObjectInfo 下载时返回的对象元信息
type ObjectInfo struct {
	Size        int64
	ContentType string
	Public      bool
}

// StorageService 对象存储 + ACL
// 权限模型是两级格：public 仅放开读；写永远只有 owner。
// 策略缺失一律拒绝（fail closed），即使对象本身存在。
type StorageService interface {
	GetUploadURL(ctx context.Context) (uploadURL string, objectPath string, err error)
	ConfirmUpload(ctx context.Context, objectPath, owner, visibility string) error
	UploadBytes(ctx context.Context, data []byte, contentType, extension string) (objectPath string, err error)
	SetPolicy(objectPath, owner, visibility string) error
	GetPolicy(objectPath string) (*models.ObjectACLPolicy, error)
	CanAccess(actorID, objectPath string, perm Permission) (bool, error)
	Download(ctx context.Context, objectPath string) (io.ReadCloser, *ObjectInfo, error)
	Delete(ctx context.Context, objectPath string) error
}

type StorageServiceImpl struct {
	minioClient *minio.Client
	bucket      string
	aclRepo     repository.ACLRepository
	logger      *logrus.Logger
}

func NewStorageService(cfg config.MinIOConfig, aclRepo repository.ACLRepository, logger *logrus.Logger) (StorageService, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// 确保存储桶存在
	ctx := context.Background()
	exists, err := minioClient.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := minioClient.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &StorageServiceImpl{
		minioClient: minioClient,
		bucket:      cfg.BucketName,
		aclRepo:     aclRepo,
		logger:      logger,
	}, nil
}

// objectKeyFromPath 校验 /objects/ 前缀并取出对象键
func objectKeyFromPath(objectPath string) (string, error) {
	if !strings.HasPrefix(objectPath, objectPathPrefix) {
		return "", fmt.Errorf("%w: invalid object path %q", ErrValidation, objectPath)
	}
	return strings.TrimPrefix(objectPath, objectPathPrefix), nil
}

// GetUploadURL 签发预签名 PUT 直传地址，对象路径在确认上传时绑定 ACL
func (s *StorageServiceImpl) GetUploadURL(ctx context.Context) (string, string, error) {
	objectKey := uploadKeyPrefix + uuid.NewString()
	u, err := s.minioClient.PresignedPutObject(ctx, s.bucket, objectKey, uploadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("%w: presign upload url: %v", ErrUpstream, err)
	}
	return u.String(), objectPathPrefix + objectKey, nil
}

// ConfirmUpload 上传完成后校验对象确实存在，再落 ACL 策略。
// 上传成功但策略未写入的窗口内对象不可访问（策略缺失即拒绝）。
func (s *StorageServiceImpl) ConfirmUpload(ctx context.Context, objectPath, owner, visibility string) error {
	objectKey, err := objectKeyFromPath(objectPath)
	if err != nil {
		return err
	}
	if visibility != models.VisibilityPublic && visibility != models.VisibilityPrivate {
		return fmt.Errorf("%w: visibility must be public or private", ErrValidation)
	}
	if _, err := s.minioClient.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrObjectNotFound
		}
		return fmt.Errorf("%w: stat object: %v", ErrUpstream, err)
	}
	return s.SetPolicy(objectPath, owner, visibility)
}

// UploadBytes 服务端直传（宠物图片等），返回对象路径
func (s *StorageServiceImpl) UploadBytes(ctx context.Context, data []byte, contentType, extension string) (string, error) {
	objectKey := uploadKeyPrefix + uuid.NewString() + extension
	_, err := s.minioClient.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload object: %v", ErrUpstream, err)
	}
	return objectPathPrefix + objectKey, nil
}

func (s *StorageServiceImpl) SetPolicy(objectPath, owner, visibility string) error {
	if err := s.aclRepo.Upsert(objectPath, owner, visibility); err != nil {
		return translateDBError(err)
	}
	return nil
}

func (s *StorageServiceImpl) GetPolicy(objectPath string) (*models.ObjectACLPolicy, error) {
	policy, err := s.aclRepo.GetByPath(objectPath)
	if err != nil {
		if errors.Is(translateDBError(err), ErrNotFound) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return policy, nil
}

// CanAccess 两级授权格：
//   - 无策略 → 拒绝（区别于对象不存在，但同样不放行）
//   - public + READ → 无需身份
//   - 其余情况必须携带身份且为 owner；WRITE 永远不授予非 owner
func (s *StorageServiceImpl) CanAccess(actorID, objectPath string, perm Permission) (bool, error) {
	policy, err := s.GetPolicy(objectPath)
	if err != nil {
		return false, err
	}

	if policy.Visibility == models.VisibilityPublic && perm == PermissionRead {
		return true, nil
	}
	if actorID == "" {
		return false, nil
	}
	return policy.Owner == actorID, nil
}

// Download 返回对象内容流，调用方负责 Close。
// 先 Stat 确认对象存在，区分"对象缺失"与"策略缺失"。
func (s *StorageServiceImpl) Download(ctx context.Context, objectPath string) (io.ReadCloser, *ObjectInfo, error) {
	objectKey, err := objectKeyFromPath(objectPath)
	if err != nil {
		return nil, nil, err
	}

	stat, err := s.minioClient.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, fmt.Errorf("%w: stat object: %v", ErrUpstream, err)
	}

	obj, err := s.minioClient.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: get object: %v", ErrUpstream, err)
	}

	info := &ObjectInfo{
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}
	if policy, err := s.GetPolicy(objectPath); err == nil {
		info.Public = policy.Visibility == models.VisibilityPublic
	}
	if info.ContentType == "" {
		info.ContentType = "application/octet-stream"
	}
	return obj, info, nil
}

// Delete 先删对象再删策略
func (s *StorageServiceImpl) Delete(ctx context.Context, objectPath string) error {
	objectKey, err := objectKeyFromPath(objectPath)
	if err != nil {
		return err
	}
	if err := s.minioClient.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: remove object: %v", ErrUpstream, err)
	}
	if err := s.aclRepo.DeleteByPath(objectPath); err != nil {
		s.logger.Warnf("删除对象 %s 的 ACL 策略失败: %v", objectPath, err)
	}
	return nil
}
