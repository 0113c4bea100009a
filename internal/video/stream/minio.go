package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/DevSsChar/SnapCast/internal/video/models"
)

const presignExpiry = 15 * time.Minute

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// CDNBaseURL is the public root the bucket is served from.
	CDNBaseURL string
}

// MinioStore implements ObjectStore on a MinIO/S3 bucket. Upload targets are
// presigned PUT URLs, so the access key on the target stays empty: the URL
// itself carries the authorization.
type MinioStore struct {
	client *minio.Client
	bucket string
	cdn    string
	clock  func() time.Time
	idGen  func() uuid.UUID
}

func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		cdn:    cfg.CDNBaseURL,
		clock:  time.Now,
		idGen:  uuid.New,
	}, nil
}

func videoObject(videoID string) string { return "videos/" + videoID }

func (s *MinioStore) AllocateVideo(ctx context.Context) (*VideoTarget, error) {
	id := s.idGen().String()
	u, err := s.client.PresignedPutObject(ctx, s.bucket, videoObject(id), presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign video upload: %w: %v", models.ErrUpstream, err)
	}
	return &VideoTarget{VideoID: id, UploadURL: u.String()}, nil
}

func (s *MinioStore) VideoExists(ctx context.Context, videoID string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, videoObject(videoID), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat video: %w: %v", models.ErrUpstream, err)
	}
	return true, nil
}

func (s *MinioStore) AllocateThumbnail(ctx context.Context, videoID string) (*ThumbnailTarget, error) {
	object := fmt.Sprintf("thumbnails/%d-%s-thumbnail", s.clock().UnixMilli(), videoID)
	u, err := s.client.PresignedPutObject(ctx, s.bucket, object, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign thumbnail upload: %w: %v", models.ErrUpstream, err)
	}
	return &ThumbnailTarget{
		UploadURL: u.String(),
		CDNURL:    s.cdn + "/" + object,
	}, nil
}

// SetVideoMeta rewrites the object's user metadata in place via a same-key
// server-side copy.
func (s *MinioStore) SetVideoMeta(ctx context.Context, videoID, title, description string) error {
	src := minio.CopySrcOptions{Bucket: s.bucket, Object: videoObject(videoID)}
	dst := minio.CopyDestOptions{
		Bucket:          s.bucket,
		Object:          videoObject(videoID),
		ReplaceMetadata: true,
		UserMetadata: map[string]string{
			"title":       title,
			"description": description,
		},
	}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("set video metadata: %w: %v", models.ErrUpstream, err)
	}
	return nil
}

// DeleteVideo removes the binary asset. Thumbnails are left for the
// out-of-band janitor sweep.
func (s *MinioStore) DeleteVideo(ctx context.Context, videoID string) error {
	err := s.client.RemoveObject(ctx, s.bucket, videoObject(videoID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove video: %w: %v", models.ErrUpstream, err)
	}
	return nil
}

func (s *MinioStore) PlaybackURL(videoID string) string {
	return s.cdn + "/" + videoObject(videoID)
}
