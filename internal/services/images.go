package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	appconfig "groupbid-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLExpiry = 5 * time.Minute

// ImageService issues pre-signed S3 upload URLs for auction photos. The
// client PUTs the image directly to S3 and then attaches the public URL to
// the auction.
type ImageService struct {
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewImageService creates a new image service
func NewImageService(awsCfg appconfig.AWSConfig) (*ImageService, error) {
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(awsCfg.Region),
	}
	if awsCfg.AccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKey, awsCfg.SecretKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if awsCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(awsCfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &ImageService{
		s3Client: s3Client,
		bucket:   awsCfg.S3Bucket,
		region:   awsCfg.Region,
	}, nil
}

// UploadResponse carries a pre-signed PUT URL and the public URL the image
// will have once uploaded.
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// GetUploadURL generates a pre-signed URL for uploading an auction image.
// Images are keyed as {user_id}/{uuid}{ext} so one user's uploads never
// collide with another's.
func (s *ImageService) GetUploadURL(ctx context.Context, userID, filename, contentType string) (*UploadResponse, error) {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s/%s%s", userID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	imageURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)

	return &UploadResponse{
		UploadURL: request.URL,
		ImageURL:  imageURL,
		ExpiresIn: int(uploadURLExpiry.Seconds()),
	}, nil
}
