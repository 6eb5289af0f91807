package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type MediaService interface {
	Upload(ctx context.Context, userEmail string, file *multipart.FileHeader) (*models.MediaAsset, error)
	List(ctx context.Context, userEmail string) ([]*models.MediaAsset, error)
}

type mediaService struct {
	config cfg.Config
	assets repository.MediaAssetRepository
}

func NewMediaService(config cfg.Config, assets repository.MediaAssetRepository) MediaService {
	return &mediaService{config: config, assets: assets}
}

func (s *mediaService) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.config.R2.AccessKey, s.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.config.R2.AccountID))
	}), nil
}

// Upload sniffs the file type, stores the bytes in R2 and records the
// asset. The returned FileURL is absolute and publicly fetchable, which is
// what the platform publishers require.
func (s *mediaService) Upload(ctx context.Context, userEmail string, file *multipart.FileHeader) (*models.MediaAsset, error) {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	client, err := s.r2Client(ctx)
	if err != nil {
		return nil, err
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(fileType.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	asset := models.MediaAsset{
		UserEmail: userEmail,
		FileName:  key,
		FileType:  fileType.MIME.Value,
		FileSize:  file.Size,
		FileURL:   fmt.Sprintf("%s/%s", s.config.R2.PublicURL, key),
	}

	assetID, err := s.assets.Create(ctx, &asset)
	if err != nil {
		return nil, err
	}
	asset.ID = assetID

	return &asset, nil
}

func (s *mediaService) List(ctx context.Context, userEmail string) ([]*models.MediaAsset, error) {
	return s.assets.ListByUser(ctx, userEmail)
}
