package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	sc "github.com/dmitrijs2005/gophtasks/internal/server/config"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) (*s3.DeleteObjectsOutput, error) {
		return c.DeleteObjects(ctx, in)
	}
)

// UploadTicket tells the client where to PUT an image and where it will be
// readable afterwards.
type UploadTicket struct {
	UploadURL string
	PublicURL string
	Path      string
}

// StorageService issues presigned uploads into the image bucket and removes
// objects. Keys must live under "<email>/" of the caller.
type StorageService struct {
	config *sc.Config
	logger logging.Logger
}

func NewStorageService(cfg *sc.Config, l logging.Logger) *StorageService {
	return &StorageService{config: cfg, logger: l.With("module", "storage_service")}
}

func (s *StorageService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// PublicObjectURL builds the public link for a stored key.
func (s *StorageService) PublicObjectURL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(s.config.PublicBaseURL(), "/") + "/" + strings.Join(segments, "/")
}

// PrepareUpload presigns a PUT for path.
func (s *StorageService) PrepareUpload(ctx context.Context, caller auth.Identity, path string, contentType string) (*UploadTicket, error) {
	if !ownsPath(caller, path) {
		return nil, common.ErrorForbidden
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(path),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(newS3PresignClient(client), ctx, in, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "upload prepared", "path", path)
	return &UploadTicket{UploadURL: req.URL, PublicURL: s.PublicObjectURL(path), Path: path}, nil
}

// Remove deletes the given keys. Keys that do not exist are not an error.
func (s *StorageService) Remove(ctx context.Context, caller auth.Identity, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(paths))
	for _, p := range paths {
		if !ownsPath(caller, p) {
			return common.ErrorForbidden
		}
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(p)})
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return err
	}

	out, err := deleteObjects(client, ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.config.S3Bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return err
	}

	if len(out.Errors) > 0 {
		e := out.Errors[0]
		return fmt.Errorf("failed to remove %d object(s): %s: %s", len(out.Errors), aws.ToString(e.Key), aws.ToString(e.Message))
	}

	s.logger.Info(ctx, "objects removed", "paths", paths)
	return nil
}
