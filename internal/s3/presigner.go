package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portal-service/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLExpiry = 15 * time.Minute

type FilePresigner struct {
	S3PresignClient *s3.PresignClient
	BucketName      string
	endpoint        string
}

func NewFilePresigner(ctx context.Context, cfg config.S3Config) (*FilePresigner, error) {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			SigningRegion:     region,
			HostnameImmutable: true,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &FilePresigner{
		S3PresignClient: s3.NewPresignClient(s3Client),
		BucketName:      cfg.BucketName,
		endpoint:        endpoint,
	}, nil
}

// FotoObjectKey names the object a usuario's photo is uploaded to.
func FotoObjectKey(usuarioID int64) string {
	return fmt.Sprintf("usuario-fotos/%d/%s.jpg", usuarioID, uuid.New().String())
}

func (p *FilePresigner) GeneratePresignedUploadURL(ctx context.Context, objectKey string) (string, error) {
	request, err := p.S3PresignClient.PresignPutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket: aws.String(p.BucketName),
			Key:    aws.String(objectKey),
		},
		func(opts *s3.PresignOptions) {
			opts.Expires = uploadURLExpiry
		},
	)
	if err != nil {
		return "", err
	}

	return request.URL, nil
}

func (p *FilePresigner) PublicURL(objectKey string) string {
	return p.endpoint + "/" + p.BucketName + "/" + objectKey
}
