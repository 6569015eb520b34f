package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API es el subconjunto del cliente S3 que usamos (permite un fake en tests).
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store implementa blob.Store sobre un bucket S3 compatible (AWS o MinIO).
type Store struct {
	client API
	bucket string
	base   string // prefijo de los paths devueltos
}

type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // opcional, ej: MinIO
	AccessKeyID     string // opcional (si no, cadena de credenciales por defecto)
	SecretAccessKey string
	PathStyle       bool
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, publicBase(cfg, region)), nil
}

func NewWithClient(client API, bucket, base string) *Store {
	return &Store{client: client, bucket: bucket, base: strings.TrimRight(base, "/")}
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key = strings.TrimLeft(key, "/")
	input := &s3.PutObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key), Body: r}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.base + "/" + key, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(key, "/")
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

// publicBase arma la URL base de los objetos: endpoint propio (MinIO) o
// virtual-hosted de AWS.
func publicBase(cfg Config, region string) string {
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
			return strings.TrimRight(u.String(), "/") + "/" + cfg.Bucket
		}
	}
	if cfg.PathStyle {
		return "https://s3." + region + ".amazonaws.com/" + cfg.Bucket
	}
	return "https://" + cfg.Bucket + ".s3." + region + ".amazonaws.com"
}
