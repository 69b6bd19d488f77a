// Package artifactstore реализует объектное хранилище бинарных артефактов
// моделей поверх S3-совместимого API. Артефакт адресуется ключом,
// производным от имени и версии модели: "{name}-{version}.zip".
package artifactstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/moodme/moodme-backend/internal/config"
)

// Store инкапсулирует S3-клиент и имя бакета с артефактами.
type Store struct {
	client *s3.Client
	bucket string
}

// New создаёт S3-клиент по настройкам из конфига. При заданных статических
// ключах используются они, иначе — стандартная цепочка провайдеров AWS.
// Endpoint переопределяется для MinIO-совместимых хранилищ.
func New(ctx context.Context, cfg config.S3Storage) (*Store, error) {
	const op = "artifactstore.New"

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Upload загружает артефакт под переданным ключом.
func (s *Store) Upload(ctx context.Context, key string, artifact []byte) error {
	const op = "artifactstore.Upload"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(artifact),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Download возвращает содержимое артефакта по ключу.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	const op = "artifactstore.Download"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// Remove удаляет артефакт по ключу. Удаление несуществующего
// объекта в S3 не является ошибкой.
func (s *Store) Remove(ctx context.Context, key string) error {
	const op = "artifactstore.Remove"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
