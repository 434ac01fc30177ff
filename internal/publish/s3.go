package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/abriciof/rfcnpj-parquet/internal/dataset"
	"github.com/abriciof/rfcnpj-parquet/internal/pipeline"
)

type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Region string
	// Endpoint targets S3-compatible stores (MinIO, R2); path-style
	// addressing is used when set.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds a client from the default AWS credential chain, or from
// static keys when both are given.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if o.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" && o.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
			so.UsePathStyle = true
		}
		so.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}), nil
}

// S3 uploads the parquet file and, when present, its manifest under
// Prefix.
type S3 struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

func NewS3(client PutObjectAPI, bucket, prefix string) *S3 {
	return &S3{Client: client, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}
}

func (p *S3) Name() string { return "s3" }

// Key is the object key for a local file.
func (p *S3) Key(localPath string) string {
	return path.Join(p.Prefix, filepath.Base(localPath))
}

func (p *S3) Publish(ctx context.Context, ds *dataset.Dataset, parquetPath string) error {
	meta := map[string]string{
		"dataset": string(ds.Type),
		"rows":    strconv.Itoa(ds.Len()),
	}
	if err := p.put(ctx, parquetPath, "application/vnd.apache.parquet", meta); err != nil {
		return err
	}
	mp := pipeline.ManifestPath(parquetPath)
	if _, err := os.Stat(mp); err == nil {
		if err := p.put(ctx, mp, "application/json", meta); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (p *S3) put(ctx context.Context, localPath, contentType string, meta map[string]string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}

	key := p.Key(localPath)
	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
		ContentType:   aws.String(contentType),
		Metadata:      meta,
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", p.Bucket, key, err)
	}
	slog.Info("object uploaded", "bucket", p.Bucket, "key", key, "bytes", st.Size())
	return nil
}
