// Package s3 reads collection objects from Amazon S3 (or any S3 compatible endpoint).
// A collection named "users" is read from "<prefix>/users<ext>" in the configured bucket.
package s3

import (
	"context"
	stderrors "errors"
	"path"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultExt is the default collection object extension
const DefaultExt = ".db"

func init() {
	registry.Register("s3", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid s3 params")
		}
		if err := util.ValidateStruct(&cfg); err != nil {
			return nil, err
		}
		var loadOpts []func(*config.LoadOptions) error
		if cfg.Region != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
		}
		awsCfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.Wrap(err, errors.Unavailable, "failed to load aws config")
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return New(client, cfg.Bucket, cfg.Prefix, cfg.Ext), nil
	})
}

// Config configures a s3 reader
type Config struct {
	Bucket   string `json:"bucket" validate:"required"`
	Prefix   string `json:"prefix"`
	Ext      string `json:"ext"`
	Region   string `json:"region"`
	Endpoint string `json:"endpoint"`
}

// GetObjectAPI is the subset of the s3 client used by the reader
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Reader reads collection objects from a bucket
type Reader struct {
	client GetObjectAPI
	bucket string
	prefix string
	ext    string
}

// New returns a reader of the collection objects in bucket
func New(client GetObjectAPI, bucket, prefix, ext string) *Reader {
	if ext == "" {
		ext = DefaultExt
	}
	return &Reader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		ext:    ext,
	}
}

// Key returns the object key of the collection
func (r *Reader) Key(collection string) string {
	return path.Join(r.prefix, collection+r.ext)
}

// Read returns the records of the active entries in the collection object
func (r *Reader) Read(ctx context.Context, collection string) ([][]byte, error) {
	if err := storage.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	key := r.Key(collection)
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return nil, errors.Wrap(err, errors.NotFound, "collection object s3://%s/%s does not exist", r.bucket, key)
		}
		return nil, errors.Wrap(err, 0, "failed to get s3://%s/%s", r.bucket, key)
	}
	defer out.Body.Close()
	return storage.DecodeObject(out.Body, key)
}
