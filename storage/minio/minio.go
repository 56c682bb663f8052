// Package minio reads collection objects from MinIO (or any S3 compatible storage) with the minio client.
package minio

import (
	"context"
	"path"

	"github.com/autom8ter/flatdb/errors"
	"github.com/autom8ter/flatdb/storage"
	"github.com/autom8ter/flatdb/storage/registry"
	"github.com/autom8ter/flatdb/util"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultExt is the default collection object extension
const DefaultExt = ".db"

func init() {
	registry.Register("minio", func(params map[string]any) (storage.Reader, error) {
		var cfg Config
		if err := util.Decode(params, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.Validation, "invalid minio params")
		}
		if err := util.ValidateStruct(&cfg); err != nil {
			return nil, err
		}
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.Validation, "failed to create minio client")
		}
		return New(client, cfg.Bucket, cfg.Prefix, cfg.Ext), nil
	})
}

// Config configures a minio reader
type Config struct {
	Endpoint        string `json:"endpoint" validate:"required"`
	Bucket          string `json:"bucket" validate:"required"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UseSSL          bool   `json:"use_ssl"`
	Prefix          string `json:"prefix"`
	Ext             string `json:"ext"`
}

// Reader reads collection objects from a minio bucket
type Reader struct {
	client *minio.Client
	bucket string
	prefix string
	ext    string
}

// New returns a reader of the collection objects in bucket
func New(client *minio.Client, bucket, prefix, ext string) *Reader {
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
	obj, err := r.client.GetObject(ctx, r.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, 0, "failed to get %s/%s", r.bucket, key)
	}
	defer obj.Close()
	// GetObject is lazy - missing objects only surface on the first request
	if _, err := obj.Stat(); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return nil, errors.Wrap(err, errors.NotFound, "collection object %s/%s does not exist", r.bucket, key)
		}
		return nil, errors.Wrap(err, 0, "failed to stat %s/%s", r.bucket, key)
	}
	return storage.DecodeObject(obj, key)
}
