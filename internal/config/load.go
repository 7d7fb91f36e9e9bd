package config

import (
	"context"
	stderrors "errors"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/vango-dev/helm/internal/errors"
)

// ObjectGetter reads objects from S3. *s3.Client implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	s3 ObjectGetter
}

// WithObjectGetter sets the client used for s3:// locations.
func WithObjectGetter(g ObjectGetter) LoadOption {
	return func(o *loadOptions) {
		o.s3 = g
	}
}

// IsS3 reports whether location is an s3:// URL.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Load reads a manifest from location, which is a local file, a directory
// holding one of ManifestNames, or an s3://bucket/key URL.
func Load(ctx context.Context, location string, opts ...LoadOption) (*Config, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	if IsS3(location) {
		return loadS3(ctx, location, o.s3)
	}

	info, err := os.Stat(location)
	if err == nil && info.IsDir() {
		for _, name := range ManifestNames {
			p := filepath.Join(location, name)
			if _, err := os.Stat(p); err == nil {
				return LoadFile(p)
			}
		}
		return nil, errors.New("H021").
			WithDetail("No helm.json or helm.yaml found in " + location).
			WithSuggestion("Run 'helm init' to create one")
	}

	return LoadFile(location)
}

// ParseS3URL splits an s3://bucket/key URL.
func ParseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme != "s3" || u.Host == "" || strings.TrimPrefix(u.Path, "/") == "" {
		return "", "", errors.New("H023").
			WithDetail("Invalid S3 location " + location).
			WithSuggestion("Use the form s3://bucket/path/to/helm.yaml")
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func loadS3(ctx context.Context, location string, client ObjectGetter) (*Config, error) {
	bucket, key, err := ParseS3URL(location)
	if err != nil {
		return nil, err
	}
	format, err := formatOf(path.Base(key))
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("H023").
			WithDetail("No S3 client configured for " + location)
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nsb *types.NoSuchBucket
		if stderrors.As(err, &nsk) || stderrors.As(err, &nsb) {
			return nil, errors.New("H021").
				WithDetail("No manifest found at " + location).
				Wrap(err)
		}
		return nil, errors.New("H020").
			WithDetail("Failed to read " + location).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("H020").
			WithDetail("Failed to read " + location).
			Wrap(err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	cfg.location = location
	return cfg, nil
}
