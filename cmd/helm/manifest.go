package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/vango-dev/helm/internal/config"
)

// loadManifest loads and validates the manifest at location. An empty
// location searches the working directory and its parents.
func loadManifest(ctx context.Context, location string) (*config.Config, error) {
	if location == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		location, err = config.Find(wd)
		if err != nil {
			return nil, err
		}
	}

	var opts []config.LoadOption
	if config.IsS3(location) {
		opts = append(opts, config.WithObjectGetter(newS3Client()))
	}

	cfg, err := config.Load(ctx, location, opts...)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newS3Client builds an S3 client from the standard AWS environment
// variables. Without credentials requests are anonymous, which works for
// public buckets.
func newS3Client() *s3.Client {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		static := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}
		creds = aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return static, nil
		}))
	}

	opts := s3.Options{
		Region:      region,
		Credentials: creds,
	}
	// S3 compatible stores such as MinIO
	if endpoint := os.Getenv("AWS_ENDPOINT_URL_S3"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
