package storage

import (
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type Bucket struct {
	Name          string
	Path          string // Prefix in the S3 bucket
	Region        string
	Endpoint      string // Empty for AWS, set for S3 compatible services
	AuthDetails   string // "key:secret", empty to use the default AWS credential chain
	SSEEncryption string
}

func (b *Bucket) GetRemotePath(p string) string {
	return strings.TrimPrefix(path.Join(b.Path, p), "/")
}

func (b *Bucket) CreateSVC() (*s3.S3, error) {
	cfg := aws.Config{
		Region: aws.String(b.Region),
	}
	if b.Endpoint != "" {
		cfg.Endpoint = aws.String(b.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if key, secret, ok := strings.Cut(b.AuthDetails, ":"); ok && key != "" {
		cfg.Credentials = credentials.NewStaticCredentials(key, secret, "")
	}
	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}
