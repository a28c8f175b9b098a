package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Storage keeps the files in a bucket. Local copies live in tmpDir only
// while a file is being written or processed.
type S3Storage struct {
	Storage
	Bucket   Bucket
	tmpDir   string
	s3Client s3iface.S3API
}

func NewS3Storage(bucket *Bucket, tmpDir string) (*S3Storage, error) {
	if bucket == nil || bucket.Name == "" {
		return nil, fmt.Errorf("S3 storage requires a bucket name")
	}
	svc, err := bucket.CreateSVC()
	if err != nil {
		return nil, err
	}
	return newS3Storage(bucket, tmpDir, svc), nil
}

func newS3Storage(bucket *Bucket, tmpDir string, client s3iface.S3API) *S3Storage {
	result := &S3Storage{
		Bucket:   *bucket,
		tmpDir:   tmpDir,
		s3Client: client,
	}
	result.specifics = result
	return result
}

// GetFullPath returns local temp path in case of S3
func (s *S3Storage) GetFullPath(p string) string {
	return filepath.Join(s.tmpDir, strings.ReplaceAll(p, "/", "_"))
}

func (s *S3Storage) EnsureDirExists(dir string) error {
	return os.MkdirAll(dir, 0777)
}

// EnsureLocalFile downloads a S3 object locally
func (s *S3Storage) EnsureLocalFile(p string) error {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = s.Storage.Save(p, resp.Body)
	return err
}

func (s *S3Storage) ReleaseLocalFile(p string) {
	_ = os.Remove(s.GetFullPath(p))
}

// UpdateFile uploads the local copy
func (s *S3Storage) UpdateFile(p, mimeType string) error {
	data, err := os.Open(s.GetFullPath(p))
	if err != nil {
		return err
	}
	defer data.Close()

	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	input := s3manager.UploadInput{
		Bucket:      &s.Bucket.Name,
		Key:         aws.String(s.Bucket.GetRemotePath(p)),
		ContentType: &mimeType,
		Body:        data,
	}
	if s.Bucket.SSEEncryption != "" {
		input.ServerSideEncryption = &s.Bucket.SSEEncryption
	}
	_, err = uploader.Upload(&input)
	return err
}

func (s *S3Storage) DeleteRemoteFile(p string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &s.Bucket.Name,
		Key:    aws.String(s.Bucket.GetRemotePath(p)),
	})
	return err
}

// List returns the object names directly under dir, sorted by name
func (s *S3Storage) List(dir string) ([]string, error) {
	prefix := s.Bucket.GetRemotePath(dir) + "/"
	names := []string{}
	err := s.s3Client.ListObjectsV2Pages(&s3.ListObjectsV2Input{
		Bucket:    &s.Bucket.Name,
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), prefix)
			if name != "" {
				names = append(names, path.Base(name))
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return sortedNames(names), nil
}
