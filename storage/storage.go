package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"
)

type StorageSpecificAPI interface {
	GetFullPath(path string) string
	EnsureDirExists(dir string) error
	EnsureLocalFile(path string) error
	ReleaseLocalFile(path string)
	DeleteRemoteFile(path string) error
	UpdateFile(path, mimeType string) error
	List(dir string) ([]string, error)
}

type StorageAPI interface {
	StorageSpecificAPI

	Save(path string, reader io.Reader) (int64, error)
	Delete(path string) error
}

// Storage implements the local-file part of StorageAPI. Paths are relative,
// the concrete storage (specifics) maps them to files on the local disk.
type Storage struct {
	specifics StorageSpecificAPI
}

const (
	StorageTypeDisk = "disk"
	StorageTypeS3   = "s3"
)

// Init creates the storage configured by storageType. The bucket is only used for S3.
func Init(storageType, mediaRoot, tmpDir string, bucket *Bucket) (StorageAPI, error) {
	var (
		s   StorageAPI
		err error
	)
	switch storageType {
	case "", StorageTypeDisk:
		s, err = NewDiskStorage(mediaRoot)
	case StorageTypeS3:
		s, err = NewS3Storage(bucket, tmpDir)
	default:
		err = fmt.Errorf("unknown storage type %q", storageType)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Storage initialised: %s", storageType)
	return s, nil
}

//
// NOTE: All the functions below work on a local file
//

func (s *Storage) Save(path string, reader io.Reader) (int64, error) {
	fileName := s.GetFullPath(path)
	if err := s.EnsureDirExists(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	return result, err
}

// Delete removes the local file and the remote copy, if any
func (s *Storage) Delete(path string) error {
	err := os.Remove(s.GetFullPath(path))
	if os.IsNotExist(err) {
		err = nil
	}
	if remoteErr := s.DeleteRemoteFile(path); err == nil {
		err = remoteErr
	}
	return err
}

//
// Proxy methods
//

func (s *Storage) GetFullPath(path string) string {
	return s.specifics.GetFullPath(path)
}
func (s *Storage) EnsureDirExists(dir string) error {
	return s.specifics.EnsureDirExists(dir)
}
func (s *Storage) EnsureLocalFile(path string) error {
	return s.specifics.EnsureLocalFile(path)
}
func (s *Storage) ReleaseLocalFile(path string) {
	s.specifics.ReleaseLocalFile(path)
}
func (s *Storage) DeleteRemoteFile(path string) error {
	return s.specifics.DeleteRemoteFile(path)
}
func (s *Storage) UpdateFile(path, mimeType string) error {
	return s.specifics.UpdateFile(path, mimeType)
}
func (s *Storage) List(dir string) ([]string, error) {
	return s.specifics.List(dir)
}

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}
