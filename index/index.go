// Package index keeps the encodings of stored face images, so a recognition
// request does not have to run the detector over every stored file.
// Rows live in the database, an in-memory copy answers lookups.
package index

import (
	"fmt"

	"facerec/models"

	cmap "github.com/orcaman/concurrent-map/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Index struct {
	db    *gorm.DB
	cache cmap.ConcurrentMap[string, models.Face]
}

// New migrates the schema and loads all entries into memory
func New(db *gorm.DB) (*Index, error) {
	if err := models.Init(db); err != nil {
		return nil, fmt.Errorf("face index migration: %w", err)
	}
	idx := &Index{
		db:    db,
		cache: cmap.New[models.Face](),
	}
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (idx *Index) Load() error {
	var all []models.Face
	if err := idx.db.Find(&all).Error; err != nil {
		return fmt.Errorf("loading face index: %w", err)
	}
	idx.cache.Clear()
	for _, f := range all {
		idx.cache.Set(f.FileName, f)
	}
	log.Printf("Face index loaded: %d entries", len(all))
	return nil
}

func (idx *Index) Get(fileName string) (models.Face, bool) {
	return idx.cache.Get(fileName)
}

// Put inserts or replaces the entry for face.FileName
func (idx *Index) Put(face models.Face) error {
	err := idx.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&face).Error
	if err != nil {
		return fmt.Errorf("saving index entry %s: %w", face.FileName, err)
	}
	idx.cache.Set(face.FileName, face)
	return nil
}

func (idx *Index) Remove(fileName string) error {
	idx.cache.Remove(fileName)
	if err := idx.db.Delete(&models.Face{}, "file_name = ?", fileName).Error; err != nil {
		return fmt.Errorf("removing index entry %s: %w", fileName, err)
	}
	return nil
}

func (idx *Index) Count() int {
	return idx.cache.Count()
}
