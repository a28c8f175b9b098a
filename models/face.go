package models

import (
	"image"

	"facerec/faces"
	"facerec/utils"
)

// Face is the index entry of a stored face image. The image itself lives in storage
// under the same FileName; this row only caches what the detector found in it.
type Face struct {
	FileName   string `gorm:"primaryKey;type:varchar(300)"`
	UserID     string `gorm:"type:varchar(200);index"`
	CreatedAt  int64
	UpdatedAt  int64
	HasFace    bool   `gorm:"not null;default:false"`
	Descriptor []byte `gorm:"type:blob"`
	// Face rectangle in source image pixels, even when detection ran on a downscaled copy
	RectX1     uint16
	RectY1     uint16
	RectX2     uint16
	RectY2     uint16
}

// NewFace builds an index entry from detection results, using the first face found
func NewFace(fileName, userID string, found []faces.Face) Face {
	result := Face{
		FileName: fileName,
		UserID:   userID,
	}
	if len(found) > 0 {
		result.HasFace = true
		result.SetEncoding(&found[0].Encoding)
		result.SetRectangle(found[0].Rectangle)
	}
	return result
}

func (f *Face) SetEncoding(e *faces.Encoding) {
	f.Descriptor = utils.Float32ArrayToByteArray(e[:])
}

func (f *Face) GetEncoding() (faces.Encoding, error) {
	return faces.EncodingFrom(utils.ByteArrayToFloat32Array(f.Descriptor))
}

func (f *Face) SetRectangle(r image.Rectangle) {
	f.RectX1 = uint16(r.Min.X)
	f.RectY1 = uint16(r.Min.Y)
	f.RectX2 = uint16(r.Max.X)
	f.RectY2 = uint16(r.Max.Y)
}

func (f *Face) GetRectangle() image.Rectangle {
	return image.Rect(int(f.RectX1), int(f.RectY1), int(f.RectX2), int(f.RectY2))
}
