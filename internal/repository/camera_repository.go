package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alpr-service/internal/domain/camera"
)

type CameraRepository struct {
	db *gorm.DB
}

func NewCameraRepository(db *gorm.DB) *CameraRepository {
	return &CameraRepository{db: db}
}

// Camera is the stored configuration document. Gate and WrongParking live in
// JSONB columns so a camera's full configuration is one row lookup; element
// mutations are read-modify-write on the whole list, one UPDATE per call.
type Camera struct {
	ID           uuid.UUID                                   `gorm:"type:uuid;primaryKey"`
	CameraID     string                                      `gorm:"not null;uniqueIndex"`
	RTSPURL      string                                      `gorm:"column:rtsp_url"`
	Algorithm    string
	Gate         datatypes.JSONSlice[camera.GateROI]         `gorm:"type:jsonb"`
	WrongParking datatypes.JSONSlice[camera.WrongParkingROI] `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r *CameraRepository) List(ctx context.Context) ([]Camera, error) {
	var cameras []Camera
	err := r.db.WithContext(ctx).Order("created_at").Find(&cameras).Error
	return cameras, err
}

func (r *CameraRepository) GetByCameraID(ctx context.Context, cameraID string) (*Camera, error) {
	var cam Camera
	err := r.db.WithContext(ctx).Where("camera_id = ?", cameraID).First(&cam).Error
	if err != nil {
		return nil, err
	}
	return &cam, nil
}

func (r *CameraRepository) Create(ctx context.Context, cam *Camera) error {
	return r.db.WithContext(ctx).Create(cam).Error
}

// UpdateRTSPURL replaces only the rtsp_url field. The boolean reports whether
// a row matched; an update that leaves the value unchanged still matches and
// is reported as found.
func (r *CameraRepository) UpdateRTSPURL(ctx context.Context, cameraID, rtspURL string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Camera{}).
		Where("camera_id = ?", cameraID).
		Updates(map[string]interface{}{"rtsp_url": rtspURL, "updated_at": time.Now()})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the document and returns it, or gorm.ErrRecordNotFound.
func (r *CameraRepository) Delete(ctx context.Context, cameraID string) (*Camera, error) {
	cam, err := r.GetByCameraID(ctx, cameraID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(&Camera{}, "camera_id = ?", cameraID).Error; err != nil {
		return nil, err
	}
	return cam, nil
}

func (r *CameraRepository) SaveGateList(ctx context.Context, cameraID string, gates []camera.GateROI) error {
	return r.db.WithContext(ctx).
		Model(&Camera{}).
		Where("camera_id = ?", cameraID).
		Updates(map[string]interface{}{
			"gate":       datatypes.NewJSONSlice(gates),
			"updated_at": time.Now(),
		}).Error
}

func (r *CameraRepository) SaveWrongParkingList(ctx context.Context, cameraID string, items []camera.WrongParkingROI) error {
	return r.db.WithContext(ctx).
		Model(&Camera{}).
		Where("camera_id = ?", cameraID).
		Updates(map[string]interface{}{
			"wrong_parking": datatypes.NewJSONSlice(items),
			"updated_at":    time.Now(),
		}).Error
}
