package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"alpr-service/internal/domain/camera"
	"alpr-service/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
)

// CameraStore is the persistence surface the camera service needs. The gorm
// repository satisfies it; tests use an in-memory fake.
type CameraStore interface {
	List(ctx context.Context) ([]repository.Camera, error)
	GetByCameraID(ctx context.Context, cameraID string) (*repository.Camera, error)
	Create(ctx context.Context, cam *repository.Camera) error
	UpdateRTSPURL(ctx context.Context, cameraID, rtspURL string) (bool, error)
	Delete(ctx context.Context, cameraID string) (*repository.Camera, error)
	SaveGateList(ctx context.Context, cameraID string, gates []camera.GateROI) error
	SaveWrongParkingList(ctx context.Context, cameraID string, items []camera.WrongParkingROI) error
}

type CameraService struct {
	store CameraStore
	log   zerolog.Logger
}

func NewCameraService(store CameraStore, log zerolog.Logger) *CameraService {
	return &CameraService{
		store: store,
		log:   log,
	}
}

// ConfigInfo is a stored camera configuration with its document identifier.
type ConfigInfo struct {
	ID uuid.UUID `json:"id"`
	camera.Config
}

func configInfo(cam *repository.Camera) ConfigInfo {
	return ConfigInfo{
		ID: cam.ID,
		Config: camera.Config{
			CameraID:     cam.CameraID,
			RTSPURL:      cam.RTSPURL,
			Algorithm:    cam.Algorithm,
			Gate:         cam.Gate,
			WrongParking: cam.WrongParking,
		},
	}
}

func (s *CameraService) ListConfigs(ctx context.Context) ([]ConfigInfo, error) {
	cameras, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}

	result := make([]ConfigInfo, 0, len(cameras))
	for i := range cameras {
		result = append(result, configInfo(&cameras[i]))
	}
	return result, nil
}

// CreateConfig inserts a new camera document and returns its generated
// identifier. A document with the same camera_id must not already exist.
func (s *CameraService) CreateConfig(ctx context.Context, cfg camera.Config) (uuid.UUID, error) {
	if cfg.CameraID == "" {
		return uuid.Nil, fmt.Errorf("%w: camera_id is required", ErrInvalidInput)
	}
	if err := validateWrongParking(cfg.WrongParking); err != nil {
		return uuid.Nil, err
	}

	_, err := s.store.GetByCameraID(ctx, cfg.CameraID)
	if err == nil {
		return uuid.Nil, fmt.Errorf("%w: camera configuration with camera_id %s", ErrConflict, cfg.CameraID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, fmt.Errorf("failed to check existing config: %w", err)
	}

	cam := &repository.Camera{
		ID:           uuid.New(),
		CameraID:     cfg.CameraID,
		RTSPURL:      cfg.RTSPURL,
		Algorithm:    cfg.Algorithm,
		Gate:         cfg.Gate,
		WrongParking: cfg.WrongParking,
	}
	if err := s.store.Create(ctx, cam); err != nil {
		s.log.Error().Err(err).Str("camera_id", cfg.CameraID).Msg("failed to create camera config")
		return uuid.Nil, fmt.Errorf("failed to create config: %w", err)
	}

	s.log.Info().
		Str("camera_id", cfg.CameraID).
		Str("config_id", cam.ID.String()).
		Int("gates", len(cfg.Gate)).
		Int("wrong_parking_zones", len(cfg.WrongParking)).
		Msg("created camera config")

	return cam.ID, nil
}

// UpdateStreamURL replaces only the rtsp_url field. Setting an existing
// document to its current value is a success, not a not-found.
func (s *CameraService) UpdateStreamURL(ctx context.Context, cameraID, rtspURL string) error {
	if rtspURL == "" {
		return fmt.Errorf("%w: rtsp_url is required", ErrInvalidInput)
	}

	found, err := s.store.UpdateRTSPURL(ctx, cameraID, rtspURL)
	if err != nil {
		s.log.Error().Err(err).Str("camera_id", cameraID).Msg("failed to update rtsp url")
		return fmt.Errorf("failed to update rtsp url: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: config for camera_id %s", ErrNotFound, cameraID)
	}

	s.log.Info().Str("camera_id", cameraID).Msg("updated rtsp url")
	return nil
}

func (s *CameraService) DeleteConfig(ctx context.Context, cameraID string) (*ConfigInfo, error) {
	cam, err := s.store.Delete(ctx, cameraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: config for camera_id %s", ErrNotFound, cameraID)
		}
		s.log.Error().Err(err).Str("camera_id", cameraID).Msg("failed to delete camera config")
		return nil, fmt.Errorf("failed to delete config: %w", err)
	}

	s.log.Info().Str("camera_id", cameraID).Msg("deleted camera config")
	info := configInfo(cam)
	return &info, nil
}

// UpsertGateList appends the given gates to the camera's gate list. When the
// camera document does not exist, a minimal document holding only camera_id
// and the gate list is created; created reports which branch ran and id is
// the new document's identifier on the create branch.
func (s *CameraService) UpsertGateList(ctx context.Context, cameraID string, gates []camera.GateROI) (created bool, id uuid.UUID, err error) {
	cam, err := s.store.GetByCameraID(ctx, cameraID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		newCam := &repository.Camera{
			ID:       uuid.New(),
			CameraID: cameraID,
			Gate:     gates,
		}
		if err := s.store.Create(ctx, newCam); err != nil {
			s.log.Error().Err(err).Str("camera_id", cameraID).Msg("failed to create gate config")
			return false, uuid.Nil, fmt.Errorf("failed to create gate config: %w", err)
		}
		s.log.Info().Str("camera_id", cameraID).Int("gates", len(gates)).Msg("created camera config from gate list")
		return true, newCam.ID, nil
	}
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("failed to load config: %w", err)
	}

	merged := append(append([]camera.GateROI{}, cam.Gate...), gates...)
	if err := s.store.SaveGateList(ctx, cameraID, merged); err != nil {
		s.log.Error().Err(err).Str("camera_id", cameraID).Msg("failed to append gate list")
		return false, uuid.Nil, fmt.Errorf("failed to update gate list: %w", err)
	}

	s.log.Info().Str("camera_id", cameraID).Int("appended", len(gates)).Int("total", len(merged)).Msg("appended gates")
	return false, uuid.Nil, nil
}

// ReplaceGate swaps the element whose id matches gateID in place, keeping the
// rest of the list and its order untouched. With duplicate ids in the list
// (a precondition violation) the first match is replaced.
func (s *CameraService) ReplaceGate(ctx context.Context, cameraID, gateID string, gate camera.GateROI) error {
	cam, err := s.store.GetByCameraID(ctx, cameraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: gate %s for camera_id %s", ErrNotFound, gateID, cameraID)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	gates := append([]camera.GateROI{}, cam.Gate...)
	idx := -1
	for i := range gates {
		if gates[i].ID == gateID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: gate %s for camera_id %s", ErrNotFound, gateID, cameraID)
	}
	gates[idx] = gate

	if err := s.store.SaveGateList(ctx, cameraID, gates); err != nil {
		s.log.Error().Err(err).Str("camera_id", cameraID).Str("gate_id", gateID).Msg("failed to replace gate")
		return fmt.Errorf("failed to replace gate: %w", err)
	}

	s.log.Info().Str("camera_id", cameraID).Str("gate_id", gateID).Msg("replaced gate")
	return nil
}

// DeleteGate removes every element with a matching id.
func (s *CameraService) DeleteGate(ctx context.Context, cameraID, gateID string) error {
	cam, err := s.store.GetByCameraID(ctx, cameraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: gate %s for camera_id %s", ErrNotFound, gateID, cameraID)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	remaining := make([]camera.GateROI, 0, len(cam.Gate))
	for _, g := range cam.Gate {
		if g.ID != gateID {
			remaining = append(remaining, g)
		}
	}
	if len(remaining) == len(cam.Gate) {
		return fmt.Errorf("%w: gate %s for camera_id %s", ErrNotFound, gateID, cameraID)
	}

	if err := s.store.SaveGateList(ctx, cameraID, remaining); err != nil {
		s.log.Error().Err(err).Str("camera_id", cameraID).Str("gate_id", gateID).Msg("failed to delete gate")
		return fmt.Errorf("failed to delete gate: %w", err)
	}

	s.log.Info().Str("camera_id", cameraID).Str("gate_id", gateID).Int("removed", len(cam.Gate)-len(remaining)).Msg("deleted gate")
	return nil
}

// UpsertWrongParking processes each zone independently: an element with the
// same id is replaced in place, otherwise the zone is appended. Each item is
// its own store round-trip; a mid-batch failure leaves earlier items applied.
func (s *CameraService) UpsertWrongParking(ctx context.Context, cameraID string, items []camera.WrongParkingROI) error {
	if err := validateWrongParking(items); err != nil {
		return err
	}

	for _, item := range items {
		cam, err := s.store.GetByCameraID(ctx, cameraID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: config for camera_id %s", ErrNotFound, cameraID)
			}
			return fmt.Errorf("failed to load config: %w", err)
		}

		zones := append([]camera.WrongParkingROI{}, cam.WrongParking...)
		replaced := false
		for i := range zones {
			if zones[i].ID == item.ID {
				zones[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			zones = append(zones, item)
		}

		if err := s.store.SaveWrongParkingList(ctx, cameraID, zones); err != nil {
			s.log.Error().Err(err).Str("camera_id", cameraID).Str("zone_id", item.ID).Msg("failed to upsert wrong parking zone")
			return fmt.Errorf("failed to upsert wrong parking zone %s: %w", item.ID, err)
		}
	}

	s.log.Info().Str("camera_id", cameraID).Int("zones", len(items)).Msg("upserted wrong parking zones")
	return nil
}

// DeleteWrongParking removes every zone with a matching id.
func (s *CameraService) DeleteWrongParking(ctx context.Context, cameraID, zoneID string) error {
	cam, err := s.store.GetByCameraID(ctx, cameraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: wrong parking zone %s for camera_id %s", ErrNotFound, zoneID, cameraID)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	remaining := make([]camera.WrongParkingROI, 0, len(cam.WrongParking))
	for _, z := range cam.WrongParking {
		if z.ID != zoneID {
			remaining = append(remaining, z)
		}
	}
	if len(remaining) == len(cam.WrongParking) {
		return fmt.Errorf("%w: wrong parking zone %s for camera_id %s", ErrNotFound, zoneID, cameraID)
	}

	if err := s.store.SaveWrongParkingList(ctx, cameraID, remaining); err != nil {
		s.log.Error().Err(err).Str("camera_id", cameraID).Str("zone_id", zoneID).Msg("failed to delete wrong parking zone")
		return fmt.Errorf("failed to delete wrong parking zone: %w", err)
	}

	s.log.Info().Str("camera_id", cameraID).Str("zone_id", zoneID).Msg("deleted wrong parking zone")
	return nil
}

func validateWrongParking(items []camera.WrongParkingROI) error {
	for _, item := range items {
		if item.ROI.Width < 0 || item.ROI.Height < 0 {
			return fmt.Errorf("%w: wrong parking zone %s has negative dimensions", ErrInvalidInput, item.ID)
		}
	}
	return nil
}
