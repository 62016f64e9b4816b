package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"alpr-service/internal/domain/analytics"
	"alpr-service/internal/domain/camera"
	"alpr-service/internal/service"
)

type Handler struct {
	cameraService    *service.CameraService
	analyticsService *service.AnalyticsService
	capturer         service.FrameCapturer
	health           func() error
	log              zerolog.Logger
}

func NewHandler(
	cameraService *service.CameraService,
	analyticsService *service.AnalyticsService,
	capturer service.FrameCapturer,
	health func() error,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		cameraService:    cameraService,
		analyticsService: analyticsService,
		capturer:         capturer,
		health:           health,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.healthz)

	r.GET("/config/all", h.getAllConfigs)
	r.POST("/config", h.createConfig)
	r.PUT("/config/:camera_id", h.updateStreamURL)
	r.DELETE("/config/:camera_id", h.deleteConfig)

	r.POST("/gate/:camera_id", h.upsertGateList)
	r.PUT("/gate/:camera_id/:gate_id", h.replaceGate)
	r.DELETE("/gate/:camera_id/:gate_id", h.deleteGate)

	r.POST("/wrong_parking/:camera_id", h.upsertWrongParking)
	r.DELETE("/wrong_parking/:camera_id/:id", h.deleteWrongParking)

	r.GET("/get_frame", h.getFrame)

	r.POST("/store_data", h.storeData)
	r.GET("/vehicle_counts", h.vehicleCounts)
	r.GET("/vehicle_counts_today", h.vehicleCountsToday)
	r.GET("/records_today", h.recordsToday)
	r.GET("/retrieve_data", h.retrieveData)
	r.POST("/insert_alert", h.insertAlert)
	r.GET("/retrieve_alert", h.retrieveAlerts)
}

func (h *Handler) healthz(c *gin.Context) {
	if err := h.health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse("database unreachable"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getAllConfigs(c *gin.Context) {
	configs, err := h.cameraService.ListConfigs(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *Handler) createConfig(c *gin.Context) {
	var cfg camera.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	id, err := h.cameraService.CreateConfig(c.Request.Context(), cfg)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Config created successfully",
		"inserted_id": id.String(),
	})
}

func (h *Handler) updateStreamURL(c *gin.Context) {
	cameraID := c.Param("camera_id")
	rtspURL := c.Query("rtsp_url")

	if err := h.cameraService.UpdateStreamURL(c.Request.Context(), cameraID, rtspURL); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RTSP URL updated successfully"})
}

func (h *Handler) deleteConfig(c *gin.Context) {
	cameraID := c.Param("camera_id")

	if _, err := h.cameraService.DeleteConfig(c.Request.Context(), cameraID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Config deleted successfully"})
}

func (h *Handler) upsertGateList(c *gin.Context) {
	cameraID := c.Param("camera_id")

	var gates []camera.GateROI
	if err := c.ShouldBindJSON(&gates); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	created, id, err := h.cameraService.UpsertGateList(c.Request.Context(), cameraID, gates)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if created {
		c.JSON(http.StatusOK, gin.H{
			"message":     "Gate configurations created successfully",
			"inserted_id": id.String(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gate configurations updated successfully"})
}

func (h *Handler) replaceGate(c *gin.Context) {
	cameraID := c.Param("camera_id")
	gateID := c.Param("gate_id")

	var gate camera.GateROI
	if err := c.ShouldBindJSON(&gate); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.cameraService.ReplaceGate(c.Request.Context(), cameraID, gateID, gate); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Gate configuration with ID %s updated successfully", gateID),
	})
}

func (h *Handler) deleteGate(c *gin.Context) {
	cameraID := c.Param("camera_id")
	gateID := c.Param("gate_id")

	if err := h.cameraService.DeleteGate(c.Request.Context(), cameraID, gateID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Gate configuration with ID %s deleted successfully", gateID),
	})
}

func (h *Handler) upsertWrongParking(c *gin.Context) {
	cameraID := c.Param("camera_id")

	var zones []camera.WrongParkingROI
	if err := c.ShouldBindJSON(&zones); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.cameraService.UpsertWrongParking(c.Request.Context(), cameraID, zones); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wrong parking configurations updated successfully"})
}

func (h *Handler) deleteWrongParking(c *gin.Context) {
	cameraID := c.Param("camera_id")
	zoneID := c.Param("id")

	if err := h.cameraService.DeleteWrongParking(c.Request.Context(), cameraID, zoneID); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Wrong parking configuration with ID %s deleted successfully", zoneID),
	})
}

func (h *Handler) getFrame(c *gin.Context) {
	rtspURL := c.Query("rtsp_url")

	frame, err := h.capturer.CaptureFrame(c.Request.Context(), rtspURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		c.String(http.StatusInternalServerError, "Error capturing frame")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", frame)
}

func (h *Handler) storeData(c *gin.Context) {
	var rec analytics.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	id, err := h.analyticsService.RecordDetection(c.Request.Context(), rec)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Data stored successfully",
		"id":      strconv.FormatInt(id, 10),
	})
}

func (h *Handler) vehicleCounts(c *gin.Context) {
	rows, err := h.analyticsService.CountAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) vehicleCountsToday(c *gin.Context) {
	rows, err := h.analyticsService.CountToday(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) recordsToday(c *gin.Context) {
	records, err := h.analyticsService.ListToday(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) retrieveData(c *gin.Context) {
	page, perPage, err := paginationParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	records, err := h.analyticsService.ListRecords(c.Request.Context(), page, perPage)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) insertAlert(c *gin.Context) {
	var alert analytics.Alert
	if err := c.ShouldBindJSON(&alert); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	id, err := h.analyticsService.RecordAlert(c.Request.Context(), alert)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Alert inserted successfully",
		"id":      strconv.FormatInt(id, 10),
	})
}

func (h *Handler) retrieveAlerts(c *gin.Context) {
	page, perPage, err := paginationParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	alerts, err := h.analyticsService.ListAlerts(c.Request.Context(), page, perPage)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

// paginationParams parses page/perPage, defaulting to the first page of ten
// records. Explicit non-positive values are rejected.
func paginationParams(c *gin.Context) (page, perPage int, err error) {
	page, err = positiveIntQuery(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	perPage, err = positiveIntQuery(c, "perPage", 10)
	if err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}

func positiveIntQuery(c *gin.Context, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return value, nil
}
