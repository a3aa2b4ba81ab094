package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/adapters"
	"github.com/bhargav676/intern/internal/auth"
	"github.com/bhargav676/intern/internal/config"
	"github.com/bhargav676/intern/internal/websocket"
	"github.com/bhargav676/intern/usecase"
)

// Services is everything the HTTP layer delegates to
type Services struct {
	Sessions auth.Resolver
	Ingest   *usecase.IngestService
	Users    *usecase.UserService
	Readings *usecase.ReadingService
	Devices  *usecase.DeviceService
	Health   *usecase.HealthMonitor
	Alerts   *adapters.AlertLog
	Hub      *websocket.Hub
}

type handler struct {
	Services
	logger  *zap.Logger
	started time.Time
}

// NewServer creates the Echo instance with error handling, validation and the
// common middleware stack installed.
func NewServer(cfg config.ServerConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)
	e.Validator = newRequestValidator()

	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{headerTotalCount},
	}))
	return e
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, svc Services, logger *zap.Logger) {
	h := &handler{Services: svc, logger: logger, started: time.Now()}
	session := requireSession(svc.Sessions, false)

	e.GET("/health", h.health)

	// User APIs
	user := e.Group("/api/user")
	user.POST("/register", h.register)
	user.POST("/login", h.login)
	user.POST("/sensor", h.submitSensor)
	user.GET("/sensor/data", h.sensorData, session)
	user.GET("/profile", h.profile, session)
	user.POST("/add-user", h.addUser, session, requireAdmin)
	user.DELETE("/delete/:id", h.deleteUser, session, requireAdmin)
	user.GET("/users", h.listUsers, session, requireAdmin)

	// Admin dashboard APIs
	admin := e.Group("/api/admin", session, requireAdmin)
	admin.GET("/devices", h.listDevices)
	admin.GET("/devices/:id", h.getDevice)
	admin.GET("/user-sensor-data", h.userSensorData)
	admin.GET("/user-sensor-data/:userId", h.userSensorData)
	admin.POST("/sensor-data", h.submitDeviceSensor)
	admin.GET("/sensor-data/:deviceId", h.deviceSensorData)
	admin.GET("/notifications", h.notifications)
	admin.GET("/system-status", h.systemStatus)

	// Push channel
	e.GET("/ws", h.pushChannel, requireSession(svc.Sessions, true))
}

func (h *handler) health(c echo.Context) error {
	snap := h.Health.Snapshot()
	status := http.StatusOK
	if snap.Status == usecase.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]interface{}{
		"status":    snap.Status,
		"service":   "water-quality-server",
		"database":  snap.Database,
		"checkedAt": snap.CheckedAt,
	})
}

func (h *handler) pushChannel(c echo.Context) error {
	id := identity(c)
	h.logger.Info("WebSocket connection authenticated",
		zap.String("user_id", id.UserID),
		zap.String("role", string(id.Role)))

	return websocket.HandleWebSocket(h.Hub, c, websocket.Subscriber{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     string(id.Role),
	})
}
