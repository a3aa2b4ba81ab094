package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/usecase"
)

const defaultNotificationCount = 20

func (h *handler) listDevices(c echo.Context) error {
	devices, err := h.Devices.List(c.Request().Context(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, devices)
}

func (h *handler) getDevice(c echo.Context) error {
	detail, err := h.Devices.Get(c.Request().Context(), identity(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

// deviceSensorData returns the newest readings of one device
func (h *handler) deviceSensorData(c echo.Context) error {
	items, err := h.Devices.Recent(c.Request().Context(), identity(c), c.Param("deviceId"), usecase.DeviceDetailReadings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// userSensorData lists readings with their owner's username and email, for
// one user when userId is given and across all owners otherwise.
func (h *handler) userSensorData(c echo.Context) error {
	q, err := historyQuery(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	var page *usecase.ReadingPage
	if userID := c.Param("userId"); userID != "" {
		page, err = h.Readings.History(ctx, identity(c), userID, q)
	} else {
		page, err = h.Readings.AllHistory(ctx, identity(c), q)
	}
	if err != nil {
		return err
	}
	return writePage(c, page)
}

// submitDeviceSensor stores a reading for a standalone monitor keyed by deviceId
func (h *handler) submitDeviceSensor(c echo.Context) error {
	var req SensorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	in := sensorInput(req)
	if in.DeviceID == "" {
		return apperr.Validation(apperr.CodeMissingParameter, "All fields are required; missing: deviceId")
	}

	res, err := h.Ingest.SubmitAs(c.Request().Context(), identity(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sensorResponse(res))
}

func (h *handler) notifications(c echo.Context) error {
	count := defaultNotificationCount
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return apperr.Validation(apperr.CodeValidationFailed, "limit must be a non-negative integer")
		}
		count = n
	}
	return c.JSON(http.StatusOK, h.Alerts.Recent(count))
}

func (h *handler) systemStatus(c echo.Context) error {
	snap := h.Health.Snapshot()
	return c.JSON(http.StatusOK, SystemStatusResponse{
		Status:           snap.Status,
		Database:         snap.Database,
		Components:       snap.Components,
		CheckedAt:        snap.CheckedAt,
		ConnectedClients: h.Hub.ClientCount(),
		Uptime:           time.Since(h.started).Round(time.Second).String(),
	})
}
