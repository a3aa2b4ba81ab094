package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
	"github.com/bhargav676/intern/usecase"
)

const headerTotalCount = "X-Total-Count"

func (h *handler) register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.Users.Register(c.Request().Context(), usecase.AccountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse("User registered successfully", sess))
}

func (h *handler) login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := h.Users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse("Login successful", sess))
}

func sessionResponse(msg string, s *usecase.Session) SessionResponse {
	return SessionResponse{
		Message:   msg,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      newUserView(s.User),
	}
}

// submitSensor accepts readings from sensors that identify with an access id
func (h *handler) submitSensor(c echo.Context) error {
	var req SensorRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	creds := auth.Credentials{AccessID: strings.TrimSpace(req.AccessID)}
	if creds.AccessID == "" {
		return apperr.Validation(apperr.CodeMissingParameter, "All fields are required; missing: accessId")
	}
	in := sensorInput(req)
	in.DeviceID = ""

	res, err := h.Ingest.Submit(c.Request().Context(), creds, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sensorResponse(res))
}

func sensorInput(req SensorRequest) usecase.SensorInput {
	return usecase.SensorInput{
		PH:        req.PH,
		Turbidity: req.Turbidity,
		TDS:       req.TDS,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		DeviceID:  strings.TrimSpace(req.DeviceID),
	}
}

func sensorResponse(res *usecase.SubmitResult) SensorResponse {
	return SensorResponse{
		Message: "Sensor data saved successfully",
		ID:      res.Reading.ID.Hex(),
		Status:  res.Assessment,
		Alert:   res.Alert,
	}
}

// sensorData serves the caller's readings, or another owner's for admins.
// With latest=true it returns the newest reading per device instead of a page.
func (h *handler) sensorData(c echo.Context) error {
	ctx := c.Request().Context()
	caller := identity(c)
	ownerID := c.QueryParam("userId")

	if latest, _ := strconv.ParseBool(c.QueryParam("latest")); latest {
		items, err := h.Readings.Latest(ctx, caller, repositories.LatestFilter{
			OwnerID:  ownerID,
			DeviceID: c.QueryParam("deviceId"),
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, items)
	}

	q, err := historyQuery(c)
	if err != nil {
		return err
	}
	page, err := h.Readings.History(ctx, caller, ownerID, q)
	if err != nil {
		return err
	}
	return writePage(c, page)
}

func (h *handler) profile(c echo.Context) error {
	user, err := h.Users.Profile(c.Request().Context(), identity(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserView(user))
}

func (h *handler) addUser(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.Users.AddUser(c.Request().Context(), identity(c), usecase.AccountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserResponse{Message: "User added successfully", User: newUserView(user)})
}

func (h *handler) deleteUser(c echo.Context) error {
	if err := h.Users.Delete(c.Request().Context(), identity(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

func (h *handler) listUsers(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context(), identity(c))
	if err != nil {
		return err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return c.JSON(http.StatusOK, out)
}

// historyQuery parses from, to, page and limit. Dates may be RFC 3339
// timestamps or plain days; a plain "to" day includes the whole day.
func historyQuery(c echo.Context) (usecase.HistoryQuery, error) {
	var q usecase.HistoryQuery
	var err error

	if q.From, err = parseTime(c.QueryParam("from"), false); err != nil {
		return q, apperr.Validation(apperr.CodeValidationFailed, "from must be a date or RFC 3339 timestamp")
	}
	if q.To, err = parseTime(c.QueryParam("to"), true); err != nil {
		return q, apperr.Validation(apperr.CodeValidationFailed, "to must be a date or RFC 3339 timestamp")
	}
	if q.Page, err = parseInt(c.QueryParam("page")); err != nil {
		return q, apperr.Validation(apperr.CodeValidationFailed, "page must be an integer")
	}
	if q.Limit, err = parseInt(c.QueryParam("limit")); err != nil {
		return q, apperr.Validation(apperr.CodeValidationFailed, "limit must be an integer")
	}
	return q, nil
}

func parseTime(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writePage(c echo.Context, page *usecase.ReadingPage) error {
	c.Response().Header().Set(headerTotalCount, strconv.FormatInt(page.Total, 10))
	return c.JSON(http.StatusOK, page)
}
