package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/access"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

// アップロード1ファイルの上限
const maxUploadBytes = 10 << 20

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのエラーをHTTPにする
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	if ue, ok := usecase.AsError(err); ok {
		if ue.Kind == usecase.KindTransaction {
			slog.ErrorContext(c.Request().Context(), "transaction failure", slog.String("error", err.Error()), slog.Bool("retryable", ue.Retryable))
		}
		return c.JSON(statusOf(ue), ErrorResponse{Error: messageOf(ue), Code: ue.Code, Missing: ue.Missing})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrUserInactive), errors.Is(err, auth.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, validator.ErrInvalidInput),
		errors.Is(err, validator.ErrPasswordTooShort),
		errors.Is(err, validator.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, auth.ErrOrgRequired):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrOrgNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	}

	//500
	slog.ErrorContext(c.Request().Context(), "unhandled error", slog.String("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func statusOf(ue *usecase.Error) int {
	switch ue.Kind {
	case usecase.KindValidation:
		return http.StatusBadRequest
	case usecase.KindAuthorization:
		return http.StatusForbidden
	case usecase.KindNotFound:
		return http.StatusNotFound
	case usecase.KindConflict:
		return http.StatusConflict
	case usecase.KindBusinessRule:
		return http.StatusUnprocessableEntity
	case usecase.KindCollaborator:
		return http.StatusBadGateway
	case usecase.KindTransaction:
		if ue.Retryable {
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}

// DBエラーの中身は返さない
func messageOf(ue *usecase.Error) string {
	if ue.Kind == usecase.KindTransaction {
		if ue.Retryable {
			return "temporarily unavailable, retry"
		}
		return "internal error"
	}
	return ue.Message
}

func callerOf(c echo.Context) (access.Caller, bool) {
	return middleware.CallerFrom(c)
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// 空なら nil
func queryInt64(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &n, nil
}

func queryTime(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &tm, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &b, nil
}

// multipartのJSON文字列フィールド。無ければdstはそのまま
func formJSON(c echo.Context, name string, dst interface{}) (bool, error) {
	v := c.FormValue(name)
	if v == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return false, fmt.Errorf("invalid %s", name)
	}
	return true, nil
}

func readUpload(fh *multipart.FileHeader) (usecase.FileUpload, error) {
	if fh.Size > maxUploadBytes {
		return usecase.FileUpload{}, fmt.Errorf("%s is too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return usecase.FileUpload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return usecase.FileUpload{}, err
	}
	if len(data) > maxUploadBytes {
		return usecase.FileUpload{}, fmt.Errorf("%s is too large", fh.Filename)
	}
	return usecase.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readUploads(fhs []*multipart.FileHeader) ([]usecase.FileUpload, error) {
	out := make([]usecase.FileUpload, 0, len(fhs))
	for _, fh := range fhs {
		f, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// multipartでなければnil
func multipartForm(c echo.Context) *multipart.Form {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form
}
