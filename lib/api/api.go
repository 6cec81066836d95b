package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"inventory/lib/data"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// ErrEmptyBody is returned by ParseJSONBody when the request carries no payload
var ErrEmptyBody = errors.New("request body is empty")

func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

// SuccessResponse creates a successful API Gateway response
// A 204 or nil data yields an empty body.
func SuccessResponse(statusCode int, data interface{}, logger *logrus.Logger) events.APIGatewayProxyResponse {
	if data == nil || statusCode == http.StatusNoContent {
		return events.APIGatewayProxyResponse{StatusCode: statusCode, Headers: defaultHeaders()}
	}

	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal response data")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// ErrorResponse creates an error API Gateway response
func ErrorResponse(statusCode int, message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	return errorBody(statusCode, "", message, logger)
}

func errorBody(statusCode int, code, message string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}
	if code != "" {
		errorData["code"] = code
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":true,"message":"Internal server error","status":500}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// ValidationErrorResponse creates a validation error response
func ValidationErrorResponse(message string, errors []string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":      true,
		"code":       "invalid_input",
		"message":    message,
		"status":     http.StatusBadRequest,
		"validation": errors,
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal validation error response")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusBadRequest,
		Body:       string(body),
		Headers:    defaultHeaders(),
	}
}

// errorKinds is checked in order; the first sentinel matched decides the response
var errorKinds = []struct {
	sentinel error
	status   int
	code     string
}{
	{data.ErrNotFound, http.StatusNotFound, "not_found"},
	{data.ErrInvalidParent, http.StatusBadRequest, "invalid_parent"},
	{data.ErrInvalidConfig, http.StatusBadRequest, "invalid_config"},
	{data.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{data.ErrEmptySelection, http.StatusBadRequest, "empty_selection"},
	{data.ErrInvalidQuantity, http.StatusConflict, "invalid_quantity"},
	{data.ErrIntegrity, http.StatusInternalServerError, "integrity_error"},
}

// ErrorFromErr turns a domain error into a labelled API response.
// Unrecognised errors are logged and reported as a generic 500.
func ErrorFromErr(err error, logger *logrus.Logger) events.APIGatewayProxyResponse {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.sentinel) {
			if kind.status >= http.StatusInternalServerError {
				logger.WithError(err).Error("Store integrity failure")
			} else {
				logger.WithFields(logrus.Fields{
					"code":  kind.code,
					"error": err.Error(),
				}).Warn("Request rejected")
			}
			return errorBody(kind.status, kind.code, err.Error(), logger)
		}
	}

	logger.WithError(err).Error("Unhandled error")
	return errorBody(http.StatusInternalServerError, "internal", "Internal server error", logger)
}

// ParseJSONBody decodes body into v, rejecting unknown fields and trailing data
func ParseJSONBody(body string, v interface{}) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(body)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// PathID parses the named path parameter as a positive int64
func PathID(request events.APIGatewayProxyRequest, name string) (int64, error) {
	raw, ok := request.PathParameters[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: missing path parameter %s", data.ErrInvalidInput, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", data.ErrInvalidInput, name, raw)
	}
	return id, nil
}

// QueryInt64 returns the named query parameter as an int64, or nil when absent
func QueryInt64(request events.APIGatewayProxyRequest, name string) (*int64, error) {
	raw, ok := request.QueryStringParameters[name]
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", data.ErrInvalidInput, name, raw)
	}
	return &value, nil
}

// QueryString returns the named query parameter, or nil when absent or blank
func QueryString(request events.APIGatewayProxyRequest, name string) *string {
	raw, ok := request.QueryStringParameters[name]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	return &raw
}

// QueryBool reports whether the named query parameter parses as true
func QueryBool(request events.APIGatewayProxyRequest, name string) bool {
	value, _ := strconv.ParseBool(request.QueryStringParameters[name])
	return value
}
