package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"inventory/lib/api"
	"inventory/lib/auth"
	"inventory/lib/backup"
	"inventory/lib/clients"
	"inventory/lib/constants"
	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger               *logrus.Logger
	isLocal              bool
	ssmRepository        data.SSMRepository
	ssmParams            map[string]string
	syncConfigRepository data.SyncConfigRepository
	backupService        *backup.Service

	// checkWebDAV verifies new WebDAV settings before they are stored
	checkWebDAV = func(settings *models.WebDAVConfig) error {
		return clients.CheckWebDAVConnection(clients.NewWebDAVClient(settings))
	}
)

// Handler processes API Gateway requests for remote backup
//
//	PUT  /sync/webdav      - Store WebDAV settings after a connection check
//	PUT  /sync/s3          - Store S3 settings
//	GET  /sync/{type}      - Backend status without credentials
//	POST /sync/upload      - Export the store to the named backend
//	POST /sync/download    - Replace the store with the backend's snapshot
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Debug("Sync request received")

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	switch {
	case request.Resource == "/sync/webdav" && request.HTTPMethod == http.MethodPut:
		return handleConfigureWebDAV(ctx, request.Body), nil
	case request.Resource == "/sync/s3" && request.HTTPMethod == http.MethodPut:
		return handleConfigureS3(ctx, request.Body), nil
	case request.Resource == "/sync/{type}" && request.HTTPMethod == http.MethodGet:
		return handleGetStatus(ctx, models.SyncType(request.PathParameters["type"])), nil
	case request.Resource == "/sync/upload" && request.HTTPMethod == http.MethodPost:
		return handleSync(ctx, claims, request.Body, backupService.Upload), nil
	case request.Resource == "/sync/download" && request.HTTPMethod == http.MethodPost:
		return handleSync(ctx, claims, request.Body, backupService.Download), nil
	default:
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

// handleConfigureWebDAV handles PUT /sync/webdav
func handleConfigureWebDAV(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var settings models.WebDAVConfig
	if err := api.ParseJSONBody(body, &settings); err != nil {
		logger.WithError(err).Warn("Failed to parse WebDAV settings")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}
	if err := settings.Validate(); err != nil {
		return validationFailure("Invalid WebDAV settings", err)
	}
	if err := checkWebDAV(&settings); err != nil {
		return api.ErrorFromErr(fmt.Errorf("%w: %v", data.ErrInvalidConfig, err), logger)
	}

	saved, err := syncConfigRepository.SaveSyncConfig(ctx, models.SyncTypeWebDAV, &settings)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, saved.Status(), logger)
}

// handleConfigureS3 handles PUT /sync/s3
func handleConfigureS3(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var settings models.S3Config
	if err := api.ParseJSONBody(body, &settings); err != nil {
		logger.WithError(err).Warn("Failed to parse S3 settings")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}
	if err := settings.Validate(); err != nil {
		return validationFailure("Invalid S3 settings", err)
	}

	saved, err := syncConfigRepository.SaveSyncConfig(ctx, models.SyncTypeS3, &settings)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, saved.Status(), logger)
}

// validationFailure reports each failing settings field when the validator produced them
func validationFailure(message string, err error) events.APIGatewayProxyResponse {
	var fieldErrs *models.FieldErrors
	if errors.As(err, &fieldErrs) {
		logger.WithField("fields", fieldErrs.Problems).Warn(message)
		return api.ValidationErrorResponse(message, fieldErrs.Problems, logger)
	}
	return api.ErrorFromErr(fmt.Errorf("%w: %v", data.ErrInvalidInput, err), logger)
}

// handleGetStatus handles GET /sync/{type}
func handleGetStatus(ctx context.Context, syncType models.SyncType) events.APIGatewayProxyResponse {
	if !syncType.Valid() {
		return api.ErrorFromErr(fmt.Errorf("%w: unknown sync type %q", data.ErrInvalidInput, syncType), logger)
	}
	config, err := syncConfigRepository.GetSyncConfig(ctx, syncType)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, config.Status(), logger)
}

// handleSync handles POST /sync/upload and POST /sync/download
func handleSync(ctx context.Context, claims *auth.Claims, body string, run func(context.Context, models.SyncType) (*models.SyncResult, error)) events.APIGatewayProxyResponse {
	var syncReq models.SyncRequest
	if err := api.ParseJSONBody(body, &syncReq); err != nil {
		logger.WithError(err).Warn("Failed to parse sync request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	logger.WithFields(logrus.Fields{
		"subject":   claims.Subject,
		"sync_type": syncReq.SyncType,
	}).Info("Sync requested")

	result, err := run(ctx, syncReq.SyncType)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, result, logger)
}

// main is the Lambda function entry point; setup runs once per cold start
func main() {
	setup()
	lambda.Start(Handler)
}

func setup() {
	var err error
	ctx := context.Background()

	isLocal = parseIsLocal()
	logger = setupLogger(isLocal)

	ssmRepository = &data.SSMDao{
		SSM:    clients.NewSSMClient(isLocal),
		Logger: logger,
	}
	ssmParams, err = ssmRepository.GetParameters(ctx)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "setup",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	db, err := clients.NewDatabase(ctx, ssmParams)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "setup",
			"error":     err.Error(),
		}).Fatal("Error setting up database client")
	}
	store := data.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Error migrating store")
	}

	syncConfigRepository = &data.SyncConfigDao{Store: store, Logger: logger}
	backupService = &backup.Service{
		Snapshots:   &data.SnapshotDao{Store: store, Logger: logger},
		SyncConfigs: syncConfigRepository,
		Backends:    backup.NewBackendFactory(isLocal),
		ObjectKey:   ssmParams[constants.BACKUP_OBJECT_KEY],
		Logger:      logger,
	}

	logger.WithField("operation", "setup").Info("Sync Management Lambda initialization completed successfully")
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	if isLocal {
		_ = godotenv.Load()
	}
	return isLocal
}

func setupLogger(isLocal bool) *logrus.Logger {
	logger := logrus.New()
	util.SetLogLevel(logger, os.Getenv("LOG_LEVEL"))
	logger.SetFormatter(&logrus.JSONFormatter{PrettyPrint: isLocal})
	return logger
}
