package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"inventory/lib/api"
	"inventory/lib/auth"
	"inventory/lib/clients"
	"inventory/lib/constants"
	"inventory/lib/data"
	"inventory/lib/labels"
	"inventory/lib/models"
	"inventory/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const labelCacheTTL = 24 * time.Hour

// Global variables for Lambda cold start optimization
var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
	labelService  *labels.Service
)

// Handler processes API Gateway requests for label sheets
//
//	POST /labels/pdf     - Multi-page PDF for every selected item
//	POST /labels/image   - Single PNG grid; items beyond one grid are reported as omitted
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Debug("Label request received")

	if _, err := auth.ExtractClaimsFromRequest(request); err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}
	if request.HTTPMethod != http.MethodPost {
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	}

	var generate func(context.Context, *models.LabelRequest) (*models.LabelArtifact, error)
	switch request.Resource {
	case "/labels/pdf":
		generate = labelService.GeneratePDF
	case "/labels/image":
		generate = labelService.GenerateImage
	default:
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}

	var labelReq models.LabelRequest
	if err := api.ParseJSONBody(request.Body, &labelReq); err != nil {
		logger.WithError(err).Warn("Failed to parse label request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger), nil
	}

	artifact, err := generate(ctx, &labelReq)
	if err != nil {
		return api.ErrorFromErr(err, logger), nil
	}

	logger.WithFields(logrus.Fields{
		"resource": request.Resource,
		"pages":    artifact.Pages,
		"labels":   artifact.Labels,
		"omitted":  artifact.Omitted,
	}).Info("Generated labels")
	return api.SuccessResponse(http.StatusOK, artifact, logger), nil
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

	qrCodeRepository := &data.QRCodeDao{Store: store, Logger: logger}
	labelService = &labels.Service{
		Composer: &labels.Composer{
			Items:     &data.ItemDao{Store: store, Logger: logger},
			Locations: &data.LocationDao{Store: store, QRCodes: qrCodeRepository, Logger: logger},
			QRCodes:   qrCodeRepository,
			Logger:    logger,
		},
		Logger: logger,
	}
	labelService.Cache = setupCache(ctx, ssmParams[constants.REDIS_ADDR])

	logger.WithField("operation", "setup").Info("Label Management Lambda initialization completed successfully")
}

// setupCache connects the artifact cache when an address is configured.
// An unreachable cache disables caching rather than failing the cold start.
func setupCache(ctx context.Context, addr string) labels.ArtifactCache {
	if addr == "" {
		return nil
	}
	rdb, err := clients.NewRedisClient(ctx, addr)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "setupCache",
			"addr":      addr,
			"error":     err.Error(),
		}).Warn("Label cache unavailable, rendering without cache")
		return nil
	}
	return labels.NewRedisCache(rdb, labelCacheTTL)
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
