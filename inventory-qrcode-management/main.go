package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"inventory/lib/api"
	"inventory/lib/auth"
	"inventory/lib/clients"
	"inventory/lib/data"
	"inventory/lib/models"
	"inventory/lib/qrcode"
	"inventory/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger        *logrus.Logger
	isLocal       bool
	ssmRepository data.SSMRepository
	ssmParams     map[string]string
	locationCodes *qrcode.LocationCodes
)

// locationCodeStore joins the hierarchy reads with code assignment
type locationCodeStore struct {
	data.LocationRepository
	data.QRCodeRepository
}

// Handler processes API Gateway requests for location QR codes
//
//	POST /locations/{id}/qrcode   - Assign if absent and render one code
//	POST /qrcodes/batch           - Render codes for several locations, in request order
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Debug("QR code request received")

	if _, err := auth.ExtractClaimsFromRequest(request); err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}

	switch {
	case request.Resource == "/locations/{id}/qrcode" && request.HTTPMethod == http.MethodPost:
		locationID, err := api.PathID(request, "id")
		if err != nil {
			return api.ErrorFromErr(err, logger), nil
		}
		return handleGenerateQRCode(ctx, locationID), nil
	case request.Resource == "/qrcodes/batch" && request.HTTPMethod == http.MethodPost:
		return handleGenerateBatch(ctx, request.Body), nil
	default:
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

// handleGenerateQRCode handles POST /locations/{id}/qrcode
func handleGenerateQRCode(ctx context.Context, locationID int64) events.APIGatewayProxyResponse {
	result, err := locationCodes.Generate(ctx, locationID)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, result, logger)
}

// handleGenerateBatch handles POST /qrcodes/batch
func handleGenerateBatch(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var batchReq models.BatchQRRequest
	if err := api.ParseJSONBody(body, &batchReq); err != nil {
		logger.WithError(err).Warn("Failed to parse batch QR request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}
	if len(batchReq.LocationIDs) == 0 {
		return api.ErrorFromErr(fmt.Errorf("%w: location_ids is empty", data.ErrInvalidInput), logger)
	}

	results, err := locationCodes.GenerateBatch(ctx, batchReq.LocationIDs)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, results, logger)
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
	locationCodes = &qrcode.LocationCodes{
		Store: locationCodeStore{
			LocationRepository: &data.LocationDao{Store: store, QRCodes: qrCodeRepository, Logger: logger},
			QRCodeRepository:   qrCodeRepository,
		},
		Size:   qrcode.DefaultSize,
		Logger: logger,
	}

	logger.WithField("operation", "setup").Info("QR Code Management Lambda initialization completed successfully")
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
