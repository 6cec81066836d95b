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
	"inventory/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger             *logrus.Logger
	isLocal            bool
	ssmRepository      data.SSMRepository
	ssmParams          map[string]string
	store              *data.Store
	locationRepository data.LocationRepository
)

// Handler processes API Gateway requests for the location hierarchy
//
//	GET    /locations             - List locations ordered by name
//	GET    /locations/tree        - Nested location forest
//	POST   /locations             - Create location
//	GET    /locations/qr/{code}   - Resolve a QR code to its location
//	GET    /locations/{id}        - Get location
//	PUT    /locations/{id}        - Rename / describe location
//	DELETE /locations/{id}        - Delete location and its whole subtree
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Debug("Location management request received")

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}
	logger.WithField("claims", claims.ToJSON()).Debug("User authenticated successfully")

	switch {
	case request.Resource == "/locations" && request.HTTPMethod == http.MethodGet:
		return handleGetLocations(ctx), nil
	case request.Resource == "/locations/tree" && request.HTTPMethod == http.MethodGet:
		return handleGetLocationTree(ctx), nil
	case request.Resource == "/locations" && request.HTTPMethod == http.MethodPost:
		return handleCreateLocation(ctx, request.Body), nil
	case request.Resource == "/locations/qr/{code}" && request.HTTPMethod == http.MethodGet:
		return handleGetLocationByQRCode(ctx, request.PathParameters["code"]), nil
	case request.Resource == "/locations/{id}":
		locationID, err := api.PathID(request, "id")
		if err != nil {
			return api.ErrorFromErr(err, logger), nil
		}
		switch request.HTTPMethod {
		case http.MethodGet:
			return handleGetLocation(ctx, locationID), nil
		case http.MethodPut:
			return handleUpdateLocation(ctx, locationID, request.Body), nil
		case http.MethodDelete:
			return handleDeleteLocation(ctx, locationID), nil
		}
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", logger), nil
	default:
		logger.WithFields(logrus.Fields{
			"method":   request.HTTPMethod,
			"resource": request.Resource,
		}).Warn("Endpoint not found")
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

// handleGetLocations handles GET /locations
func handleGetLocations(ctx context.Context) events.APIGatewayProxyResponse {
	locations, err := locationRepository.GetLocations(ctx)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, models.LocationListResponse{
		Locations: locations,
		Total:     len(locations),
	}, logger)
}

// handleGetLocationTree handles GET /locations/tree
func handleGetLocationTree(ctx context.Context) events.APIGatewayProxyResponse {
	forest, err := locationRepository.GetLocationTree(ctx)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	if forest == nil {
		forest = []*models.LocationNode{}
	}
	return api.SuccessResponse(http.StatusOK, forest, logger)
}

// handleCreateLocation handles POST /locations
func handleCreateLocation(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var createReq models.CreateLocationRequest
	if err := api.ParseJSONBody(body, &createReq); err != nil {
		logger.WithError(err).Warn("Failed to parse create location request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	locationID, err := locationRepository.CreateLocation(ctx, &createReq)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusCreated, models.CreatedResponse{ID: locationID}, logger)
}

// handleGetLocation handles GET /locations/{id}
func handleGetLocation(ctx context.Context, locationID int64) events.APIGatewayProxyResponse {
	location, err := locationRepository.GetLocationByID(ctx, locationID)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, location, logger)
}

// handleGetLocationByQRCode handles GET /locations/qr/{code}
func handleGetLocationByQRCode(ctx context.Context, code string) events.APIGatewayProxyResponse {
	location, err := locationRepository.GetLocationByQRCode(ctx, code)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, location, logger)
}

// handleUpdateLocation handles PUT /locations/{id}
func handleUpdateLocation(ctx context.Context, locationID int64, body string) events.APIGatewayProxyResponse {
	var updateReq models.UpdateLocationRequest
	if err := api.ParseJSONBody(body, &updateReq); err != nil {
		logger.WithError(err).Warn("Failed to parse update location request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	location, err := locationRepository.UpdateLocation(ctx, locationID, &updateReq)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, location, logger)
}

// handleDeleteLocation handles DELETE /locations/{id}
func handleDeleteLocation(ctx context.Context, locationID int64) events.APIGatewayProxyResponse {
	result, err := locationRepository.DeleteLocation(ctx, locationID)
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
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	if err = setupStore(ctx, ssmParams); err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error setting up store")
	}

	logger.WithField("operation", "init").Info("Location Management Lambda initialization completed successfully")
}

func parseIsLocal() bool {
	isLocal, _ := strconv.ParseBool(os.Getenv("IS_LOCAL"))
	if isLocal {
		// .env is optional for local runs
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

func setupStore(ctx context.Context, ssmParams map[string]string) error {
	db, err := clients.NewDatabase(ctx, ssmParams)
	if err != nil {
		return fmt.Errorf("error creating database client: %w", err)
	}

	store = data.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	qrCodeRepository := &data.QRCodeDao{Store: store, Logger: logger}
	locationRepository = &data.LocationDao{
		Store:   store,
		QRCodes: qrCodeRepository,
		Logger:  logger,
	}
	return nil
}
