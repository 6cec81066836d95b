package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

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
	logger         *logrus.Logger
	isLocal        bool
	ssmRepository  data.SSMRepository
	ssmParams      map[string]string
	itemRepository data.ItemRepository
)

// Handler processes API Gateway requests for items and their stock ledger
//
//	GET    /items                        - List items (category, location_id, search, low_stock)
//	POST   /items                        - Create item with optional initial stock
//	GET    /items/{id}                   - Get item
//	PUT    /items/{id}                   - Update item fields (not quantity)
//	DELETE /items/{id}                   - Delete item
//	POST   /items/{id}/quantity          - Apply a stock movement
//	GET    /items/{id}/logs              - Ledger entries in creation order
//	GET    /items/{id}/quantity-at?at=   - Quantity replayed at an RFC3339 instant
//	GET    /dashboard                    - Store totals and low-stock count
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.WithFields(logrus.Fields{
		"operation": "Handler",
		"method":    request.HTTPMethod,
		"resource":  request.Resource,
	}).Debug("Item management request received")

	claims, err := auth.ExtractClaimsFromRequest(request)
	if err != nil {
		logger.WithError(err).Error("Authentication failed")
		return api.ErrorResponse(http.StatusUnauthorized, "Authentication failed", logger), nil
	}
	logger.WithField("claims", claims.ToJSON()).Debug("User authenticated successfully")

	switch {
	case request.Resource == "/items" && request.HTTPMethod == http.MethodGet:
		return handleGetItems(ctx, request), nil
	case request.Resource == "/items" && request.HTTPMethod == http.MethodPost:
		return handleCreateItem(ctx, request.Body), nil
	case request.Resource == "/dashboard" && request.HTTPMethod == http.MethodGet:
		return handleGetDashboard(ctx), nil
	}

	itemID, err := api.PathID(request, "id")
	switch {
	case request.Resource == "/items/{id}" && request.HTTPMethod == http.MethodGet:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse { return handleGetItem(ctx, itemID) }), nil
	case request.Resource == "/items/{id}" && request.HTTPMethod == http.MethodPut:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse { return handleUpdateItem(ctx, itemID, request.Body) }), nil
	case request.Resource == "/items/{id}" && request.HTTPMethod == http.MethodDelete:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse { return handleDeleteItem(ctx, itemID) }), nil
	case request.Resource == "/items/{id}/quantity" && request.HTTPMethod == http.MethodPost:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse { return handleUpdateQuantity(ctx, itemID, request.Body) }), nil
	case request.Resource == "/items/{id}/logs" && request.HTTPMethod == http.MethodGet:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse { return handleGetLogs(ctx, itemID) }), nil
	case request.Resource == "/items/{id}/quantity-at" && request.HTTPMethod == http.MethodGet:
		return withItemID(itemID, err, func() events.APIGatewayProxyResponse {
			return handleQuantityAt(ctx, itemID, request.QueryStringParameters["at"])
		}), nil
	default:
		logger.WithFields(logrus.Fields{
			"method":   request.HTTPMethod,
			"resource": request.Resource,
		}).Warn("Endpoint not found")
		return api.ErrorResponse(http.StatusNotFound, "Endpoint not found", logger), nil
	}
}

func withItemID(itemID int64, err error, handle func() events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return handle()
}

// handleGetItems handles GET /items
func handleGetItems(ctx context.Context, request events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	locationID, err := api.QueryInt64(request, "location_id")
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	filter := &models.ItemFilter{
		Category:   api.QueryString(request, "category"),
		LocationID: locationID,
		Search:     api.QueryString(request, "search"),
		LowStock:   api.QueryBool(request, "low_stock"),
	}

	items, err := itemRepository.GetItems(ctx, filter)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, models.ItemListResponse{Items: items, Total: len(items)}, logger)
}

// handleCreateItem handles POST /items
func handleCreateItem(ctx context.Context, body string) events.APIGatewayProxyResponse {
	var input models.ItemInput
	if err := api.ParseJSONBody(body, &input); err != nil {
		logger.WithError(err).Warn("Failed to parse create item request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	itemID, err := itemRepository.CreateItem(ctx, &input)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusCreated, models.CreatedResponse{ID: itemID}, logger)
}

// handleGetItem handles GET /items/{id}
func handleGetItem(ctx context.Context, itemID int64) events.APIGatewayProxyResponse {
	item, err := itemRepository.GetItemByID(ctx, itemID)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, item, logger)
}

// handleUpdateItem handles PUT /items/{id}
func handleUpdateItem(ctx context.Context, itemID int64, body string) events.APIGatewayProxyResponse {
	var input models.ItemInput
	if err := api.ParseJSONBody(body, &input); err != nil {
		logger.WithError(err).Warn("Failed to parse update item request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}

	item, err := itemRepository.UpdateItem(ctx, itemID, &input)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, item, logger)
}

// handleDeleteItem handles DELETE /items/{id}
func handleDeleteItem(ctx context.Context, itemID int64) events.APIGatewayProxyResponse {
	if err := itemRepository.DeleteItem(ctx, itemID); err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusNoContent, nil, logger)
}

// handleUpdateQuantity handles POST /items/{id}/quantity
func handleUpdateQuantity(ctx context.Context, itemID int64, body string) events.APIGatewayProxyResponse {
	var req models.UpdateQuantityRequest
	if err := api.ParseJSONBody(body, &req); err != nil {
		logger.WithError(err).Warn("Failed to parse quantity request")
		return api.ErrorResponse(http.StatusBadRequest, "Invalid request body", logger)
	}
	if req.ItemID != 0 && req.ItemID != itemID {
		return api.ErrorResponse(http.StatusBadRequest, "item_id does not match path", logger)
	}
	req.ItemID = itemID

	quantity, err := itemRepository.AdjustQuantity(ctx, &req)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, models.UpdateQuantityResponse{ItemID: itemID, Quantity: quantity}, logger)
}

// handleGetLogs handles GET /items/{id}/logs
func handleGetLogs(ctx context.Context, itemID int64) events.APIGatewayProxyResponse {
	logs, err := itemRepository.GetInventoryLogs(ctx, itemID)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, logs, logger)
}

// handleQuantityAt handles GET /items/{id}/quantity-at
func handleQuantityAt(ctx context.Context, itemID int64, rawAt string) events.APIGatewayProxyResponse {
	at, err := time.Parse(time.RFC3339, rawAt)
	if err != nil {
		return api.ErrorFromErr(fmt.Errorf("%w: at must be an RFC3339 timestamp", data.ErrInvalidInput), logger)
	}

	quantity, err := itemRepository.QuantityAt(ctx, itemID, at)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, models.UpdateQuantityResponse{ItemID: itemID, Quantity: quantity}, logger)
}

// handleGetDashboard handles GET /dashboard
func handleGetDashboard(ctx context.Context) events.APIGatewayProxyResponse {
	stats, err := itemRepository.GetDashboardStats(ctx)
	if err != nil {
		return api.ErrorFromErr(err, logger)
	}
	return api.SuccessResponse(http.StatusOK, stats, logger)
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
	itemRepository = &data.ItemDao{Store: store, Logger: logger}

	logger.WithField("operation", "setup").Info("Item Management Lambda initialization completed successfully")
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
