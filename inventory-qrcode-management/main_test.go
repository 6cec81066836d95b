package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"inventory/lib/models"
	"inventory/lib/qrcode"
	"inventory/lib/testutil"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) *testutil.Repositories {
	t.Helper()
	repos := testutil.NewRepositories(t)
	logger = testutil.NewTestLogger()
	locationCodes = &qrcode.LocationCodes{
		Store:  locationCodeStore{LocationRepository: repos.Locations, QRCodeRepository: repos.QRCodes},
		Logger: logger,
	}
	return repos
}

func newRequest(method, resource, body string, pathParams map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:     method,
		Resource:       resource,
		Body:           body,
		PathParameters: pathParams,
		RequestContext: events.APIGatewayProxyRequestContext{
			Authorizer: map[string]interface{}{"sub": "user-1", "email": "user@example.com"},
		},
	}
}

func Test_Handler_Batch(t *testing.T) {
	//Arrange
	repos := setupTest(t)
	a := repos.MustCreateLocation(t, "A", nil, models.LocationTypeShelf)
	b := repos.MustCreateLocation(t, "B", nil, models.LocationTypeBox)

	//Act
	response, err := Handler(context.Background(), newRequest(http.MethodPost, "/qrcodes/batch", `{"location_ids":[`+jsonInt(b)+`,`+jsonInt(a)+`]}`, nil))

	//Assert
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)
	var results []models.QRCodeResult
	require.NoError(t, json.Unmarshal([]byte(response.Body), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "B", results[0].Name)
	assert.Contains(t, results[0].QRData, "data:image/png;base64,")
}

func Test_Handler_Errors(t *testing.T) {
	repos := setupTest(t)
	a := repos.MustCreateLocation(t, "A", nil, models.LocationTypeShelf)

	cases := []struct {
		name     string
		request  events.APIGatewayProxyRequest
		expected int
	}{
		{"unknown in batch", newRequest(http.MethodPost, "/qrcodes/batch", `{"location_ids":[`+jsonInt(a)+`,999]}`, nil), http.StatusNotFound},
		{"empty batch", newRequest(http.MethodPost, "/qrcodes/batch", `{"location_ids":[]}`, nil), http.StatusBadRequest},
		{"unknown single", newRequest(http.MethodPost, "/locations/{id}/qrcode", "", map[string]string{"id": "999"}), http.StatusNotFound},
		{"single", newRequest(http.MethodPost, "/locations/{id}/qrcode", "", map[string]string{"id": jsonInt(a)}), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			response, err := Handler(context.Background(), tc.request)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, response.StatusCode)
		})
	}
}

func jsonInt(v int64) string {
	encoded, _ := json.Marshal(v)
	return string(encoded)
}
