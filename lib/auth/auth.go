package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
)

// ErrMissingClaims is returned when the authorizer supplied no usable identity
var ErrMissingClaims = errors.New("claims not found in authorizer context")

// Claims represents the identity the API Gateway authorizer attached to a request
type Claims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	UserID  *int64 `json:"user_id,omitempty"`
}

// ExtractClaimsFromRequest extracts and parses JWT claims from API Gateway request
func ExtractClaimsFromRequest(request events.APIGatewayProxyRequest) (*Claims, error) {
	var claimsMap map[string]interface{}
	var ok bool

	// Cognito user pool authorizers nest claims; Lambda authorizers put them at the top level
	if authClaims, exists := request.RequestContext.Authorizer["claims"]; exists {
		claimsMap, ok = authClaims.(map[string]interface{})
	}
	if !ok {
		claimsMap = request.RequestContext.Authorizer
	}
	if len(claimsMap) == 0 {
		return nil, ErrMissingClaims
	}

	subject, ok := claimsMap["sub"].(string)
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: sub not found or invalid", ErrMissingClaims)
	}

	email, ok := claimsMap["email"].(string)
	if !ok || email == "" {
		return nil, fmt.Errorf("%w: email not found or invalid", ErrMissingClaims)
	}

	claims := &Claims{Subject: subject, Email: email}

	if userIDValue, exists := claimsMap["user_id"]; exists {
		userID, err := parseUserID(userIDValue)
		if err != nil {
			return nil, err
		}
		claims.UserID = &userID
	}

	return claims, nil
}

func parseUserID(value interface{}) (int64, error) {
	switch v := value.(type) {
	case string:
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse user_id string: %w", err)
		}
		return userID, nil
	case float64:
		// JSON numbers decode as float64
		return int64(v), nil
	default:
		return 0, fmt.Errorf("user_id has unexpected type %T", value)
	}
}

// ToJSON converts claims to JSON string for logging
func (c *Claims) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}
