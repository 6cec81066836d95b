package data

import (
	"context"
	"fmt"

	"inventory/lib/constants"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"
)

// SSMRepository loads the service configuration
type SSMRepository interface {
	GetParameters(ctx context.Context) (map[string]string, error)
}

type SSMClientInterface interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

type SSMDao struct {
	SSM    SSMClientInterface
	Logger *logrus.Logger
}

// GetParameters reads every parameter under the service path, following pagination
func (dao *SSMDao) GetParameters(ctx context.Context) (map[string]string, error) {
	params := map[string]string{}
	input := &ssm.GetParametersByPathInput{
		Path:           aws.String(constants.SSM_PATH),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	}

	for page := 1; ; page++ {
		output, err := dao.SSM.GetParametersByPath(ctx, input)
		if err != nil {
			dao.Logger.WithFields(logrus.Fields{
				"path":  constants.SSM_PATH,
				"page":  page,
				"error": err.Error(),
			}).Error("Failed to read SSM parameters")
			return nil, fmt.Errorf("failed to read ssm parameters: %w", err)
		}

		for _, param := range output.Parameters {
			params[aws.ToString(param.Name)] = aws.ToString(param.Value)
		}

		if output.NextToken == nil {
			break
		}
		input.NextToken = output.NextToken
	}

	dao.Logger.WithField("count", len(params)).Debug("Loaded SSM parameters")
	return params, nil
}
