package data_test

import (
	"context"
	"errors"
	"testing"

	"inventory/lib/constants"
	"inventory/lib/data"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSSMClient struct {
	TestSuccess bool
	Paths       []string
}

func InitializeSSMClient(mock *MockSSMClient) data.SSMRepository {
	return &data.SSMDao{
		SSM:    mock,
		Logger: logrus.New(),
	}
}

func (m *MockSSMClient) GetParametersByPath(ctx context.Context, input *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	m.Paths = append(m.Paths, aws.ToString(input.Path))
	if !m.TestSuccess {
		return nil, errors.New("error in GetParametersByPath")
	}
	if input.NextToken == nil {
		return &ssm.GetParametersByPathOutput{
			Parameters: []types.Parameter{
				{Name: aws.String(constants.DATABASE_DRIVER), Value: aws.String("sqlite")},
				{Name: aws.String(constants.SQLITE_PATH), Value: aws.String("/tmp/inventory.db")},
			},
			NextToken: aws.String("page-2"),
		}, nil
	}
	return &ssm.GetParametersByPathOutput{
		Parameters: []types.Parameter{
			{Name: aws.String(constants.REDIS_ADDR), Value: aws.String("localhost:6379")},
		},
	}, nil
}

func Test_GetParameters_Success(t *testing.T) {
	//Arrange
	mock := &MockSSMClient{TestSuccess: true}
	ssmRepository := InitializeSSMClient(mock)

	//Act
	actual, err := ssmRepository.GetParameters(context.Background())

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "sqlite", actual[constants.DATABASE_DRIVER])
	assert.Equal(t, "/tmp/inventory.db", actual[constants.SQLITE_PATH])
	assert.Equal(t, "localhost:6379", actual[constants.REDIS_ADDR])
	assert.Equal(t, []string{constants.SSM_PATH, constants.SSM_PATH}, mock.Paths)
}

func Test_GetParameters_Failure(t *testing.T) {
	//Arrange
	ssmRepository := InitializeSSMClient(&MockSSMClient{TestSuccess: false})

	//Act
	_, actual := ssmRepository.GetParameters(context.Background())

	//Assert
	require.Error(t, actual)
	assert.Contains(t, actual.Error(), "error in GetParametersByPath")
}
