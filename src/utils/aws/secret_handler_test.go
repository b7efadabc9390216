package aws_handler

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsManager struct {
	secretsmanageriface.SecretsManagerAPI
	values map[string]*string
}

func (f *fakeSecretsManager) GetSecretValue(in *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
	value, ok := f.values[aws.StringValue(in.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: value}, nil
}

func TestGetSecretValue(t *testing.T) {
	manager := NewSecretManager(&fakeSecretsManager{values: map[string]*string{
		"db/password": aws.String("s3cret"),
		"db/binary":   nil,
	}})

	value, err := manager.GetSecretValue("db/password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = manager.GetSecretValue("db/binary")
	assert.Error(t, err)

	_, err = manager.GetSecretValue("missing")
	assert.Error(t, err)
}
