package domain

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChatHistoryRequest_RequiresExchangeID(t *testing.T) {
	v := validator.New()

	req := ChatHistoryRequest{UserID: uuid.New().String()}
	assert.Error(t, v.Struct(&req))

	req.ExchangeID = uuid.New().String()
	assert.NoError(t, v.Struct(&req))
}
