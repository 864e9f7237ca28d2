package gateway

import (
	"testing"

	"wishwall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCallbackDataRoundTrip(t *testing.T) {
	id := primitive.NewObjectID()

	for _, want := range []models.Decision{models.DecisionApprove, models.DecisionReject} {
		data := callbackData(want, id)
		decision, parsedID, err := parseCallback(data)
		require.NoError(t, err)
		assert.Equal(t, want, decision)
		assert.Equal(t, id, parsedID)
	}
}

func TestParseCallbackRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"approve",
		"approve:",
		"approve:not-a-hex-id",
		"ban:" + primitive.NewObjectID().Hex(),
		"approve:reject:" + primitive.NewObjectID().Hex(),
	}

	for _, data := range cases {
		_, _, err := parseCallback(data)
		assert.Error(t, err, "data %q", data)
	}
}
