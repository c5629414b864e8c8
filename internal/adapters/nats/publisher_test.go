package natsadapter_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natsadapter "github.com/mathieuadams/ukcrimerepository/internal/adapters/nats"
	"github.com/mathieuadams/ukcrimerepository/internal/core/domain"
)

func TestEncodeContact(t *testing.T) {
	msg := &domain.ContactMessage{
		Name:       "Jo",
		Email:      "jo@example.com",
		Subject:    "Hi",
		Message:    "Hello",
		ReceivedAt: time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC),
	}

	data, err := natsadapter.EncodeContact(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "jo@example.com", decoded["email"])
	assert.Equal(t, "2025-10-01T09:30:00Z", decoded["received_at"])
	assert.Equal(t, "crimemap.contact.submitted", natsadapter.ContactSubject)
}
