package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arman61-hub/AutoDek/internal/app/config"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

func TestListingCreated_UnconfiguredSender(t *testing.T) {
	m := NewMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, logger.NewNop())

	err := m.ListingCreated("admin@example.com", "2021 Toyota Camry")

	assert.Error(t, err)
}
