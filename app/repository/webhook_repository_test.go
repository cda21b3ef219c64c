package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/karage/integrations/app/models"
)

func newWebhookTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PaymentWebhookEvent{}, &models.CardEvent{}))
	return db
}

func TestUpsertPaymentEventUpdatesInPlace(t *testing.T) {
	db := newWebhookTestDB(t, "upsert_payment_event")
	repo := NewWebhookRepository(db)

	first, err := repo.UpsertPaymentEvent(&models.PaymentWebhookEvent{
		Provider:       "installpay",
		PaymentID:      "pay-1",
		OrderReference: "ORD-1",
		Status:         "authorised",
		PayloadJSON:    `{"Status":"authorised"}`,
	})
	require.NoError(t, err)

	// A redelivery with the same payment ID must update the stored row,
	// never add a second one.
	second, err := repo.UpsertPaymentEvent(&models.PaymentWebhookEvent{
		Provider:       "installpay",
		PaymentID:      "pay-1",
		OrderReference: "ORD-1",
		Status:         "captured",
		PayloadJSON:    `{"Status":"captured"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "captured", second.Status)
	assert.Equal(t, `{"Status":"captured"}`, second.PayloadJSON)

	var count int64
	require.NoError(t, db.Model(&models.PaymentWebhookEvent{}).Where("payment_id = ?", "pay-1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertPaymentEventKeepsDistinctPaymentsApart(t *testing.T) {
	db := newWebhookTestDB(t, "upsert_payment_event_distinct")
	repo := NewWebhookRepository(db)

	_, err := repo.UpsertPaymentEvent(&models.PaymentWebhookEvent{
		Provider: "installpay", PaymentID: "pay-a", Status: "captured", PayloadJSON: "{}",
	})
	require.NoError(t, err)
	_, err = repo.UpsertPaymentEvent(&models.PaymentWebhookEvent{
		Provider: "installpay", PaymentID: "pay-b", Status: "declined", PayloadJSON: "{}",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.PaymentWebhookEvent{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateCardEventIfNotExists(t *testing.T) {
	db := newWebhookTestDB(t, "card_event_dedupe")
	repo := NewWebhookRepository(db)

	created, stored, err := repo.CreateCardEventIfNotExists(&models.CardEvent{
		Provider:        "walletcards",
		ProviderEventID: "evt-1",
		EventType:       models.CARD_EVENT_INSTALL,
		ExternalCardID:  "card-1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.True(t, created)

	// The same provider event ID is a duplicate delivery.
	createdAgain, storedAgain, err := repo.CreateCardEventIfNotExists(&models.CardEvent{
		Provider:        "walletcards",
		ProviderEventID: "evt-1",
		EventType:       models.CARD_EVENT_INSTALL,
		ExternalCardID:  "card-1",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.False(t, createdAgain)
	assert.Equal(t, stored.ID, storedAgain.ID)
}
