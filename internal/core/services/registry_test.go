package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rayhan-Ayon/HireFlow-sub001/internal/core/domain"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	var log []string
	registry.Register(domain.ProviderGoogle, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "google", log: &log},
		&mockMail{name: "google", log: &log},
	})

	p := registry.Get(domain.ProviderGoogle)
	require.NotNil(t, p)
	assert.Equal(t, domain.ProviderGoogle, p.Type)
	assert.NotNil(t, p.Calendar)
	assert.NotNil(t, p.Mail)
	assert.Nil(t, p.Auth)
	assert.Nil(t, p.Meeting)
}

func TestRegistry_GetUnknownReturnsNil(t *testing.T) {
	registry := NewRegistry()

	assert.Nil(t, registry.Get(domain.ProviderMicrosoft))
	assert.Nil(t, registry.Calendar(domain.ProviderMicrosoft))
	assert.Nil(t, registry.Mail(domain.ProviderMicrosoft))
	assert.Nil(t, registry.Meeting(domain.ProviderZoom))
	assert.Nil(t, registry.Auth(domain.ProviderGoogle))
}

func TestRegistry_MeetingOnlyProvider(t *testing.T) {
	registry := NewRegistry()

	var log []string
	registry.Register(domain.ProviderZoom, &mockMeeting{log: &log})

	p := registry.Get(domain.ProviderZoom)
	require.NotNil(t, p)
	assert.NotNil(t, p.Meeting)
	assert.Nil(t, p.Calendar)
	assert.Nil(t, p.Mail)

	_, err := p.Meeting.CreateMeeting(context.Background(), "acc-1", domain.MeetingRequest{})
	assert.NoError(t, err)
}

func TestRegistry_SetDefault(t *testing.T) {
	registry := NewRegistry()

	assert.False(t, registry.SetDefault(domain.ProviderGoogle))
	assert.Nil(t, registry.Default())

	var log []string
	registry.Register(domain.ProviderGoogle, struct {
		*mockCalendar
		*mockMail
	}{
		&mockCalendar{name: "google", log: &log},
		&mockMail{name: "google", log: &log},
	})

	assert.True(t, registry.SetDefault(domain.ProviderGoogle))
	require.NotNil(t, registry.Default())
	assert.Equal(t, domain.ProviderGoogle, registry.Default().Type)
}

func TestRegistry_ProvidersSorted(t *testing.T) {
	registry := NewRegistry()

	var log []string
	registry.Register(domain.ProviderZoom, &mockMeeting{log: &log})
	registry.Register(domain.ProviderGoogle, &mockCalendar{name: "google", log: &log})
	registry.Register(domain.ProviderMicrosoft, &mockCalendar{name: "microsoft", log: &log})

	assert.Equal(t, []domain.ProviderType{
		domain.ProviderGoogle,
		domain.ProviderMicrosoft,
		domain.ProviderZoom,
	}, registry.Providers())
}
