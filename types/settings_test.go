package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettings_WithDefaults(t *testing.T) {
	s := Settings{}.WithDefaults()
	assert.Equal(t, "ovh-eu", s.Endpoint)
	assert.Equal(t, "IE", s.Zone)
	assert.Equal(t, "go-ovh-ie", s.IAM)

	s = Settings{Zone: "FR", IAM: "custom"}.WithDefaults()
	assert.Equal(t, "custom", s.IAM)
}

func TestSettings_Flags(t *testing.T) {
	s := Settings{AppKey: "k", AppSecret: "s"}
	assert.False(t, s.HasCredentials())
	s.ConsumerKey = "c"
	assert.True(t, s.HasCredentials())

	assert.False(t, s.HasTelegram())
	next := s
	next.TgToken, next.TgChatID = "t", "1"
	assert.True(t, next.HasTelegram())
	assert.True(t, next.TelegramChanged(s))
	assert.False(t, next.TelegramChanged(next))
}

func TestServerPlan_HasStock(t *testing.T) {
	plan := ServerPlan{Datacenters: []DatacenterAvailability{
		{Datacenter: "gra", Availability: "unavailable"},
		{Datacenter: "rbx", Availability: "unknown"},
	}}
	assert.False(t, plan.HasStock())

	plan.Datacenters = append(plan.Datacenters, DatacenterAvailability{Datacenter: "sbg", Availability: "1H-high"})
	assert.True(t, plan.HasStock())
}
