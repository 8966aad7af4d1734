// File: internal/proxy/allocator_test.go
package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/accountforge/internal/config"
)

func testPool() config.ProxyConfig {
	return config.ProxyConfig{
		DefaultCountry: "US",
		Endpoints: []config.ProxyEndpoint{
			{Host: "us1.proxy.test", Port: 8080, Username: "u1", Password: "p1", Country: "US"},
			{Host: "gb1.proxy.test", Port: 8080, Username: "u2", Password: "p2", Country: "GB"},
			{Host: "us2.proxy.test", Port: 8080, Username: "u3", Password: "p3", Country: "US"},
		},
	}
}

func TestAllocate_EmptyPool(t *testing.T) {
	a := NewPoolAllocator(config.ProxyConfig{})
	_, err := a.Allocate("")
	require.ErrorIs(t, err, ErrPoolEmpty)
}

func TestAllocate_RoundRobin(t *testing.T) {
	a := NewPoolAllocator(testPool())

	var hosts []string
	for i := 0; i < 4; i++ {
		d, err := a.Allocate("")
		require.NoError(t, err)
		hosts = append(hosts, d.Host)
	}
	assert.Equal(t, []string{"us1.proxy.test", "gb1.proxy.test", "us2.proxy.test", "us1.proxy.test"}, hosts)
}

func TestAllocate_CountryPreference(t *testing.T) {
	a := NewPoolAllocator(testPool())

	d, err := a.Allocate("GB")
	require.NoError(t, err)
	assert.Equal(t, "gb1.proxy.test", d.Host)
	assert.Equal(t, "GB", d.Country)
}

func TestAllocate_UnmatchedCountryFallsBackToFullPool(t *testing.T) {
	a := NewPoolAllocator(testPool())

	d, err := a.Allocate("JP")
	require.NoError(t, err)
	assert.NotEmpty(t, d.Host)
}

func TestAllocate_DescriptorShape(t *testing.T) {
	a := NewPoolAllocator(testPool())

	d, err := a.Allocate("")
	require.NoError(t, err)
	assert.Equal(t, "mobile", d.Type)
	assert.Equal(t, "u1", d.Username)
	assert.Equal(t, "p1", d.Password)
}
