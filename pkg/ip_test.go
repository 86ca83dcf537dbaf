package pkg

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPIsLocal(t *testing.T) {
	assert.True(t, IPIsLocal("127.0.0.1"))
	assert.True(t, IPIsLocal("::1"))
	assert.True(t, IPIsLocal("172.17.0.1"))
	assert.False(t, IPIsLocal("172.17.3.1"))
	assert.False(t, IPIsLocal("93.184.216.34"))
}

func TestReadUserIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/weekly", nil)
	req.RemoteAddr = "127.0.0.1:53211"
	ip, err := ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "localhost", ip)

	req.Header.Set("X-Forwarded-For", "93.184.216.34, 10.0.0.1")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "93.184.216.34", ip)

	req.Header.Set("X-Real-Ip", "81.2.69.160")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "81.2.69.160", ip)

	req.Header.Set("X-Real-Ip", "not-an-ip")
	_, err = ReadUserIP(req)
	assert.Error(t, err)
}
