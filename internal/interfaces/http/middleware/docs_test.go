package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveDocs(cfg DocsAccessConfig, remoteAddr string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", DocsAccess(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestDocsAccess(t *testing.T) {
	tests := []struct {
		name       string
		cfg        DocsAccessConfig
		remoteAddr string
		wantStatus int
		wantBody   string
	}{
		{"disabled", DocsAccessConfig{Enabled: false}, "127.0.0.1:5000", http.StatusNotFound, "ERR_NOT_FOUND"},
		{"open to everyone", DocsAccessConfig{Enabled: true}, "203.0.113.9:5000", http.StatusOK, "docs"},
		{"exact ip allowed", DocsAccessConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1"}}, "127.0.0.1:5000", http.StatusOK, "docs"},
		{"cidr allowed", DocsAccessConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8"}}, "10.4.2.1:5000", http.StatusOK, "docs"},
		{"outside allow list", DocsAccessConfig{Enabled: true, AllowedIPs: []string{"10.0.0.0/8", "127.0.0.1"}}, "203.0.113.9:5000", http.StatusForbidden, "ERR_FORBIDDEN"},
		{"unparseable entries grant nothing", DocsAccessConfig{Enabled: true, AllowedIPs: []string{"front-desk", "10.0.0.0/99"}}, "10.0.0.1:5000", http.StatusForbidden, "ERR_FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveDocs(tt.cfg, tt.remoteAddr)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestIPAllowed(t *testing.T) {
	_, office, _ := net.ParseCIDR("192.168.1.0/24")
	ips := []net.IP{net.ParseIP("::1")}

	assert.True(t, ipAllowed(net.ParseIP("192.168.1.40"), nil, []*net.IPNet{office}))
	assert.True(t, ipAllowed(net.ParseIP("::1"), ips, nil))
	assert.False(t, ipAllowed(net.ParseIP("192.168.2.40"), ips, []*net.IPNet{office}))
	assert.False(t, ipAllowed(nil, ips, []*net.IPNet{office}))
}
