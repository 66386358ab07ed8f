package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/logger"
	"github.com/QodexGroup/gym-management-system-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DocsAccessConfig controls who may read the API documentation
type DocsAccessConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDR ranges; empty allows every client
}

// DocsAccess guards the swagger endpoint. A disabled endpoint answers 404 so
// that its existence is not advertised; clients outside AllowedIPs get 403.
func DocsAccess(cfg DocsAccessConfig) gin.HandlerFunc {
	var (
		ips  []net.IP
		nets []*net.IPNet
	)
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		requestID := logger.GetRequestID(c.Request.Context())
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrorInfo{Code: dto.ErrCodeNotFound, Message: "API documentation is not available"},
				requestID,
			))
			return
		}
		if restricted && !ipAllowed(clientIP(c), ips, nets) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrorInfo{Code: dto.ErrCodeForbidden, Message: "Access to API documentation is restricted"},
				requestID,
			))
			return
		}
		c.Next()
	}
}

// clientIP prefers gin's proxy-aware ClientIP and falls back to RemoteAddr
func clientIP(c *gin.Context) net.IP {
	if ip := net.ParseIP(c.ClientIP()); ip != nil {
		return ip
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		host = c.Request.RemoteAddr
	}
	return net.ParseIP(host)
}

func ipAllowed(ip net.IP, ips []net.IP, nets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range ips {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
