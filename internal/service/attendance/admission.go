package attendance

import (
	"log/slog"
	"strings"

	"github.com/edigital/workdesk-backend/internal/config"
	"github.com/edigital/workdesk-backend/internal/pkg/netcheck"
	"github.com/edigital/workdesk-backend/internal/pkg/utils"
)

const (
	reasonSSID     = "SSID mismatch"
	reasonLocation = "location outside allowed area"
	reasonIP       = "network IP not allowed"
)

// AdmissionInput is what a punch request claims about where it comes from.
type AdmissionInput struct {
	SSID      *string
	Latitude  *float64
	Longitude *float64
	ClientIP  string
}

// Decision is the outcome of one admission attempt. It is never persisted.
type Decision struct {
	SSID           *string
	ClientIP       string
	DistanceMeters float64
	NetworkAllowed bool
	GeoAllowed     bool
	IPAllowed      bool
}

func (d Decision) Allowed() bool {
	return d.NetworkAllowed && d.GeoAllowed && d.IPAllowed
}

// Reasons lists the failing checks in evaluation order.
func (d Decision) Reasons() []string {
	var reasons []string
	if !d.NetworkAllowed {
		reasons = append(reasons, reasonSSID)
	}
	if !d.GeoAllowed {
		reasons = append(reasons, reasonLocation)
	}
	if !d.IPAllowed {
		reasons = append(reasons, reasonIP)
	}
	return reasons
}

// Reason is the human readable denial, e.g. "SSID mismatch and network IP not allowed.".
func (d Decision) Reason() string {
	reasons := d.Reasons()
	if len(reasons) == 0 {
		return ""
	}
	return strings.Join(reasons, " and ") + "."
}

// Gate evaluates the network, location and IP checks against the configured office.
type Gate struct {
	ssids     netcheck.SSIDMatcher
	ips       netcheck.AllowList
	routers   netcheck.AllowList
	officeLat float64
	officeLng float64
	radius    float64
}

func NewGate(cfg config.AttendanceConfig) *Gate {
	g := &Gate{
		ssids:     netcheck.NewSSIDMatcher(cfg.AllowedSSIDs()),
		ips:       netcheck.ParseAllowList(cfg.AllowedIPs),
		routers:   netcheck.ParseRouterList(cfg.AllowedRouterIPs),
		officeLat: cfg.OfficeLatitude,
		officeLng: cfg.OfficeLongitude,
		radius:    cfg.RadiusMeters,
	}
	if g.ips.Empty() && g.routers.Empty() {
		slog.Warn("No usable entry in ALLOWED_IPS or ALLOWED_ROUTER_IPS, every punch will fail the IP check")
	}
	return g
}

// Evaluate runs all three checks; none short-circuits so the reason is complete.
func (g *Gate) Evaluate(in AdmissionInput) Decision {
	officeLat, officeLng := g.officeLat, g.officeLng
	distance := utils.HaversineMeters(in.Latitude, in.Longitude, &officeLat, &officeLng)

	return Decision{
		SSID:           in.SSID,
		ClientIP:       in.ClientIP,
		DistanceMeters: distance,
		NetworkAllowed: g.ssids.Allowed(in.SSID),
		GeoAllowed:     utils.WithinRadius(in.Latitude, in.Longitude, g.officeLat, g.officeLng, g.radius),
		IPAllowed:      g.ips.Contains(in.ClientIP) || g.routers.Contains(in.ClientIP),
	}
}
