package domain

import (
	"net/url"
	"strings"
)

// Device classes derived from the user agent.
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Attribution is captured once when the form is opened and never edited by
// the visitor.
type Attribution struct {
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`
	GCLID       string `json:"gclid,omitempty"`
	Device      string `json:"device,omitempty"`
	PagePath    string `json:"page_path,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

// CaptureAttribution reads tracking parameters from the landing URL and
// derives the device class from the user agent.
func CaptureAttribution(pageURL, referrer, userAgent string) Attribution {
	a := Attribution{
		Referrer: referrer,
		Device:   DeviceClass(userAgent),
		PagePath: DefaultPagePath,
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return a
	}
	if u.Path != "" {
		a.PagePath = u.Path
	}
	q := u.Query()
	a.UTMSource = q.Get("utm_source")
	a.UTMMedium = q.Get("utm_medium")
	a.UTMCampaign = q.Get("utm_campaign")
	a.UTMTerm = q.Get("utm_term")
	a.UTMContent = q.Get("utm_content")
	a.GCLID = q.Get("gclid")
	return a
}

// DeviceClass maps a user agent onto mobile, tablet or desktop. Phones are
// matched first, so iPads that advertise "Mobile" count as mobile.
func DeviceClass(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "android"), strings.Contains(ua, "iphone"):
		return DeviceMobile
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}
